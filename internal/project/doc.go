// Package project collects a Van project's source tree into the virtual
// file map the compiler consumes, and interpolates mock data into rendered
// pages during development and builds.
package project
