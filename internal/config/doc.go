// Package config loads and validates van.json project configuration.
//
// All paths in the configuration are relative to the directory containing
// van.json; the *Path accessors resolve them against it.
package config
