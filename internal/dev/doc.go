// Package dev implements the Van development server.
//
// The server compiles pages on demand from the project source tree, injects
// a hot-reload client, and watches the filesystem to push reloads (or build
// errors) to connected browsers over WebSocket.
package dev
