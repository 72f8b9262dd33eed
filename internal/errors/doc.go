// Package errors provides structured error types for the Van compiler.
//
// Compiler errors carry a category, the component path they refer to, and
// where applicable the importer path and import depth, so the CLI and the
// envelope layer can report them uniformly.
package errors
