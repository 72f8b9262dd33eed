// Package compiler turns a virtual map of .van component files into a
// server-renderable HTML document plus collected styles and client signal
// scripts.
//
// Compilation runs in three stages: Resolve builds the flat component graph
// from the entry file, RenderPage expands component tags, props, and slots
// into the final HTML, and Compile assembles the document with inline or
// separated CSS/JS assets.
package compiler
