// Package parser splits .van component sources into their template, script,
// and style blocks and extracts component imports, script imports, and
// defineProps declarations.
//
// The parser is deliberately tolerant: it scans for block tags at the top
// level of the source and treats everything else as inert text. Malformed
// individual blocks are dropped rather than reported; only unbalanced block
// delimiters and duplicate prop names are errors.
package parser
