// Package signals analyzes <script setup> blocks and rendered template
// fragments, then emits the client-side JavaScript that wires reactive
// signals to DOM nodes by positional child paths.
//
// The script is never evaluated or fully parsed: a small state machine
// tracks nesting of (), {}, [], string literals, template literals, and
// comments, and extracts only ref/computed/watch/let/function declarations.
// Unknown patterns are left out of the emission rather than reported.
package signals
