// Package build produces the static production output for a Van project:
// one HTML file per page entry plus content-addressed CSS/JS assets.
package build
