package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryParse    Category = "parse"
	CategoryResolve  Category = "resolve"
	CategoryProps    Category = "props"
	CategoryEnvelope Category = "envelope"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// VanError is a structured compile error carrying the offending path and,
// where applicable, the importer path and recursion depth.
type VanError struct {
	// Category is the error type (parse, resolve, props, ...).
	Category Category

	// Message is a short description of the error.
	Message string

	// Path is the component path the error refers to.
	Path string

	// Importer is the path of the file that imported Path, if any.
	Importer string

	// Depth is the import depth at which the error occurred (0 if not
	// depth-related).
	Depth int

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VanError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Path != "" && !strings.Contains(e.Message, e.Path) {
		fmt.Fprintf(&b, ": %s", e.Path)
	}
	if e.Importer != "" {
		fmt.Fprintf(&b, " (imported from %s)", e.Importer)
	}
	if e.Depth > 0 {
		fmt.Fprintf(&b, " at depth %d", e.Depth)
	}
	return b.String()
}

// Unwrap returns the wrapped error.
func (e *VanError) Unwrap() error {
	return e.Wrapped
}

// New creates a VanError with a formatted message.
func New(category Category, format string, args ...any) *VanError {
	return &VanError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// WithPath returns the error with its component path set.
func (e *VanError) WithPath(path string) *VanError {
	e.Path = path
	return e
}

// WithImporter returns the error with its importer path set.
func (e *VanError) WithImporter(path string) *VanError {
	e.Importer = path
	return e
}

// WithDepth returns the error with its import depth set.
func (e *VanError) WithDepth(depth int) *VanError {
	e.Depth = depth
	return e
}

// Wrap creates a VanError wrapping an underlying error.
func Wrap(category Category, err error, format string, args ...any) *VanError {
	return &VanError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Wrapped:  err,
	}
}
