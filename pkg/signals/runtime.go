package signals

import _ "embed"

//go:embed runtime.js
var runtimeJS string

// Runtime returns the client runtime that the generated component scripts
// depend on. It installs the global Van object with signal, computed,
// effect, batch, and watch.
func Runtime() string {
	return runtimeJS
}
