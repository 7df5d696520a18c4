// Package cli defines the Cobra command tree for the distpack CLI. Each file
// in this package builds one top-level command (build, check, version) and
// the root command wires them together. Commands only resolve settings,
// call into internal packages, and format output.
package cli
