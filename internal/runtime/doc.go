// Package runtime inspects the JavaScript runtime the compiler runs on. It
// locates the node binary, reads its version, and checks it against the
// engine range a package declares.
package runtime
