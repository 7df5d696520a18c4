// Package transform defines the seam between the packaging pipeline and the
// external compiler. A Transformer turns one source file into generated code
// for a named environment; Command implements it by piping the file through
// a compiler subprocess such as the Babel CLI.
package transform
