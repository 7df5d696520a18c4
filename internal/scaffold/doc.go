// Package scaffold writes starter files for a new distpack project from
// embedded text/template sources.
package scaffold
