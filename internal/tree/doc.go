// Package tree enumerates the regular files below a source root. Directories
// whose base name matches an exclusion pattern are pruned together with
// everything beneath them.
package tree
