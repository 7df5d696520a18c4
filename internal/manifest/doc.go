// Package manifest derives a publishable package.json from the development
// one. It strips development-only keys, renames engines_on_npm to engines,
// checks the descriptor against an embedded JSON Schema, and enforces that
// prerelease versions ship under the matching distribution tag.
package manifest
