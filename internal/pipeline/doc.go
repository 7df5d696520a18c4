// Package pipeline builds the distributable package directory.
//
// A build is one linear pass:
//
//	init -> clean-output -> enumerate -> process-files -> copy-assets ->
//	build-manifest -> write-manifest -> report
//
// Every code file produces a Flow sidecar, a CommonJS build and an ES module
// build; declaration files are copied verbatim. The publish manifest is
// derived and written last, so a build that fails part way never leaves a
// publishable package.json in the output directory. The output directory is
// removed at the start of every build and is not rolled back on failure.
package pipeline
