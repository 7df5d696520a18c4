// Package config resolves build settings for a project. Values come from,
// in increasing precedence: built-in defaults, the project's distpack.yaml,
// DISTPACK_* environment variables (a project .env file is loaded into the
// environment first), and command-line flags.
package config
