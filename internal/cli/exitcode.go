package cli

import (
	"errors"

	"github.com/agentx-labs/distpack/internal/manifest"
)

// Exit codes returned by the distpack binary.
const (
	ExitOK         = 0
	ExitFailure    = 1 // I/O, config, or compiler failure
	ExitValidation = 2 // manifest rejected by the schema or publish rules
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ve *manifest.ValidationError
	if errors.As(err, &ve) {
		return ExitValidation
	}
	return ExitFailure
}
