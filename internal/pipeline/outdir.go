package pipeline

import (
	"errors"
	"fmt"

	"github.com/agentx-labs/distpack/internal/tree"
)

// ErrUnsafeOutDir is returned for an output directory whose removal would
// destroy build inputs.
var ErrUnsafeOutDir = errors.New("unsafe output directory")

// ValidateOutDir rejects an output directory that is, or contains, the
// source directory or any of keep, and one nested inside the source
// directory. The output directory is removed before every build, so each
// of these would delete inputs.
func ValidateOutDir(outDir, srcDir string, keep ...string) error {
	if tree.Within(outDir, srcDir) {
		return fmt.Errorf("%w: %s contains the source directory %s", ErrUnsafeOutDir, outDir, srcDir)
	}
	if tree.Within(srcDir, outDir) {
		return fmt.Errorf("%w: %s is inside the source directory %s", ErrUnsafeOutDir, outDir, srcDir)
	}
	for _, p := range keep {
		if p != "" && tree.Within(outDir, p) {
			return fmt.Errorf("%w: %s contains %s", ErrUnsafeOutDir, outDir, p)
		}
	}
	return nil
}
