package runtime

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// EngineError reports an installed runtime outside the declared range.
type EngineError struct {
	Engine  string
	Range   string
	Version *semver.Version
	Reasons []error
}

func (e *EngineError) Error() string {
	msg := fmt.Sprintf("%s %s does not satisfy %q", e.Engine, e.Version, e.Range)
	for _, r := range e.Reasons {
		msg += "\n  - " + r.Error()
	}
	return msg
}

// Satisfies checks v against an npm-style range such as
// "^14.19.0 || ^16.10.0 || >=18.0.0".
func Satisfies(engine, rng string, v *semver.Version) error {
	c, err := semver.NewConstraint(rng)
	if err != nil {
		return fmt.Errorf("parsing %s engine range %q: %w", engine, rng, err)
	}
	if ok, reasons := c.Validate(v); !ok {
		return &EngineError{Engine: engine, Range: rng, Version: v, Reasons: reasons}
	}
	return nil
}
