package sanitize

import (
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// Sanitizer applies a fixed table of rules to generated code.
type Sanitizer struct {
	rules  []Rule
	logger *log.Logger
}

// New returns a Sanitizer for rules. A nil logger disables diagnostics.
func New(rules []Rule, logger *log.Logger) *Sanitizer {
	return &Sanitizer{rules: rules, logger: logger}
}

// Default returns a Sanitizer with DefaultRules.
func Default(logger *log.Logger) *Sanitizer {
	return New(DefaultRules, logger)
}

// Rules returns the rule table.
func (s *Sanitizer) Rules() []Rule {
	return s.rules
}

// Apply runs every rule against text and returns the result together with
// the names of the rules that matched. Rules are independent of each other;
// the order of the table does not change the result.
func (s *Sanitizer) Apply(text string) (string, []string) {
	var applied []string
	for _, r := range s.rules {
		if !strings.Contains(text, r.Pattern) {
			continue
		}
		text = strings.Replace(text, r.Pattern, r.Replacement, 1)
		applied = append(applied, r.Name)
	}
	return text, applied
}

// File is Apply with diagnostics: rules that did not match are logged at
// debug level against name. A miss is expected for files that never needed
// the helper, so it is not a warning.
func (s *Sanitizer) File(name, text string) (string, []string) {
	out, applied := s.Apply(text)
	if s.logger == nil || len(applied) == len(s.rules) {
		return out, applied
	}

	for _, r := range s.rules {
		if !slices.Contains(applied, r.Name) {
			s.logger.Debug("sanitize rule not matched", "file", name, "rule", r.Name)
		}
	}
	return out, applied
}
