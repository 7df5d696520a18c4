package manifest

import (
	"fmt"
	"strings"
)

// Rule identifies the publish check a descriptor failed.
type Rule string

// Publish rules.
const (
	RuleSchema        Rule = "schema"
	RuleMissingTag    Rule = "missing-publish-tag"
	RuleInvalidTag    Rule = "invalid-publish-tag"
	RuleVersionFormat Rule = "version-format"
	RuleTagNotAllowed Rule = "prerelease-tag-not-allowed"
	RuleTagMismatch   Rule = "prerelease-tag-mismatch"
)

// ValidationError reports a descriptor that must not be published.
type ValidationError struct {
	Rule    Rule
	Field   string // Dotted key path, e.g. "publishConfig.tag"
	Value   string // Offending value as found, empty when absent
	Message string

	// Issues holds the schema violations for RuleSchema.
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Rule, e.Message)
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s = %q)", e.Field, e.Value)
	}
	for _, issue := range e.Issues {
		if issue.Path != "" {
			fmt.Fprintf(&b, "\n  - %s: %s", issue.Path, issue.Message)
		} else {
			fmt.Fprintf(&b, "\n  - %s", issue.Message)
		}
	}
	return b.String()
}
