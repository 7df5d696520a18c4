package manifest

import (
	"encoding/json"
	"fmt"
)

// Keys that only matter during development.
var devOnlyKeys = []string{"private", "scripts", "devDependencies"}

const (
	enginesKey      = "engines"
	enginesOnNPMKey = "engines_on_npm"
)

// Publish checks dev against the descriptor schema and then derives the
// publish descriptor with BuildPublish.
func Publish(dev *Descriptor) (*Descriptor, error) {
	data, err := dev.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding descriptor: %w", err)
	}

	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationError{
			Rule:    RuleSchema,
			Message: fmt.Sprintf("descriptor has %d schema issue(s)", len(result.Issues)),
			Issues:  result.Issues,
		}
	}

	return BuildPublish(dev)
}

// BuildPublish derives the descriptor that is written next to the built
// artifacts. dev is not modified.
//
// Development-only keys are dropped and engines_on_npm replaces engines.
// publishConfig.tag must be set, the version must be MAJOR.MINOR.PATCH with
// an optional prerelease, and a prerelease version must be published under
// the channel its first prerelease identifier names. Every failure is a
// *ValidationError.
func BuildPublish(dev *Descriptor) (*Descriptor, error) {
	pub := dev.Clone()

	for _, key := range devOnlyKeys {
		pub.remove(key)
	}

	if engines, ok := pub.Raw(enginesOnNPMKey); ok {
		pub.set(enginesKey, engines)
	} else {
		pub.remove(enginesKey)
	}
	pub.remove(enginesOnNPMKey)

	publishTag, err := PublishTag(pub)
	if err != nil {
		return nil, err
	}

	version, ok := pub.String("version")
	if !ok {
		raw, _ := pub.Raw("version")
		version = string(raw)
	}
	v, err := ParseVersion(version)
	if err != nil {
		return nil, err
	}

	if v.Prerelease == "" {
		return pub, nil
	}
	tag := PrereleaseTag(v)
	if !IsAllowedTag(tag) {
		return nil, &ValidationError{
			Rule:    RuleTagNotAllowed,
			Field:   "version",
			Value:   version,
			Message: fmt.Sprintf("prerelease tag %q is not supported; use alpha, beta, rc or %s*", tag, ExperimentalPrefix),
		}
	}
	if tag != publishTag {
		return nil, &ValidationError{
			Rule:    RuleTagMismatch,
			Field:   "publishConfig.tag",
			Value:   publishTag,
			Message: fmt.Sprintf("publish tag and version tag %q should match", tag),
		}
	}
	return pub, nil
}

// PublishTag returns publishConfig.tag. An absent publishConfig, a
// publishConfig that is not an object, and a null tag all count as missing.
func PublishTag(d *Descriptor) (string, error) {
	missing := &ValidationError{
		Rule:    RuleMissingTag,
		Field:   "publishConfig.tag",
		Message: "publishConfig.tag must be defined",
	}

	raw, ok := d.Raw("publishConfig")
	if !ok {
		return "", missing
	}
	var cfg map[string]json.RawMessage
	if err := json.Unmarshal(raw, &cfg); err != nil || cfg == nil {
		return "", missing
	}
	tagRaw, ok := cfg["tag"]
	if !ok || string(tagRaw) == "null" {
		return "", missing
	}

	var tag string
	if err := json.Unmarshal(tagRaw, &tag); err != nil {
		return "", &ValidationError{
			Rule:    RuleInvalidTag,
			Field:   "publishConfig.tag",
			Value:   string(tagRaw),
			Message: "publishConfig.tag must be a string",
		}
	}
	return tag, nil
}

// EngineRange returns the version range dev declares for engine, e.g.
// "node". engines_on_npm is consulted first since it becomes the published
// engines field; engines is the fallback.
func EngineRange(dev *Descriptor, engine string) (string, bool) {
	for _, key := range []string{enginesOnNPMKey, enginesKey} {
		raw, ok := dev.Raw(key)
		if !ok {
			continue
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		if r, ok := m[engine]; ok {
			return r, true
		}
	}
	return "", false
}
