// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed. Hard defaults apply when a key is missing.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	EnvPrefix   string `yaml:"env_prefix"`
	ConfigName  string `yaml:"config_name"`
	FlowPragma  string `yaml:"flow_pragma"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:     "distpack",
			DisplayName: "Distpack",
			Description: "Build a publishable npm package from a JavaScript source tree",
			EnvPrefix:   "DISTPACK",
			ConfigName:  "distpack",
			FlowPragma:  "// @flow strict",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "distpack").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// EnvPrefix returns the environment variable prefix (e.g., "DISTPACK").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// ConfigName returns the project config file name without extension.
func ConfigName() string { load(); return defaults.ConfigName }

// FlowPragma returns the annotation line written at the top of every
// type-hint sidecar.
func FlowPragma() string { load(); return defaults.FlowPragma }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("out_dir") → "DISTPACK_OUT_DIR".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
