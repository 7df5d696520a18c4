package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentx-labs/distpack/internal/branding"
	"github.com/agentx-labs/distpack/internal/pipeline"
	"github.com/agentx-labs/distpack/internal/transform"
	"github.com/agentx-labs/distpack/internal/tree"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeySrcDir           = "src_dir"
	KeyOutDir           = "out_dir"
	KeyIgnoreDir        = "ignore_dir"
	KeyManifest         = "manifest"
	KeyAssets           = "assets"
	KeyTransformCommand = "transform.command"
)

// Keys lists every config key.
var Keys = []string{KeySrcDir, KeyOutDir, KeyIgnoreDir, KeyManifest, KeyAssets, KeyTransformCommand}

const (
	fileType = "yaml"
	dotEnv   = ".env"
)

// Build holds the resolved settings for one build.
type Build struct {
	ProjectDir       string
	SrcDir           string
	OutDir           string
	IgnoreDir        *regexp.Regexp
	Manifest         string
	Assets           []string
	TransformCommand string

	// ConfigFile is the config file that was read, empty when none was.
	ConfigFile string
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"src":           KeySrcDir,
	"out":           KeyOutDir,
	"ignore-dir":    KeyIgnoreDir,
	"manifest":      KeyManifest,
	"asset":         KeyAssets,
	"transform-cmd": KeyTransformCommand,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeySrcDir, "src")
	v.SetDefault(KeyOutDir, "dist")
	v.SetDefault(KeyIgnoreDir, tree.DefaultIgnoreDir.String())
	v.SetDefault(KeyManifest, "package.json")
	v.SetDefault(KeyAssets, []string{"LICENSE", "README.md"})
	v.SetDefault(KeyTransformCommand, transform.DefaultCommand)
}

// Load resolves the build settings for projectDir. configFile names an
// explicit config file; when empty, distpack.yaml in projectDir is used if
// it exists. flags may be nil; only flags the user set override other
// sources.
func Load(projectDir, configFile string, flags *pflag.FlagSet) (*Build, error) {
	absProject, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory %s: %w", projectDir, err)
	}

	// Variables already in the environment win over the .env file.
	if err := godotenv.Load(filepath.Join(absProject, dotEnv)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", dotEnv, err)
	}

	v := viper.New()
	setDefaults(v)
	for _, key := range Keys {
		if err := v.BindEnv(key, EnvVar(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", EnvVar(key), err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(branding.ConfigName())
		v.SetConfigType(fileType)
		v.AddConfigPath(absProject)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	return decode(v, absProject)
}

func decode(v *viper.Viper, projectDir string) (*Build, error) {
	b := &Build{
		ProjectDir:       projectDir,
		SrcDir:           v.GetString(KeySrcDir),
		OutDir:           v.GetString(KeyOutDir),
		Manifest:         v.GetString(KeyManifest),
		Assets:           v.GetStringSlice(KeyAssets),
		TransformCommand: v.GetString(KeyTransformCommand),
		ConfigFile:       v.ConfigFileUsed(),
	}

	if pattern := v.GetString(KeyIgnoreDir); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", KeyIgnoreDir, pattern, err)
		}
		b.IgnoreDir = re
	}

	if b.SrcDir == "" || b.OutDir == "" {
		return nil, fmt.Errorf("%s and %s must not be empty", KeySrcDir, KeyOutDir)
	}
	if err := pipeline.ValidateOutDir(b.Path(b.OutDir), b.Path(b.SrcDir), b.ProjectDir, b.Path(b.Manifest)); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyOutDir, err)
	}
	return b, nil
}

// EnvVar returns the environment variable that overrides key, e.g.
// DISTPACK_TRANSFORM_COMMAND for transform.command.
func EnvVar(key string) string {
	return branding.EnvVar(strings.ReplaceAll(key, ".", "_"))
}

// Path resolves p against the project directory unless it is absolute.
func (b *Build) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(b.ProjectDir, p)
}
