package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/agentx-labs/distpack/internal/branding"
	"github.com/agentx-labs/distpack/internal/transform"
	"github.com/agentx-labs/distpack/internal/tree"
	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Data holds the template variables.
type Data struct {
	CLIName          string
	EnvPrefix        string
	Package          string // name from the development manifest, may be empty
	SrcDir           string
	OutDir           string
	IgnoreDir        string
	Manifest         string
	Assets           []string
	TransformCommand string
}

// NewData returns Data populated with the build defaults.
func NewData(pkg string) *Data {
	return &Data{
		CLIName:          branding.CLIName(),
		EnvPrefix:        branding.EnvPrefix(),
		Package:          pkg,
		SrcDir:           "src",
		OutDir:           "dist",
		IgnoreDir:        tree.DefaultIgnoreDir.String(),
		Manifest:         "package.json",
		Assets:           []string{"LICENSE", "README.md"},
		TransformCommand: transform.DefaultCommand,
	}
}

// Result holds the outcome of a scaffold generation.
type Result struct {
	OutputDir string
	Files     []string
}

// ErrExists is returned when a target file exists and overwrite is off.
var ErrExists = errors.New("file already exists")

// Generate renders every embedded template into dir. Existing files are
// only replaced when overwrite is set. Rendered YAML is parsed back before
// anything is written.
func Generate(fsys afero.Fs, dir string, data *Data, overwrite bool) (*Result, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}

	rendered := make(map[string][]byte, len(entries))
	result := &Result{OutputDir: dir}

	for _, entry := range entries {
		outName := strings.TrimSuffix(entry.Name(), ".tmpl")
		if outName == "distpack.yaml" {
			outName = branding.ConfigName() + ".yaml"
		}
		outPath := filepath.Join(dir, outName)

		if !overwrite {
			exists, err := afero.Exists(fsys, outPath)
			if err != nil {
				return nil, fmt.Errorf("checking %s: %w", outPath, err)
			}
			if exists {
				return nil, fmt.Errorf("%s: %w (use --force to replace it)", outPath, ErrExists)
			}
		}

		tmplBytes, err := fs.ReadFile(templateFS, "templates/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", entry.Name(), err)
		}
		tmpl, err := template.New(entry.Name()).Parse(string(tmplBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", entry.Name(), err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("executing template %s: %w", entry.Name(), err)
		}

		if strings.HasSuffix(outName, ".yaml") {
			var doc map[string]any
			if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
				return nil, fmt.Errorf("generated %s is not valid YAML: %w", outName, err)
			}
		}
		rendered[outPath] = buf.Bytes()
		result.Files = append(result.Files, outName)
	}

	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	for _, name := range result.Files {
		path := filepath.Join(dir, name)
		if err := afero.WriteFile(fsys, path, rendered[path], 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return result, nil
}
