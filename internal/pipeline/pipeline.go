package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/agentx-labs/distpack/internal/manifest"
	"github.com/agentx-labs/distpack/internal/sanitize"
	"github.com/agentx-labs/distpack/internal/transform"
	"github.com/agentx-labs/distpack/internal/tree"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

const (
	dirPerm  os.FileMode = 0755
	filePerm os.FileMode = 0644
)

// Options configures a Builder. Relative directories are resolved against
// ProjectDir.
type Options struct {
	Fs         afero.Fs
	ProjectDir string
	SrcDir     string
	OutDir     string
	IgnoreDir  *regexp.Regexp
	Manifest   string
	Assets     []string

	Transformer transform.Transformer
	Sanitizer   *sanitize.Sanitizer
	Logger      *log.Logger
}

// Builder runs one build. A Builder is single use.
type Builder struct {
	fs          afero.Fs
	projectDir  string
	srcDir      string
	outDir      string
	ignoreDir   *regexp.Regexp
	manifest    string
	assets      []string
	transformer transform.Transformer
	sanitizer   *sanitize.Sanitizer
	logger      *log.Logger

	dev    *manifest.Descriptor
	report *Report
}

// New returns a Builder for opts, filling in defaults for unset fields.
func New(opts Options) *Builder {
	b := &Builder{
		fs:          opts.Fs,
		projectDir:  opts.ProjectDir,
		ignoreDir:   opts.IgnoreDir,
		assets:      opts.Assets,
		transformer: opts.Transformer,
		sanitizer:   opts.Sanitizer,
		logger:      opts.Logger,
	}
	if b.fs == nil {
		b.fs = afero.NewOsFs()
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	if b.sanitizer == nil {
		b.sanitizer = sanitize.Default(b.logger)
	}
	if b.assets == nil {
		b.assets = []string{"LICENSE", "README.md"}
	}

	b.srcDir = b.resolve(opts.SrcDir, "src")
	b.outDir = b.resolve(opts.OutDir, "dist")
	b.manifest = b.resolve(opts.Manifest, "package.json")
	return b
}

func (b *Builder) resolve(p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(b.projectDir, p)
}

// OutDir returns the resolved output directory.
func (b *Builder) OutDir() string { return b.outDir }

// Run executes the build. The returned error is a *StageError wrapping the
// cause; transform failures unwrap to *transform.Error and publish rule
// failures to *manifest.ValidationError.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	if err := b.init(); err != nil {
		return nil, err
	}
	if err := b.cleanOutput(); err != nil {
		return nil, err
	}
	if err := b.processFiles(ctx); err != nil {
		return nil, err
	}
	if err := b.copyAssets(); err != nil {
		return nil, err
	}
	pub, err := b.buildManifest()
	if err != nil {
		return nil, err
	}
	if err := b.writeManifest(pub); err != nil {
		return nil, err
	}
	if err := b.finishReport(); err != nil {
		return nil, err
	}
	return b.report, nil
}

func (b *Builder) init() error {
	b.logger.Debug("stage", "name", StageInit, "project", b.projectDir)

	if b.transformer == nil {
		return stageErr(StageInit, "", errors.New("no transformer configured"))
	}
	keep := append([]string{b.projectDir, b.manifest}, b.assetPaths()...)
	if err := ValidateOutDir(b.outDir, b.srcDir, keep...); err != nil {
		return stageErr(StageInit, b.outDir, err)
	}

	dev, err := manifest.ParseFile(b.fs, b.manifest)
	if err != nil {
		return stageErr(StageInit, b.manifest, err)
	}
	b.dev = dev
	b.report = newReport(b.outDir)
	return nil
}

func (b *Builder) cleanOutput() error {
	b.logger.Debug("stage", "name", StageCleanOutput, "dir", b.outDir)

	if err := b.fs.RemoveAll(b.outDir); err != nil {
		return stageErr(StageCleanOutput, b.outDir, err)
	}
	if err := b.fs.MkdirAll(b.outDir, dirPerm); err != nil {
		return stageErr(StageCleanOutput, b.outDir, err)
	}
	return nil
}

func (b *Builder) processFiles(ctx context.Context) error {
	b.logger.Debug("stage", "name", StageEnumerate, "dir", b.srcDir)

	for rel, err := range tree.Walk(b.fs, b.srcDir, b.ignoreDir) {
		if err != nil {
			return stageErr(StageEnumerate, b.srcDir, err)
		}

		f := File{Path: rel, Kind: Classify(rel)}
		b.logger.Debug("file", "path", f.Path, "kind", f.Kind)

		switch f.Kind {
		case KindCode:
			if err := b.processCode(ctx, f); err != nil {
				return stageErr(StageProcessFiles, f.Path, err)
			}
			b.report.CodeFiles++
		case KindDeclaration:
			src := filepath.Join(b.srcDir, f.Path)
			if err := b.copyFile(src, filepath.Join(b.outDir, f.Path)); err != nil {
				return stageErr(StageProcessFiles, f.Path, err)
			}
			b.report.Declarations++
		default:
			b.report.Ignored++
		}
	}
	return nil
}

// assetPaths resolves the configured assets against the project directory.
func (b *Builder) assetPaths() []string {
	paths := make([]string, len(b.assets))
	for i, asset := range b.assets {
		paths[i] = b.resolve(asset, asset)
	}
	return paths
}

func (b *Builder) copyAssets() error {
	b.logger.Debug("stage", "name", StageCopyAssets, "assets", b.assets)

	for i, src := range b.assetPaths() {
		asset := b.assets[i]
		dst := filepath.Join(b.outDir, filepath.Base(asset))
		if err := b.copyFile(src, dst); err != nil {
			return stageErr(StageCopyAssets, asset, err)
		}
	}
	return nil
}

func (b *Builder) buildManifest() (*manifest.Descriptor, error) {
	b.logger.Debug("stage", "name", StageBuildManifest)

	pub, err := manifest.Publish(b.dev)
	if err != nil {
		return nil, stageErr(StageBuildManifest, b.manifest, err)
	}

	b.report.Package, _ = pub.String("name")
	b.report.Version, _ = pub.String("version")
	b.report.Tag, _ = manifest.PublishTag(pub)
	return pub, nil
}

func (b *Builder) writeManifest(pub *manifest.Descriptor) error {
	path := filepath.Join(b.outDir, filepath.Base(b.manifest))
	b.logger.Debug("stage", "name", StageWriteManifest, "path", path)

	data, err := pub.MarshalIndent()
	if err != nil {
		return stageErr(StageWriteManifest, path, err)
	}
	if err := b.writeFile(path, data); err != nil {
		return stageErr(StageWriteManifest, path, err)
	}
	return nil
}

func (b *Builder) finishReport() error {
	b.logger.Debug("stage", "name", StageReport)

	if err := b.report.collect(b.fs); err != nil {
		return stageErr(StageReport, b.outDir, err)
	}
	for _, r := range b.sanitizer.Rules() {
		if b.report.RulesApplied[r.Name] == 0 {
			b.logger.Debug("sanitize rule never applied", "rule", r.Name, "reason", r.Reason)
		}
	}
	b.logger.Info("package built",
		"name", b.report.Package,
		"version", b.report.Version,
		"tag", b.report.Tag,
		"files", b.report.Files,
		"out", b.outDir,
	)
	return nil
}
