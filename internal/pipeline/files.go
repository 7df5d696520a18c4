package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/distpack/internal/branding"
	"github.com/agentx-labs/distpack/internal/transform"
	"github.com/spf13/afero"
)

// Kind classifies a source file.
type Kind int

// File kinds.
const (
	KindOther Kind = iota
	KindCode
	KindDeclaration
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindDeclaration:
		return "declaration"
	default:
		return "other"
	}
}

// File is a source file relative to the source root.
type File struct {
	Path string
	Kind Kind
}

// Classify returns the kind of the file at rel.
func Classify(rel string) Kind {
	switch {
	case strings.HasSuffix(rel, ".d.ts"):
		return KindDeclaration
	case strings.HasSuffix(rel, ".js"):
		return KindCode
	default:
		return KindOther
	}
}

// FlowSidecar returns the type-hint sidecar for a code file: the source
// prefixed with the Flow pragma line.
func FlowSidecar(src []byte) []byte {
	pragma := branding.FlowPragma() + "\n"
	out := make([]byte, 0, len(pragma)+len(src))
	out = append(out, pragma...)
	return append(out, src...)
}

// processCode writes the three artifacts of a code file.
func (b *Builder) processCode(ctx context.Context, f File) error {
	srcPath := filepath.Join(b.srcDir, f.Path)
	destPath := filepath.Join(b.outDir, f.Path)

	src, err := afero.ReadFile(b.fs, srcPath)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	if err := b.writeFile(destPath+".flow", FlowSidecar(src)); err != nil {
		return err
	}

	for _, env := range transform.Environments() {
		out, err := b.transformer.Transform(ctx, srcPath, src, env)
		if err != nil {
			return err
		}

		code, applied := b.sanitizer.File(f.Path, string(out))
		for _, name := range applied {
			b.report.RulesApplied[name]++
		}

		if err := b.writeFile(env.OutputPath(destPath), []byte(code)); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies src to dst, creating dst's parent directories.
func (b *Builder) copyFile(src, dst string) error {
	in, err := b.fs.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := b.fs.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	out, err := b.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// writeFile writes data to path, creating parent directories.
func (b *Builder) writeFile(path string, data []byte) error {
	if err := b.fs.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := afero.WriteFile(b.fs, path, data, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
