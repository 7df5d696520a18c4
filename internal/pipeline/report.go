package pipeline

import (
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentx-labs/distpack/internal/tree"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report summarizes a finished build.
type Report struct {
	OutDir string

	Package string
	Version string
	Tag     string

	// Source files by kind.
	CodeFiles    int
	Declarations int
	Ignored      int

	// RulesApplied counts sanitizer rule hits across all generated files.
	RulesApplied map[string]int

	// Output tree statistics, filled in after the manifest is written.
	Files int
	Bytes int64
	ByExt []ExtStat
}

// ExtStat aggregates output files sharing an extension.
type ExtStat struct {
	Ext   string
	Files int
	Bytes int64
}

func newReport(outDir string) *Report {
	return &Report{OutDir: outDir, RulesApplied: make(map[string]int)}
}

// extOf treats ".d.ts" as a single extension.
func extOf(name string) string {
	if strings.HasSuffix(name, ".d.ts") {
		return ".d.ts"
	}
	return filepath.Ext(name)
}

// collect walks the output directory and fills in the tree statistics.
func (r *Report) collect(fsys afero.Fs) error {
	byExt := make(map[string]*ExtStat)
	r.Files, r.Bytes = 0, 0

	for rel, err := range tree.Walk(fsys, r.OutDir, nil) {
		if err != nil {
			return err
		}
		info, err := fsys.Stat(filepath.Join(r.OutDir, rel))
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}

		ext := extOf(rel)
		s, ok := byExt[ext]
		if !ok {
			s = &ExtStat{Ext: ext}
			byExt[ext] = s
		}
		s.Files++
		s.Bytes += info.Size()
		r.Files++
		r.Bytes += info.Size()
	}

	r.ByExt = r.ByExt[:0]
	for _, ext := range slices.Sorted(maps.Keys(byExt)) {
		r.ByExt = append(r.ByExt, *byExt[ext])
	}
	return nil
}

// Render writes a human-readable summary of the output directory to w.
func (r *Report) Render(w io.Writer) error {
	lr := lipgloss.NewRenderer(w)
	title := lr.NewStyle().Bold(true)
	col := lr.NewStyle().Width(10)
	num := lr.NewStyle().Width(8).Align(lipgloss.Right)
	dim := lr.NewStyle().Faint(true)

	p := message.NewPrinter(language.English)

	var b strings.Builder
	name := r.Package
	if name == "" {
		name = "(unnamed)"
	}
	b.WriteString(title.Render(fmt.Sprintf("%s@%s", name, r.Version)))
	if r.Tag != "" {
		b.WriteString(dim.Render(" (tag: " + r.Tag + ")"))
	}
	b.WriteString("\n")
	b.WriteString(dim.Render(r.OutDir))
	b.WriteString("\n\n")

	for _, s := range r.ByExt {
		ext := s.Ext
		if ext == "" {
			ext = "(none)"
		}
		b.WriteString(col.Render(ext))
		b.WriteString(num.Render(p.Sprintf("%d", s.Files)))
		b.WriteString(num.Render(humanize.Bytes(uint64(s.Bytes))))
		b.WriteString("\n")
	}

	b.WriteString(col.Render("total"))
	b.WriteString(num.Render(p.Sprintf("%d", r.Files)))
	b.WriteString(num.Render(humanize.Bytes(uint64(r.Bytes))))
	b.WriteString("\n")

	if len(r.RulesApplied) > 0 {
		b.WriteString("\n")
		for _, name := range slices.Sorted(maps.Keys(r.RulesApplied)) {
			b.WriteString(dim.Render(p.Sprintf("patched %s in %d file(s)", name, r.RulesApplied[name])))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
