package tree

import (
	"fmt"
	"iter"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// DefaultIgnoreDir matches test fixture directories such as __tests__ and
// __mocks__.
var DefaultIgnoreDir = regexp.MustCompile(`^__.*__$`)

// Walk returns a sequence of file paths relative to root, one for every
// regular file reachable from root. A directory is skipped when ignoreDir
// matches its base name; file names are never matched. A nil ignoreDir
// disables exclusion.
//
// Entries are visited depth first in the name order reported by
// afero.ReadDir, so the sequence is stable for an unchanged tree. The first
// read error is yielded once and ends the sequence.
func Walk(fsys afero.Fs, root string, ignoreDir *regexp.Regexp) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		info, err := fsys.Stat(root)
		if err != nil {
			yield("", fmt.Errorf("reading source root %s: %w", root, err))
			return
		}
		if !info.IsDir() {
			yield("", fmt.Errorf("source root %s is not a directory", root))
			return
		}
		walkDir(fsys, root, "", ignoreDir, yield)
	}
}

// Within reports whether path is dir or lies below it. The comparison is
// lexical; symlinks are not resolved.
func Within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// walkDir reports false once the consumer stops or an error was yielded.
func walkDir(fsys afero.Fs, root, rel string, ignoreDir *regexp.Regexp, yield func(string, error) bool) bool {
	dir := filepath.Join(root, rel)
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		yield("", fmt.Errorf("reading directory %s: %w", dir, err))
		return false
	}

	for _, entry := range entries {
		name := entry.Name()
		child := filepath.Join(rel, name)

		if entry.IsDir() {
			if ignoreDir != nil && ignoreDir.MatchString(name) {
				continue
			}
			if !walkDir(fsys, root, child, ignoreDir, yield) {
				return false
			}
			continue
		}

		if !entry.Mode().IsRegular() {
			continue
		}
		if !yield(child, nil) {
			return false
		}
	}
	return true
}
