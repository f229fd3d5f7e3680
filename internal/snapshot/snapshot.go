// Package snapshot copies source files matching one or more glob patterns
// into an experiment directory at creation time (SPEC_FULL.md §6.b's
// --snapshot-glob option), for reproducibility beyond the recorded git SHA
// alone — useful for generated-but-uncommitted files that should travel
// with the experiment without tripping the dirty-repo check, since they're
// copied rather than committed.
//
// Patterns are matched with doublestar rather than filepath.Glob because
// the latter has no "**" (arbitrary depth) support, which is the common
// case for "every checkpoint config under configs/".
package snapshot

import (
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Capture matches each pattern against the files under baseDir and copies
// every match into destDir, preserving the match's relative path.
// Patterns that match nothing are not an error — a glob that never fires
// in a given run (e.g. an optional checkpoint dir) is expected.
func Capture(baseDir string, patterns []string, destDir string) error {
	if len(patterns) == 0 {
		return nil
	}
	fsys := os.DirFS(baseDir)
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return err
		}
		for _, rel := range matches {
			if seen[rel] {
				continue
			}
			seen[rel] = true
			if err := copyOne(filepath.Join(baseDir, rel), filepath.Join(destDir, rel)); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyOne(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
