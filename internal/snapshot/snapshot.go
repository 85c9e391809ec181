// Package snapshot enumerates and orders the diff files an ordered,
// multi-diff restore walks (D1..Dk, applied in sequence).
//
// Grounded on _examples/original_source/src/bin/retrieve.rs's diff
// collection (walk a directory of "<name>.diff" files, sort, locate base
// and target by name) — that file's own extract_datetime helper was not
// present in the retrieved source, so names are ordered lexicographically
// here, which is equivalent for the production ISO-8601 timestamp names
// the tool walks in practice.
package snapshot

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

const Ext = ".diff"

// File is one enumerated diff file: its snapshot name (the filename minus
// ".diff") and its path on disk.
type File struct {
	Name string
	Path string
}

// List walks dirs (one or more diff-source directories) and returns every
// "<name>.diff" file found, sorted ascending by name.
func List(dirs []string) ([]File, error) {
	var files []File
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
				continue
			}
			name := strings.TrimSuffix(e.Name(), Ext)
			files = append(files, File{Name: name, Path: filepath.Join(dir, e.Name())})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Range locates baseName (exclusive) and targetName (inclusive) within
// files (already sorted by List) and returns the diffs to apply in order.
// baseName may be empty, or may simply not match any diff's name (the
// base snapshot is usually a pre-history genesis snapshot, not itself a
// diff) — either way, the range starts from the very first diff.
func Range(files []File, baseName, targetName string) ([]File, error) {
	targetPos := -1
	for i, f := range files {
		if f.Name == targetName {
			targetPos = i
			break
		}
	}
	if targetPos == -1 {
		return nil, errors.Wrapf(wplaceerr.ErrSpec, "target snapshot %q not found among diffs", targetName)
	}

	// A baseName not found among the diffs (the common case: the base is
	// the pre-history genesis snapshot, never itself a diff file) means
	// "start from the very first diff", mirroring retrieve.rs's
	// diff_list.iter().position(...).map(|x| x + 1).unwrap_or(0).
	start := 0
	if baseName != "" {
		for i, f := range files {
			if f.Name == baseName {
				start = i + 1
				break
			}
		}
	}

	if start > targetPos {
		return nil, errors.Wrapf(wplaceerr.ErrSpec, "base snapshot %q is not before target %q", baseName, targetName)
	}

	seen := make(map[string]bool, targetPos-start+1)
	out := make([]File, 0, targetPos-start+1)
	for _, f := range files[start : targetPos+1] {
		if seen[f.Name] {
			return nil, errors.Wrapf(wplaceerr.ErrSpec, "duplicate snapshot name %q in restore list", f.Name)
		}
		seen[f.Name] = true
		out = append(out, f)
	}
	return out, nil
}
