package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kubes/videoconverter/internal/naming"
)

// Discover walks inputDir and returns every file whose name has exactly
// one extension, sorted lexicographically for a reproducible conversion
// order. Anything else ("a.tar.gz", "README") is left alone. Symlinks are
// followed for files only.
//
// An error on inputDir itself is returned. Unreadable entries below it are
// passed to onSkip (which may be nil) and the walk goes on without them.
func Discover(inputDir string, onSkip func(path string, err error)) ([]string, error) {
	skip := func(path string, err error) {
		if onSkip != nil {
			onSkip(path, err)
		}
	}
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == inputDir {
				return err
			}
			skip(path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		switch {
		case d.Type().IsRegular():
		case d.Type()&fs.ModeSymlink != 0:
			fi, err := os.Stat(path)
			if err != nil {
				skip(path, err)
				return nil
			}
			if !fi.Mode().IsRegular() {
				return nil
			}
		default:
			return nil
		}
		if _, ok := naming.Stem(d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// PlanEntry pairs a source file with the directory its outputs go to.
type PlanEntry struct {
	Source    string
	OutputDir string
}

// BuildPlan mirrors each file's parent directory from inputRoot into
// outputRoot. With no outputRoot, outputs land next to their sources.
func BuildPlan(files []string, inputRoot, outputRoot string) []PlanEntry {
	plan := make([]PlanEntry, len(files))
	for i, f := range files {
		plan[i] = PlanEntry{
			Source:    f,
			OutputDir: naming.MirrorDir(filepath.Dir(f), inputRoot, outputRoot),
		}
	}
	return plan
}
