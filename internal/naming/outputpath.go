package naming

import (
	"path/filepath"
	"strings"

	"github.com/kubes/videoconverter/internal/config"
)

// backupSuffix is appended to a final output path to form its single
// backup generation.
const backupSuffix = ".bak"

// Stem splits a base filename into its name and extension. ok is false
// unless the name has exactly one dot, e.g. "clip.mov". Names like
// "archive.tar.gz", "README" or ".hidden.mov" are rejected.
func Stem(base string) (stem string, ok bool) {
	parts := strings.Split(base, ".")
	if len(parts) != 2 {
		return "", false
	}
	return parts[0], true
}

// OutputName is the output base name without extension: prefix + stem.
func OutputName(prefix, stem string) string {
	return prefix + stem
}

// Paths holds every location touched while producing one format.
type Paths struct {
	Temp   string // <source dir>/<name>.tmp.<fmt>
	Final  string // <output dir>/<name>.<fmt>
	Backup string // <output dir>/<name>.<fmt>.bak
}

// OutputPaths computes the temp, final and backup paths for one format.
// The temp file is staged next to the source, not in the output directory.
func OutputPaths(sourceDir, outputDir, name string, format config.Format) Paths {
	final := filepath.Join(outputDir, name+"."+string(format))
	return Paths{
		Temp:   filepath.Join(sourceDir, name+".tmp."+string(format)),
		Final:  final,
		Backup: final + backupSuffix,
	}
}

// MirrorDir maps a source file's parent directory into the output tree by
// replacing the first occurrence of inputRoot with outputRoot. With no
// outputRoot the parent directory itself is returned.
func MirrorDir(parent, inputRoot, outputRoot string) string {
	if outputRoot == "" {
		return parent
	}
	return strings.Replace(parent, inputRoot, outputRoot, 1)
}
