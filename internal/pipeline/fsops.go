package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/google/renameio/v2"
)

// fsOps is every filesystem mutation the converter performs. Reads
// (existence checks) always hit the real filesystem, so a dry run reports
// the same decisions a real run would make.
type fsOps interface {
	MkdirAll(path string) error
	Remove(path string) error
	Rename(src, dst string) error
}

func newFS(dryRun bool) fsOps {
	if dryRun {
		return dryRunFS{}
	}
	return osFS{}
}

type osFS struct{}

func (osFS) MkdirAll(path string) error { return os.MkdirAll(path, 0o755) }

// Remove deletes path; a missing file is not an error.
func (osFS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Rename moves src to dst. When they sit on different filesystems the data
// is copied into a renameio pending file next to dst, committed atomically,
// and src is removed afterwards.
func (osFS) Rename(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyReplace(src, dst)
}

func copyReplace(src, dst string) error {
	// #nosec G304 -- src is a temp file this process created
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	pending, err := renameio.NewPendingFile(dst, renameio.WithPermissions(fi.Mode().Perm()))
	if err != nil {
		return fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := io.Copy(pending, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", dst, err)
	}
	return os.Remove(src)
}

// dryRunFS performs nothing; the converter has already logged the action.
type dryRunFS struct{}

func (dryRunFS) MkdirAll(string) error       { return nil }
func (dryRunFS) Remove(string) error         { return nil }
func (dryRunFS) Rename(string, string) error { return nil }

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
