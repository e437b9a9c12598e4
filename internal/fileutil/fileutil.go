// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const ownerReadWrite = 0o600

// maxCopies bounds the search for a free file name.
const maxCopies = 10000

var (
	// ErrNoFreeName is returned when no unused file name could be found.
	ErrNoFreeName = errors.New("no free file name")
	// ErrNotRegular is returned when a path does not refer to a regular file.
	ErrNotRegular = errors.New("not a regular file")
)

// TempContext holds state for an atomic file write operation.
type TempContext struct {
	TmpFile *os.File
	TmpName string
	OutPath string
}

// NewTempContext creates a temp file next to outPath for atomic writing.
// Caller must defer CleanupOnError.
func NewTempContext(outPath string) (*TempContext, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	return &TempContext{
		TmpFile: tmpFile,
		TmpName: tmpFile.Name(),
		OutPath: outPath,
	}, nil
}

// Commit closes the temp file and renames it to the output path.
func (tc *TempContext) Commit() error {
	if err := tc.TmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing temporary file: %w", err)
	}

	if err := tc.TmpFile.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tc.TmpName, tc.OutPath); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}

	return nil
}

// CleanupOnError closes the temp file and removes it if the write failed.
func (tc *TempContext) CleanupOnError(errp *error) {
	tc.TmpFile.Close() //nolint:gosec // best-effort cleanup

	if *errp != nil {
		os.Remove(tc.TmpName) //nolint:gosec // best-effort cleanup
	}
}

// Scratch is an anonymous read-write file in the system temp directory,
// removed by Close.
type Scratch struct {
	*os.File
}

// NewScratch creates a scratch file.
func NewScratch() (*Scratch, error) {
	f, err := os.CreateTemp("", "minilock-payload-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch file: %w", err)
	}

	return &Scratch{File: f}, nil
}

// Rewind positions the scratch file at its start for reading.
func (s *Scratch) Rewind() error {
	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding scratch file: %w", err)
	}

	return nil
}

// Close closes and removes the scratch file.
func (s *Scratch) Close() error {
	closeErr := s.File.Close()

	if err := os.Remove(s.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing scratch file: %w", err)
	}

	return closeErr
}

// CreateUnique creates a new file named name inside dir. If that name is taken it tries
// "base copy.ext", "base copy 2.ext" and so on. The file is created exclusively,
// so a concurrent writer can never be clobbered.
func CreateUnique(dir, name string) (*os.File, error) {
	for i := range maxCopies {
		path := filepath.Join(dir, CopyName(name, i))

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, ownerReadWrite)
		if err == nil {
			return f, nil
		}

		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("creating %q: %w", path, err)
		}
	}

	return nil, fmt.Errorf("%w for %q in %q", ErrNoFreeName, name, dir)
}

// CopyName returns the name to try for the given collision index:
// index 0 is name itself, 1 is "base copy.ext", 2 is "base copy 2.ext".
func CopyName(name string, index int) string {
	if index == 0 {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	if base == "" {
		// Dot files such as ".profile" have no extension to preserve.
		base, ext = name, ""
	}

	suffix := " copy"
	if index > 1 {
		suffix += " " + strconv.Itoa(index)
	}

	return base + suffix + ext
}

// Size returns the size of a regular file, or an error for anything else.
func Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("getting file info for %q: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %q", ErrNotRegular, path)
	}

	return info.Size(), nil
}
