package fileutil_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/minilock/internal/fileutil"
)

func TestCopyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{name: "report.pdf", index: 0, want: "report.pdf"},
		{name: "report.pdf", index: 1, want: "report copy.pdf"},
		{name: "report.pdf", index: 2, want: "report copy 2.pdf"},
		{name: "archive.tar.gz", index: 1, want: "archive.tar copy.gz"},
		{name: "README", index: 3, want: "README copy 3"},
		{name: ".profile", index: 1, want: ".profile copy"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fileutil.CopyName(tt.name, tt.index), "%s/%d", tt.name, tt.index)
	}
}

func TestCreateUnique(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var names []string

	for range 3 {
		f, err := fileutil.CreateUnique(dir, "notes.txt")
		require.NoError(t, err)

		names = append(names, filepath.Base(f.Name()))
		require.NoError(t, f.Close())
	}

	assert.Equal(t, []string{"notes.txt", "notes copy.txt", "notes copy 2.txt"}, names)

	_, err := fileutil.CreateUnique(filepath.Join(dir, "missing"), "x")
	require.Error(t, err)
}

func TestTempContext(t *testing.T) {
	t.Parallel()

	t.Run("commit", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out.bin")

		tc, err := fileutil.NewTempContext(out)
		require.NoError(t, err)

		_, err = tc.TmpFile.WriteString("payload")
		require.NoError(t, err)
		require.NoError(t, tc.Commit())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("cleanup on error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		tc, err := fileutil.NewTempContext(filepath.Join(dir, "out.bin"))
		require.NoError(t, err)

		failure := errors.New("boom")
		tc.CleanupOnError(&failure)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestScratch(t *testing.T) {
	t.Parallel()

	s, err := fileutil.NewScratch()
	require.NoError(t, err)

	_, err = s.WriteString("chunks")
	require.NoError(t, err)
	require.NoError(t, s.Rewind())

	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "chunks", string(data))

	name := s.Name()
	require.NoError(t, s.Close())

	_, err = os.Stat(name)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o600))

	size, err := fileutil.Size(path)
	require.NoError(t, err)
	assert.EqualValues(t, 5, size)

	_, err = fileutil.Size(dir)
	require.ErrorIs(t, err, fileutil.ErrNotRegular)
}
