package encryption_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/minilock/internal/config"
	"github.com/idelchi/minilock/internal/encryption"
)

func TestProcessorRoundTrip(t *testing.T) {
	t.Parallel()

	sender, recipient := newKeyPair(t), newKeyPair(t)
	src := t.TempDir()

	first, firstData := writeRandomFile(t, src, "a.txt", 100)
	second, secondData := writeRandomFile(t, src, "b.txt", 2000)

	encrypted := t.TempDir()

	enc, err := encryption.NewProcessor(&config.Config{
		Files:      []string{first, second},
		Recipients: []string{recipient.ID().String()},
		Parallel:   2,
		Quiet:      true,
		Suffix:     ".minilock",
		Output:     encrypted,
	}, sender, nil)
	require.NoError(t, err)
	assert.Len(t, enc.Recipients(), 2)

	processed, errored, size, err := enc.ProcessFiles()
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Zero(t, errored)
	assert.Positive(t, size)

	decrypted := t.TempDir()

	dec, err := encryption.NewProcessor(&config.Config{
		Files: []string{
			filepath.Join(encrypted, "a.txt.minilock"),
			filepath.Join(encrypted, "b.txt.minilock"),
		},
		Decrypt:  true,
		Parallel: 1,
		Quiet:    true,
		Output:   decrypted,
	}, recipient, nil)
	require.NoError(t, err)

	processed, errored, size, err = dec.ProcessFiles()
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Zero(t, errored)
	assert.EqualValues(t, 2100, size)

	for name, want := range map[string][]byte{"a.txt": firstData, "b.txt": secondData} {
		got, err := os.ReadFile(filepath.Join(decrypted, name))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestProcessorReportsFailures(t *testing.T) {
	t.Parallel()

	kp := newKeyPair(t)
	dir := t.TempDir()

	good, _ := writeRandomFile(t, dir, "good.txt", 10)
	empty, _ := writeRandomFile(t, dir, "empty.txt", 0)

	proc, err := encryption.NewProcessor(&config.Config{
		Files:    []string{good, empty},
		Parallel: 1,
		Quiet:    true,
		Suffix:   ".minilock",
	}, kp, nil)
	require.NoError(t, err)

	processed, errored, _, err := proc.ProcessFiles()
	require.ErrorIs(t, err, encryption.ErrSourceFileEmpty)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, errored)
}

func TestNewProcessorRecipients(t *testing.T) {
	t.Parallel()

	kp := newKeyPair(t)

	_, err := encryption.NewProcessor(&config.Config{NoSelf: true, Parallel: 1}, kp, nil)
	require.ErrorIs(t, err, encryption.ErrRecipientListEmpty)

	_, err = encryption.NewProcessor(&config.Config{Recipients: []string{"not-an-id"}, Parallel: 1}, kp, nil)
	require.Error(t, err)

	_, err = encryption.NewProcessor(&config.Config{Parallel: 1}, nil, nil)
	require.ErrorIs(t, err, encryption.ErrKeyPairMissing)

	proc, err := encryption.NewProcessor(&config.Config{NoSelf: true, Recipients: []string{kp.ID().String()}}, kp, nil)
	require.NoError(t, err)
	assert.Len(t, proc.Recipients(), 1)
}

func TestNewProcessorRejectsDuplicateOutputs(t *testing.T) {
	t.Parallel()

	kp := newKeyPair(t)
	first, _ := writeRandomFile(t, t.TempDir(), "notes.txt", 10)
	second, _ := writeRandomFile(t, t.TempDir(), "notes.txt", 20)

	cfg := &config.Config{
		Files:    []string{first, second},
		Parallel: 1,
		Quiet:    true,
		Suffix:   ".minilock",
		Output:   t.TempDir(),
	}

	_, err := encryption.NewProcessor(cfg, kp, nil)
	require.ErrorIs(t, err, encryption.ErrDuplicateOutput)

	// Next to their inputs, the same base names do not collide.
	cfg.Output = ""

	proc, err := encryption.NewProcessor(cfg, kp, nil)
	require.NoError(t, err)

	processed, errored, _, err := proc.ProcessFiles()
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Zero(t, errored)
}
