package format

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// FileNameMaxLength is the longest file name, in bytes, embedded in a file.
	FileNameMaxLength = 255
	// FileNameBlockSize is the size of the first chunk, which carries the file name.
	FileNameBlockSize = FileNameMaxLength + 1
)

// ErrInvalidFileName is returned when the embedded file name cannot be used.
var ErrInvalidFileName = errors.New("invalid embedded file name")

// PadFileName truncates name to FileNameMaxLength bytes on a rune boundary
// and pads it with NUL bytes to FileNameBlockSize.
func PadFileName(name string) []byte {
	block := make([]byte, FileNameBlockSize)

	raw := []byte(name)
	if len(raw) > FileNameMaxLength {
		raw = raw[:FileNameMaxLength]

		for len(raw) > 0 && !utf8.Valid(raw) {
			raw = raw[:len(raw)-1]
		}
	}

	copy(block, raw)

	return block
}

// ParseFileName recovers the file name from a decrypted name block.
// Only the base element of the name is kept.
func ParseFileName(block []byte) (string, error) {
	raw := bytes.TrimRight(block, "\x00")

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidFileName)
	}

	if bytes.IndexByte(raw, 0) >= 0 {
		return "", fmt.Errorf("%w: embedded NUL byte", ErrInvalidFileName)
	}

	name := filepath.Base(strings.ReplaceAll(string(raw), "\\", "/"))

	switch name {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, string(raw))
	}

	return name, nil
}
