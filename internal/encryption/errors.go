package encryption

import (
	"errors"
	"fmt"

	"github.com/idelchi/minilock/internal/format"
	"github.com/idelchi/minilock/internal/header"
	"github.com/idelchi/minilock/internal/stream"
)

var (
	// ErrNotAFile is returned when the source does not reference a regular file.
	ErrNotAFile = errors.New("not a file")
	// ErrFileNameEmpty is returned for an empty source path.
	ErrFileNameEmpty = errors.New("file name is empty")
	// ErrRecipientListEmpty is returned when a file is encrypted for nobody.
	ErrRecipientListEmpty = errors.New("recipient list is empty")
	// ErrSourceFileEmpty is returned when the source file has no content.
	ErrSourceFileEmpty = errors.New("source file is empty")
	// ErrKeyPairMissing is returned when no key pair is supplied.
	ErrKeyPairMissing = errors.New("key pair is missing")
	// ErrIntegrity is returned when the decrypted stream does not match the hash in the header.
	ErrIntegrity = fmt.Errorf("%w: content hash mismatch", format.ErrCorruptFile)
)

// Errors surfaced from the format, header and stream layers.
var (
	ErrNotMiniLockFile  = format.ErrNotMiniLockFile
	ErrCorruptFile      = format.ErrCorruptFile
	ErrNotARecipient    = header.ErrNotARecipient
	ErrDecryptionFailed = stream.ErrDecryptionFailed
	// ErrDuplicateOutput is returned when two inputs would be written to the same path.
	ErrDuplicateOutput = errors.New("duplicate output path")
	// ErrInvalidName is returned when an output name override is not a plain file name.
	ErrInvalidName = errors.New("invalid output name")
)
