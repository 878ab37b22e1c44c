// Package ulid generates and validates the identifiers assigned to audited checks.
// ULIDs are 26-character, base32-encoded strings that sort by creation time,
// so listing checks by ID also lists them chronologically.
package ulid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrInvalidULID indicates that a ULID string is malformed or invalid
	ErrInvalidULID = errors.New("invalid ULID format")

	// IDs created within the same millisecond increment the previous entropy
	// so they keep their creation order.
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// GenerateWithTime creates a new ULID for timestamp t. IDs generated by this
// process for the same millisecond sort in the order they were generated.
func GenerateWithTime(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Validate checks if a string is a valid ULID (26 characters, base32 encoded)
func Validate(str string) error {
	if len(str) != ulid.EncodedSize {
		return fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidULID, ulid.EncodedSize, len(str))
	}

	if _, err := ulid.ParseStrict(str); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidULID, err)
	}

	return nil
}
