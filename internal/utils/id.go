package utils

import (
	"strings"

	"github.com/google/uuid"

	"github.com/mapgrid/lakeproc/pkg/errors"
)

// NewRandomID returns a new random ID (lowercase hyphenated UUID string).
func NewRandomID() string {
	return uuid.NewString()
}

// IsValidID returns true if the given string parses as an ID we accept
// on the wire (bare 32 char hex or canonical hyphenated UUID).
func IsValidID(in string) bool {
	_, err := NormalizeID(in)
	return err == nil
}

// NormalizeID normalizes a dataset / job ID to the canonical lowercase
// hyphenated UUID form.
//
// Accepted inputs, case-insensitive:
//   - bare 32 char hex ("ABC123DEF456789012345678901234AB")
//   - hyphenated UUID  ("abc123de-f456-7890-1234-5678901234ab")
//
// Anything else fails with ErrInvalidDatasetID. Normalize is idempotent.
func NormalizeID(in string) (string, error) {
	clean := strings.ToLower(strings.ReplaceAll(in, "-", ""))
	if len(clean) != 32 {
		return "", errors.ErrInvalidDatasetID
	}
	for _, r := range clean {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", errors.ErrInvalidDatasetID
		}
	}
	return clean[:8] + "-" + clean[8:12] + "-" + clean[12:16] + "-" + clean[16:20] + "-" + clean[20:], nil
}

// ParseID parses any accepted wire form into a uuid.UUID.
func ParseID(in string) (uuid.UUID, error) {
	norm, err := NormalizeID(in)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(norm)
	if err != nil {
		return uuid.Nil, errors.ErrInvalidDatasetID
	}
	return id, nil
}
