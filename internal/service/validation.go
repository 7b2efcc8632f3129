package service

import (
	"fmt"
	"unicode"
)

// MaxRecordIDLength bounds record ids accepted by both sides of the sync.
const MaxRecordIDLength = 128

// ValidateRecordID rejects empty ids, ids longer than [MaxRecordIDLength]
// and ids containing whitespace or control characters.
func ValidateRecordID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRecordID)
	}
	if len(id) > MaxRecordIDLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidRecordID, MaxRecordIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: contains whitespace or control characters", ErrInvalidRecordID)
		}
	}
	return nil
}
