package vrs

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidSequenceValue reports a sequence that fails the VRS residue
// character pattern.
var ErrInvalidSequenceValue = errors.New("invalid sequence value")

// sequencePattern is the VRS sequenceString character set: uppercase
// residues plus the stop (*) and gap (-) characters.
var sequencePattern = regexp.MustCompile(`^[A-Z*\-]*$`)

// ValidateSequence checks a sequence against the VRS residue pattern and
// returns it unchanged on success.
func ValidateSequence(sequence string) (string, error) {
	if !sequencePattern.MatchString(sequence) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSequenceValue, sequence)
	}
	return sequence, nil
}
