// Package refseq classifies and validates NCBI RefSeq accessions.
package refseq

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SequenceType is the molecule class implied by an accession prefix.
type SequenceType int

const (
	DNA SequenceType = iota
	RNA
	Protein
)

// String returns the conventional label for the sequence type.
func (t SequenceType) String() string {
	switch t {
	case DNA:
		return "DNA"
	case RNA:
		return "RNA"
	case Protein:
		return "protein"
	}
	return fmt.Sprintf("SequenceType(%d)", int(t))
}

var (
	// ErrUnknownSequenceType reports an accession whose prefix matches no
	// known RefSeq class.
	ErrUnknownSequenceType = errors.New("unknown sequence type")
	// ErrInvalidAccession reports an identifier that is not a versioned
	// RefSeq accession.
	ErrInvalidAccession = errors.New("invalid accession")
)

// prefixTable maps RefSeq accession prefixes to sequence types. Exact,
// case-sensitive prefix match; first match wins.
var prefixTable = []struct {
	prefix string
	typ    SequenceType
}{
	{"NC_", DNA},
	{"NG_", DNA},
	{"NW_", DNA},
	{"NT_", DNA},
	{"NM_", RNA},
	{"NR_", RNA},
	{"NP_", Protein},
}

var accessionPattern = regexp.MustCompile(`^(NC_|NG_|NM_|NR_|NP_)\d+\.\d+$`)

// Classify detects the sequence type from the accession prefix.
func Classify(accession string) (SequenceType, error) {
	for _, e := range prefixTable {
		if strings.HasPrefix(accession, e.prefix) {
			return e.typ, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSequenceType, accession)
}

// Validate checks the accession against the versioned RefSeq shape
// (e.g. NM_000769.4) and returns it unchanged on success.
func Validate(accession string) (string, error) {
	if !accessionPattern.MatchString(accession) {
		return "", fmt.Errorf("%w: %q must be a versioned NCBI RefSeq ID (e.g. NM_000769.4)", ErrInvalidAccession, accession)
	}
	return accession, nil
}

// ToCanonicalID converts an accession into a deterministic lowercase id
// suitable for FHIR cross-references: the version suffix is dropped, the
// underscore removed, and the result lowercased (NM_001200.3 -> nm001200).
func ToCanonicalID(accession string) string {
	base, _, _ := strings.Cut(accession, ".")
	return strings.ToLower(strings.ReplaceAll(base, "_", ""))
}
