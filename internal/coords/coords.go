// Package coords defines the coordinate-system conventions used when
// rendering variant locations into FHIR coordinate intervals, and the
// indexing offsets needed to read them back.
package coords

import (
	"errors"
	"fmt"

	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/refseq"
)

// Format names the source notation a coordinate interval was derived from.
type Format string

const (
	FormatVRS  Format = "vrs"
	FormatSPDI Format = "spdi"
	FormatHGVS Format = "hgvs"
)

var (
	// ErrUnsupportedMoleculeType reports a molecule type with no defined
	// HGVS coordinate convention.
	ErrUnsupportedMoleculeType = errors.New("unsupported molecule type")
	// ErrInvalidCoordinateSystem reports an unrecognized coordinate-system
	// display label.
	ErrInvalidCoordinateSystem = errors.New("invalid coordinate system")
)

// Coordinate-system display labels as they appear in coding.display.
const (
	ZeroBasedInterval  = "0-based interval counting"
	ZeroBasedCharacter = "0-based character counting"
	OneBasedCharacter  = "1-based character counting"
)

// Convention is an immutable system/origin/normalization-method triple.
// Constructed once per table and never mutated.
type Convention struct {
	System              *fhir.CodeableConcept
	Origin              *fhir.CodeableConcept
	NormalizationMethod *fhir.CodeableConcept
}

// Table holds the convention triples per format. Tables are plain values
// passed into translators so tests can substitute their own.
type Table struct {
	vrs     Convention
	hgvsDNA Convention
	hgvsRNA Convention
}

// Terminology URIs for the convention concepts.
const (
	loincSystem          = "http://loinc.org"
	originSystem         = "http://hl7.org/fhir/uv/molecular-definition-data-types/CodeSystem/coordinate-origin"
	normalizationSystem  = "http://hl7.org/fhir/uv/molecular-definition-data-types/CodeSystem/normalization-method"
	codeZeroBaseInterval = "LA30100-4"
	codeOneBaseCharacter = "LA30102-0"
)

// DefaultTable builds the standard convention table:
// vrs/spdi use 0-based interval counting from sequence start, fully
// justified; hgvs uses 1-based character counting, right shifted, with the
// origin depending on molecule type.
func DefaultTable() Table {
	zeroInterval := fhir.CC(loincSystem, codeZeroBaseInterval, ZeroBasedInterval)
	oneCharacter := fhir.CC(loincSystem, codeOneBaseCharacter, OneBasedCharacter)
	sequenceStart := fhir.CC(originSystem, "sequence-start", "Sequence start")
	featureStart := fhir.CC(originSystem, "feature-start", "Feature start")
	fullyJustified := fhir.CC(normalizationSystem, "fully-justified", "Fully justified")
	rightShift := fhir.CC(normalizationSystem, "right-shift", "Right shift")

	return Table{
		vrs: Convention{
			System:              zeroInterval,
			Origin:              sequenceStart,
			NormalizationMethod: fullyJustified,
		},
		hgvsDNA: Convention{
			System:              oneCharacter,
			Origin:              featureStart,
			NormalizationMethod: rightShift,
		},
		hgvsRNA: Convention{
			System:              oneCharacter,
			Origin:              sequenceStart,
			NormalizationMethod: rightShift,
		},
	}
}

// ForFormat returns the convention for a source format. The molecule type
// matters only for HGVS, where DNA counts from feature start and RNA or
// protein from sequence start.
func (t Table) ForFormat(format Format, molType refseq.SequenceType) (Convention, error) {
	switch format {
	case FormatVRS, FormatSPDI:
		return t.vrs, nil
	case FormatHGVS:
		switch molType {
		case refseq.DNA:
			return t.hgvsDNA, nil
		case refseq.RNA, refseq.Protein:
			return t.hgvsRNA, nil
		}
		return Convention{}, fmt.Errorf("%w: %s under hgvs", ErrUnsupportedMoleculeType, molType)
	}
	return Convention{}, fmt.Errorf("unsupported coordinate format %q", format)
}

// IndexingOffset maps a coordinate-system display label to the start
// adjustment that converts a start position into VRS interbase counting.
func IndexingOffset(display string) (int64, error) {
	switch display {
	case ZeroBasedInterval:
		return 0, nil
	case ZeroBasedCharacter:
		return 1, nil
	case OneBasedCharacter:
		return -1, nil
	}
	return 0, fmt.Errorf("%w: %q (valid: %q, %q, %q)", ErrInvalidCoordinateSystem,
		display, ZeroBasedInterval, ZeroBasedCharacter, OneBasedCharacter)
}

// AdjustStartForIndexing applies the indexing offset for the given display
// label to a start position.
func AdjustStartForIndexing(display string, start int64) (int64, error) {
	offset, err := IndexingOffset(display)
	if err != nil {
		return 0, err
	}
	return start + offset, nil
}
