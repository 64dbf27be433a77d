package translate

import "errors"

// Sentinel errors for the translation core. Callers match with errors.Is;
// wrapped messages carry the offending field or value.
var (
	// ErrInvalidVrsAllele reports a document that is not a VRS Allele with
	// a SequenceLocation and a literal or reference-length state.
	ErrInvalidVrsAllele = errors.New("invalid VRS allele")
	// ErrInvalidAlleleProfile reports a document that is not a FHIR
	// MolecularDefinition Allele profile.
	ErrInvalidAlleleProfile = errors.New("invalid allele profile")
	// ErrMissingField reports an absent structural field (sequenceLocation,
	// coordinateInterval, coding, quantities, contained, representation).
	ErrMissingField = errors.New("missing required field")
	// ErrMissingAlleleState reports a profile with no representation
	// focused on allele-state.
	ErrMissingAlleleState = errors.New("missing allele-state representation")
	// ErrMissingLiteralValue reports an allele-state representation with
	// no literal value.
	ErrMissingLiteralValue = errors.New("missing literal value for allele-state representation")
	// ErrUnsupportedMoleculeType reports a molecule type outside the
	// DNA/RNA/protein mapping.
	ErrUnsupportedMoleculeType = errors.New("unsupported molecule type")
	// ErrUnsupportedExtensionValue reports an extension value kind with no
	// FHIR value[x] mapping.
	ErrUnsupportedExtensionValue = errors.New("unsupported extension value type")
	// ErrMalformedSpdi reports an SPDI string without exactly four
	// colon-separated fields or with a non-numeric position.
	ErrMalformedSpdi = errors.New("malformed SPDI expression")
	// ErrIntronicVariant reports an HGVS variant with intronic offsets.
	ErrIntronicVariant = errors.New("intronic HGVS variants are not supported")
	// ErrUnsupportedFormat reports an expression format other than hgvs
	// or spdi.
	ErrUnsupportedFormat = errors.New("unsupported expression format")
	// ErrUnsupportedEditType reports an HGVS edit type the variation
	// builder cannot represent.
	ErrUnsupportedEditType = errors.New("unsupported HGVS edit type")
)
