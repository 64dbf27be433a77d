// Package fhir defines the HL7 FHIR MolecularDefinition resource shapes the
// translators produce and consume. Only the profile fields used by Allele,
// Sequence, and Variation profiles are modelled; decimal-valued quantities
// keep their exact textual form via json.Number.
package fhir

import "encoding/json"

// ResourceTypeMolecularDefinition is the resourceType for all profiles here.
const ResourceTypeMolecularDefinition = "MolecularDefinition"

// Coding is a reference to a code defined by a terminology system.
type Coding struct {
	System  string `json:"system,omitempty"`
	Version string `json:"version,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept is a concept, possibly coded in one or more systems.
type CodeableConcept struct {
	ID        string      `json:"id,omitempty"`
	Extension []Extension `json:"extension,omitempty"`
	Coding    []Coding    `json:"coding,omitempty"`
	Text      string      `json:"text,omitempty"`
}

// Quantity carries a decimal value. The value is kept as a json.Number so
// that integrality checks see the digits the document actually carried.
type Quantity struct {
	Value json.Number `json:"value,omitempty"`
}

// Identifier is a business identifier with its naming system.
type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Reference points at another resource, possibly contained.
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Extension is a FHIR extension: a url naming the meaning plus exactly one
// value[x], or nested sub-extensions.
type Extension struct {
	ID           string       `json:"id,omitempty"`
	URL          string       `json:"url,omitempty"`
	ValueString  *string      `json:"valueString,omitempty"`
	ValueBoolean *bool        `json:"valueBoolean,omitempty"`
	ValueInteger *int64       `json:"valueInteger,omitempty"`
	ValueDecimal *json.Number `json:"valueDecimal,omitempty"`
	Extension    []Extension  `json:"extension,omitempty"`
}

// MolecularDefinition is the FHIR resource backing the Allele, Sequence,
// and Variation profiles. Contained resources (auxiliary Sequences) are
// themselves MolecularDefinitions.
type MolecularDefinition struct {
	ResourceType   string                 `json:"resourceType"`
	ID             string                 `json:"id,omitempty"`
	Contained      []*MolecularDefinition `json:"contained,omitempty"`
	Extension      []Extension            `json:"extension,omitempty"`
	Identifier     []Identifier           `json:"identifier,omitempty"`
	Description    string                 `json:"description,omitempty"`
	MoleculeType   *CodeableConcept       `json:"moleculeType,omitempty"`
	Location       []*Location            `json:"location,omitempty"`
	Representation []*Representation      `json:"representation,omitempty"`
}

// Location places the molecular definition on a sequence.
type Location struct {
	ID               string            `json:"id,omitempty"`
	Extension        []Extension       `json:"extension,omitempty"`
	SequenceLocation *SequenceLocation `json:"sequenceLocation,omitempty"`
}

// SequenceLocation ties a coordinate interval to its sequence context.
type SequenceLocation struct {
	SequenceContext    *Reference          `json:"sequenceContext,omitempty"`
	CoordinateInterval *CoordinateInterval `json:"coordinateInterval,omitempty"`
}

// CoordinateInterval is a start/end pair under a named coordinate system.
type CoordinateInterval struct {
	CoordinateSystem *CoordinateSystem `json:"coordinateSystem,omitempty"`
	StartQuantity    *Quantity         `json:"startQuantity,omitempty"`
	EndQuantity      *Quantity         `json:"endQuantity,omitempty"`
}

// CoordinateSystem names the counting system, origin, and normalization
// method the interval's numbers are expressed in.
type CoordinateSystem struct {
	System              *CodeableConcept `json:"system,omitempty"`
	Origin              *CodeableConcept `json:"origin,omitempty"`
	NormalizationMethod *CodeableConcept `json:"normalizationMethod,omitempty"`
}

// Representation is one way of representing the molecular definition,
// tagged by focus (allele-state, reference-state, alternative-state).
type Representation struct {
	Focus     *CodeableConcept  `json:"focus,omitempty"`
	Code      []CodeableConcept `json:"code,omitempty"`
	Literal   *Literal          `json:"literal,omitempty"`
	Extracted *Extracted        `json:"extracted,omitempty"`
	Repeated  *Repeated         `json:"repeated,omitempty"`
}

// Literal is a representation carrying the sequence value verbatim.
type Literal struct {
	ID        string           `json:"id,omitempty"`
	Extension []Extension      `json:"extension,omitempty"`
	Encoding  *CodeableConcept `json:"encoding,omitempty"`
	Value     string           `json:"value"`
}

// Extracted represents a sequence as a slice of a starting molecule.
type Extracted struct {
	StartingMolecule   *Reference                   `json:"startingMolecule,omitempty"`
	CoordinateInterval *ExtractedCoordinateInterval `json:"coordinateInterval,omitempty"`
	ReverseComplement  bool                         `json:"reverseComplement,omitempty"`
}

// ExtractedCoordinateInterval is the coordinate interval of an extracted
// representation, with plain integer bounds.
type ExtractedCoordinateInterval struct {
	CoordinateSystem *CoordinateSystem `json:"coordinateSystem,omitempty"`
	Start            int64             `json:"start"`
	End              int64             `json:"end"`
}

// Repeated represents a sequence as a motif repeated a number of times.
type Repeated struct {
	SequenceMotif *Reference `json:"sequenceMotif,omitempty"`
	CopyCount     int        `json:"copyCount"`
}

// NewQuantity builds a Quantity from an integer position.
func NewQuantity(value int64) *Quantity {
	return &Quantity{Value: json.Number(formatInt(value))}
}

// CC builds a single-coding CodeableConcept.
func CC(system, code, display string) *CodeableConcept {
	return &CodeableConcept{Coding: []Coding{{System: system, Code: code, Display: display}}}
}
