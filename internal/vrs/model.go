// Package vrs defines the GA4GH VRS 2.0 allele model used by the translators.
package vrs

import (
	"encoding/json"
	"fmt"
)

// Type discriminators as they appear on the wire.
const (
	TypeAllele                    = "Allele"
	TypeSequenceLocation          = "SequenceLocation"
	TypeSequenceReference         = "SequenceReference"
	TypeLiteralSequenceExpression = "LiteralSequenceExpression"
	TypeReferenceLengthExpression = "ReferenceLengthExpression"
)

// Allele is a VRS 2.0 Allele: a sequence location plus a state.
type Allele struct {
	ID          string       `json:"id,omitempty"`
	Type        string       `json:"type"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Digest      string       `json:"digest,omitempty"`
	Aliases     []string     `json:"aliases,omitempty"`
	Extensions  []Extension  `json:"extensions,omitempty"`
	Expressions []Expression `json:"expressions,omitempty"`
	Location    *SequenceLocation
	State       AlleleState
}

// SequenceLocation is a half-open interbase interval on a reference sequence.
type SequenceLocation struct {
	ID                string             `json:"id,omitempty"`
	Type              string             `json:"type"`
	Name              string             `json:"name,omitempty"`
	Description       string             `json:"description,omitempty"`
	Digest            string             `json:"digest,omitempty"`
	Aliases           []string           `json:"aliases,omitempty"`
	Extensions        []Extension        `json:"extensions,omitempty"`
	SequenceReference *SequenceReference `json:"sequenceReference,omitempty"`
	Start             int64              `json:"start"`
	End               int64              `json:"end"`
	// Sequence is the literal sequence encoded by the reference at these
	// coordinates, when known.
	Sequence string `json:"sequence,omitempty"`
}

// SequenceReference identifies a reference sequence by refget accession.
type SequenceReference struct {
	ID              string      `json:"id,omitempty"`
	Type            string      `json:"type,omitempty"`
	Name            string      `json:"name,omitempty"`
	Description     string      `json:"description,omitempty"`
	Aliases         []string    `json:"aliases,omitempty"`
	Extensions      []Extension `json:"extensions,omitempty"`
	RefgetAccession string      `json:"refgetAccession,omitempty"`
	MoleculeType    string      `json:"moleculeType,omitempty"`
	ResidueAlphabet string      `json:"residueAlphabet,omitempty"`
	Sequence        string      `json:"sequence,omitempty"`
}

// Expression is an external representation of the allele (HGVS, SPDI, ...).
type Expression struct {
	ID            string      `json:"id,omitempty"`
	Syntax        string      `json:"syntax,omitempty"`
	Value         string      `json:"value,omitempty"`
	SyntaxVersion string      `json:"syntax_version,omitempty"`
	Extensions    []Extension `json:"extensions,omitempty"`
}

// AlleleState is the state carried by an Allele: either a literal sequence
// or a reference-length (length-delta) expression.
type AlleleState interface {
	StateType() string
}

// LiteralSequenceExpression carries the allele sequence verbatim.
type LiteralSequenceExpression struct {
	ID          string      `json:"id,omitempty"`
	Type        string      `json:"type"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Aliases     []string    `json:"aliases,omitempty"`
	Extensions  []Extension `json:"extensions,omitempty"`
	Sequence    string      `json:"sequence"`
}

// StateType implements AlleleState.
func (LiteralSequenceExpression) StateType() string { return TypeLiteralSequenceExpression }

// ReferenceLengthExpression encodes an indel by subunit length and total
// length relative to the reference, used for repeat expansions.
type ReferenceLengthExpression struct {
	ID                  string      `json:"id,omitempty"`
	Type                string      `json:"type"`
	Name                string      `json:"name,omitempty"`
	Description         string      `json:"description,omitempty"`
	Aliases             []string    `json:"aliases,omitempty"`
	Extensions          []Extension `json:"extensions,omitempty"`
	RepeatSubunitLength int64       `json:"repeatSubunitLength"`
	Length              int64       `json:"length"`
	Sequence            string      `json:"sequence,omitempty"`
}

// StateType implements AlleleState.
func (ReferenceLengthExpression) StateType() string { return TypeReferenceLengthExpression }

// alleleJSON mirrors Allele for (un)marshalling with a raw state.
type alleleJSON struct {
	ID          string            `json:"id,omitempty"`
	Type        string            `json:"type"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Digest      string            `json:"digest,omitempty"`
	Aliases     []string          `json:"aliases,omitempty"`
	Extensions  []Extension       `json:"extensions,omitempty"`
	Expressions []Expression      `json:"expressions,omitempty"`
	Location    *SequenceLocation `json:"location,omitempty"`
	State       json.RawMessage   `json:"state,omitempty"`
}

// MarshalJSON emits the state with its concrete type.
func (a Allele) MarshalJSON() ([]byte, error) {
	var state json.RawMessage
	if a.State != nil {
		b, err := json.Marshal(a.State)
		if err != nil {
			return nil, err
		}
		state = b
	}
	return json.Marshal(alleleJSON{
		ID:          a.ID,
		Type:        a.Type,
		Name:        a.Name,
		Description: a.Description,
		Digest:      a.Digest,
		Aliases:     a.Aliases,
		Extensions:  a.Extensions,
		Expressions: a.Expressions,
		Location:    a.Location,
		State:       state,
	})
}

// UnmarshalJSON dispatches the state on its "type" discriminator.
func (a *Allele) UnmarshalJSON(data []byte) error {
	var raw alleleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.ID = raw.ID
	a.Type = raw.Type
	a.Name = raw.Name
	a.Description = raw.Description
	a.Digest = raw.Digest
	a.Aliases = raw.Aliases
	a.Extensions = raw.Extensions
	a.Expressions = raw.Expressions
	a.Location = raw.Location
	a.State = nil

	if len(raw.State) == 0 {
		return nil
	}
	var disc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw.State, &disc); err != nil {
		return err
	}
	switch disc.Type {
	case TypeLiteralSequenceExpression:
		var lse LiteralSequenceExpression
		if err := json.Unmarshal(raw.State, &lse); err != nil {
			return err
		}
		a.State = lse
	case TypeReferenceLengthExpression:
		var rle ReferenceLengthExpression
		if err := json.Unmarshal(raw.State, &rle); err != nil {
			return err
		}
		a.State = rle
	default:
		return fmt.Errorf("unknown allele state type %q", disc.Type)
	}
	return nil
}
