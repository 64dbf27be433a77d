package translate

import (
	"context"
	"fmt"

	"github.com/seqvar/vrsfhir/internal/coords"
	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/seqrepo"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// FhirToVrsTranslator reconstructs a VRS Allele from the rich FHIR Allele
// profile form, inverting every mapping VrsToFhirTranslator performs so a
// round trip reproduces the original allele.
type FhirToVrsTranslator struct {
	mapper     *ExtensionMapper
	normalizer *AlleleNormalizer
	urls       URLTable
}

// NewFhirToVrsTranslator builds a translator with the default URL table.
// The resolver is only consulted when normalization is requested.
func NewFhirToVrsTranslator(r seqrepo.Resolver) *FhirToVrsTranslator {
	urls := DefaultURLs()
	return &FhirToVrsTranslator{
		mapper:     NewExtensionMapper(urls),
		normalizer: NewAlleleNormalizer(r),
		urls:       urls,
	}
}

// Translate converts a FHIR Allele profile back into a VRS Allele. When
// normalize is true the result is canonicalized and given digest ids;
// otherwise it is returned as constructed, without ids.
func (t *FhirToVrsTranslator) Translate(ctx context.Context, doc *fhir.MolecularDefinition, normalize bool) (*vrs.Allele, error) {
	if doc == nil || doc.ResourceType != fhir.ResourceTypeMolecularDefinition {
		return nil, fmt.Errorf("%w: expected a %s resource", ErrInvalidAlleleProfile, fhir.ResourceTypeMolecularDefinition)
	}

	meta := t.extractMetadata(doc)

	location, err := t.mapSequenceLocation(doc)
	if err != nil {
		return nil, err
	}
	state, err := t.mapLiteralState(doc)
	if err != nil {
		return nil, err
	}
	expressions, err := t.mapExpressions(doc)
	if err != nil {
		return nil, err
	}

	allele := &vrs.Allele{
		ID:          meta.ID,
		Type:        vrs.TypeAllele,
		Name:        meta.Name,
		Description: doc.Description,
		Digest:      meta.Digest,
		Aliases:     meta.Aliases,
		Expressions: expressions,
		Location:    location,
		State:       state,
	}
	if !normalize {
		return allele, nil
	}
	return t.normalizer.Normalize(ctx, allele)
}

// extractMetadata recovers id, name, aliases, and digest from the
// identifier entries by their naming systems.
func (t *FhirToVrsTranslator) extractMetadata(doc *fhir.MolecularDefinition) EntityFields {
	var meta EntityFields
	for _, id := range doc.Identifier {
		switch id.System {
		case t.urls.Allele.ID:
			meta.ID = id.Value
		case t.urls.Allele.Name:
			meta.Name = id.Value
		case t.urls.Allele.Aliases:
			meta.Aliases = append(meta.Aliases, id.Value)
		case t.urls.Allele.Digest:
			meta.Digest = id.Value
		}
	}
	return meta
}

// mapExpressions recovers the VRS expressions from the allele-state
// representation's code entries.
func (t *FhirToVrsTranslator) mapExpressions(doc *fhir.MolecularDefinition) ([]vrs.Expression, error) {
	rep, err := alleleStateRepresentation(doc.Representation)
	if err != nil {
		return nil, err
	}

	var expressions []vrs.Expression
	for _, code := range rep.Code {
		exts := t.mapper.ToVrs(code.Extension)
		for _, coding := range code.Coding {
			expressions = append(expressions, vrs.Expression{
				ID:            code.ID,
				Syntax:        coding.Display,
				Value:         coding.Code,
				SyntaxVersion: coding.Version,
				Extensions:    exts,
			})
		}
	}
	return expressions, nil
}

// containedSequences finds the two auxiliary Sequence resources by their
// fixed ids. At least one must be present.
func containedSequences(doc *fhir.MolecularDefinition) (seq, seqRef *fhir.MolecularDefinition, err error) {
	for _, res := range doc.Contained {
		switch res.ID {
		case containedSequenceID:
			seq = res
		case containedSequenceReferenceID:
			seqRef = res
		}
	}
	if seq == nil && seqRef == nil {
		return nil, nil, fmt.Errorf("%w: contained %q and %q are both missing",
			ErrMissingField, containedSequenceID, containedSequenceReferenceID)
	}
	return seq, seqRef, nil
}

// mapSequenceLocation rebuilds the VRS SequenceLocation from the location
// entry, its extensions, and the contained sequence resources.
func (t *FhirToVrsTranslator) mapSequenceLocation(doc *fhir.MolecularDefinition) (*vrs.SequenceLocation, error) {
	seqLoc, err := validateSequenceLocation(doc.Location)
	if err != nil {
		return nil, err
	}
	start, end, err := extractCoordinates(seqLoc)
	if err != nil {
		return nil, err
	}

	loc := doc.Location[0]
	fields := t.mapper.ExtractEntityFields(t.urls.SequenceLocation, loc.Extension)

	seq, seqRef, err := containedSequences(doc)
	if err != nil {
		return nil, err
	}

	var literal string
	if seq != nil {
		literal, err = containedLiteralValue(seq)
		if err != nil {
			return nil, err
		}
	}

	var reference *vrs.SequenceReference
	if seqRef != nil {
		reference, err = t.mapSequenceReference(seqRef)
		if err != nil {
			return nil, err
		}
	}

	return &vrs.SequenceLocation{
		ID:                loc.ID,
		Type:              vrs.TypeSequenceLocation,
		Name:              fields.Name,
		Description:       fields.Description,
		Digest:            fields.Digest,
		Aliases:           fields.Aliases,
		Extensions:        fields.Extensions,
		SequenceReference: reference,
		Start:             start,
		End:               end,
		Sequence:          literal,
	}, nil
}

// mapSequenceReference rebuilds the VRS SequenceReference from the
// contained cross-reference resource.
func (t *FhirToVrsTranslator) mapSequenceReference(seqRef *fhir.MolecularDefinition) (*vrs.SequenceReference, error) {
	fields := t.mapper.ExtractEntityFields(t.urls.SequenceReference, seqRef.Extension)

	if len(seqRef.Representation) == 0 {
		return nil, fmt.Errorf("%w: contained %q representation", ErrMissingField, containedSequenceReferenceID)
	}
	rep := seqRef.Representation[0]
	if len(rep.Code) == 0 || len(rep.Code[0].Coding) == 0 || rep.Code[0].Coding[0].Code == "" {
		return nil, fmt.Errorf("%w: refget accession code in contained %q", ErrMissingField, containedSequenceReferenceID)
	}
	refgetAccession := rep.Code[0].Coding[0].Code

	if seqRef.MoleculeType == nil || len(seqRef.MoleculeType.Coding) == 0 {
		return nil, fmt.Errorf("%w: moleculeType in contained %q", ErrMissingField, containedSequenceReferenceID)
	}
	fhirMolType := seqRef.MoleculeType.Coding[0].Code
	molType, ok := fhirToVrsMolType[fhirMolType]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected one of: dna, rna, amino acid)", ErrUnsupportedMoleculeType, fhirMolType)
	}

	var alphabet, sequence string
	if rep.Literal != nil {
		sequence = rep.Literal.Value
		if rep.Literal.Encoding != nil && len(rep.Literal.Encoding.Coding) > 0 {
			alphabet = rep.Literal.Encoding.Coding[0].Code
		}
	}
	if alphabet == "" {
		alphabet = residueAlphabetFor(fhirMolType)
	}

	return &vrs.SequenceReference{
		ID:              fields.ID,
		Type:            vrs.TypeSequenceReference,
		Name:            fields.Name,
		Description:     fields.Description,
		Aliases:         fields.Aliases,
		Extensions:      fields.Extensions,
		RefgetAccession: refgetAccession,
		MoleculeType:    molType,
		ResidueAlphabet: alphabet,
		Sequence:        sequence,
	}, nil
}

// mapLiteralState rebuilds the literal sequence expression from the
// allele-state representation.
func (t *FhirToVrsTranslator) mapLiteralState(doc *fhir.MolecularDefinition) (vrs.LiteralSequenceExpression, error) {
	rep, err := alleleStateRepresentation(doc.Representation)
	if err != nil {
		return vrs.LiteralSequenceExpression{}, err
	}
	if rep.Literal == nil {
		return vrs.LiteralSequenceExpression{}, ErrMissingLiteralValue
	}

	sequence, err := vrs.ValidateSequence(rep.Literal.Value)
	if err != nil {
		return vrs.LiteralSequenceExpression{}, err
	}
	fields := t.mapper.ExtractEntityFields(t.urls.LiteralSequence, rep.Literal.Extension)

	return vrs.LiteralSequenceExpression{
		ID:          rep.Literal.ID,
		Type:        vrs.TypeLiteralSequenceExpression,
		Name:        fields.Name,
		Description: fields.Description,
		Aliases:     fields.Aliases,
		Extensions:  fields.Extensions,
		Sequence:    sequence,
	}, nil
}

// containedLiteralValue extracts the literal sequence string from a
// contained Sequence resource.
func containedLiteralValue(seq *fhir.MolecularDefinition) (string, error) {
	if len(seq.Representation) == 0 {
		return "", fmt.Errorf("%w: representation in contained %q", ErrMissingField, seq.ID)
	}
	literal := seq.Representation[0].Literal
	if literal == nil || literal.Value == "" {
		return "", fmt.Errorf("%w: literal value in contained %q", ErrMissingField, seq.ID)
	}
	return literal.Value, nil
}

// alleleStateRepresentation returns the representation entry whose focus
// codes allele-state.
func alleleStateRepresentation(reps []*fhir.Representation) (*fhir.Representation, error) {
	for _, rep := range reps {
		if rep == nil || rep.Focus == nil {
			continue
		}
		for _, coding := range rep.Focus.Coding {
			if coding.Code == focusCodeAlleleState {
				return rep, nil
			}
		}
	}
	return nil, ErrMissingAlleleState
}

// validateSequenceLocation checks each location's structural completeness
// and returns the first validated sequenceLocation. Every violation names
// the missing field.
func validateSequenceLocation(locations []*fhir.Location) (*fhir.SequenceLocation, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: location", ErrMissingField)
	}
	for _, loc := range locations {
		seqLoc := loc.SequenceLocation
		if seqLoc == nil {
			return nil, fmt.Errorf("%w: 'sequenceLocation' in location", ErrMissingField)
		}
		interval := seqLoc.CoordinateInterval
		if interval == nil {
			return nil, fmt.Errorf("%w: 'coordinateInterval' in sequence location", ErrMissingField)
		}
		if interval.CoordinateSystem == nil || interval.CoordinateSystem.System == nil ||
			len(interval.CoordinateSystem.System.Coding) == 0 {
			return nil, fmt.Errorf("%w: 'coordinateSystem.system.coding' in coordinate interval", ErrMissingField)
		}
		display := false
		for _, coding := range interval.CoordinateSystem.System.Coding {
			if coding.Display != "" {
				display = true
			}
		}
		if !display {
			return nil, fmt.Errorf("%w: 'coding.display' in 'coordinateSystem.system.coding'", ErrMissingField)
		}
		if interval.StartQuantity == nil || interval.StartQuantity.Value == "" {
			return nil, fmt.Errorf("%w: 'startQuantity.value' in coordinate interval", ErrMissingField)
		}
		if interval.EndQuantity == nil || interval.EndQuantity.Value == "" {
			return nil, fmt.Errorf("%w: 'endQuantity.value' in coordinate interval", ErrMissingField)
		}
	}
	return locations[0].SequenceLocation, nil
}

// extractCoordinates converts the quantities to strict integers and folds
// the coordinate system's indexing offset into the start position. The
// coordinate system must carry exactly one coding.
func extractCoordinates(seqLoc *fhir.SequenceLocation) (int64, int64, error) {
	interval := seqLoc.CoordinateInterval
	codings := interval.CoordinateSystem.System.Coding
	if len(codings) != 1 {
		return 0, 0, fmt.Errorf("%w: exactly one coding supported in coordinateSystem, got %d",
			coords.ErrInvalidCoordinateSystem, len(codings))
	}

	start, err := fhir.DecimalToInt(interval.StartQuantity.Value.String())
	if err != nil {
		return 0, 0, fmt.Errorf("startQuantity: %w", err)
	}
	end, err := fhir.DecimalToInt(interval.EndQuantity.Value.String())
	if err != nil {
		return 0, 0, fmt.Errorf("endQuantity: %w", err)
	}

	start, err = coords.AdjustStartForIndexing(codings[0].Display, start)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
