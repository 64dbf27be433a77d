package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/seqvar/vrsfhir/internal/coords"
	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/refseq"
	"github.com/seqvar/vrsfhir/internal/seqrepo"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// AlleleTranslator converts between VRS Alleles and the simple contained
// FHIR form: a single contained Sequence named "ref-to-<accession>" that
// carries the RefSeq cross-reference, and one allele-state literal. This
// shape only supports plain literal-value alleles; the rich form in
// VrsToFhirTranslator/FhirToVrsTranslator is lossless.
type AlleleTranslator struct {
	resolver   seqrepo.Resolver
	normalizer *AlleleNormalizer
	denorm     *SequenceExpressionResolver
	coords     coords.Table
}

// NewAlleleTranslator builds a simple-form translator over the given
// sequence store.
func NewAlleleTranslator(r seqrepo.Resolver) *AlleleTranslator {
	return &AlleleTranslator{
		resolver:   r,
		normalizer: NewAlleleNormalizer(r),
		denorm:     NewSequenceExpressionResolver(r),
		coords:     coords.DefaultTable(),
	}
}

// AlleleProfileToVrs converts a simple-form FHIR Allele profile into a VRS
// Allele.
//
// The contained resource contract is rigid: contained[0] must carry
// exactly one representation whose first code holds the RefSeq accession.
func (t *AlleleTranslator) AlleleProfileToVrs(ctx context.Context, doc *fhir.MolecularDefinition, normalize bool) (*vrs.Allele, error) {
	if doc == nil || doc.ResourceType != fhir.ResourceTypeMolecularDefinition {
		return nil, fmt.Errorf("%w: expected a %s resource", ErrInvalidAlleleProfile, fhir.ResourceTypeMolecularDefinition)
	}

	seqLoc, err := validateSequenceLocation(doc.Location)
	if err != nil {
		return nil, err
	}
	refseqID, err := extractContainedAccession(doc)
	if err != nil {
		return nil, err
	}
	start, end, err := extractCoordinates(seqLoc)
	if err != nil {
		return nil, err
	}

	rep, err := alleleStateRepresentation(doc.Representation)
	if err != nil {
		return nil, err
	}
	if rep.Literal == nil {
		return nil, ErrMissingLiteralValue
	}
	altSeq, err := vrs.ValidateSequence(strings.TrimSpace(rep.Literal.Value))
	if err != nil {
		return nil, err
	}

	refgetAccession, err := t.resolver.DeriveRefgetAccession(ctx, "refseq:"+refseqID)
	if err != nil {
		return nil, err
	}

	allele := &vrs.Allele{
		Type: vrs.TypeAllele,
		Location: &vrs.SequenceLocation{
			Type: vrs.TypeSequenceLocation,
			SequenceReference: &vrs.SequenceReference{
				Type:            vrs.TypeSequenceReference,
				RefgetAccession: strings.TrimPrefix(refgetAccession, "refget:"),
			},
			Start: start,
			End:   end,
		},
		State: vrs.LiteralSequenceExpression{
			Type:     vrs.TypeLiteralSequenceExpression,
			Sequence: altSeq,
		},
	}
	if !normalize {
		return allele, nil
	}
	return t.normalizer.Normalize(ctx, allele)
}

// VrsToAlleleProfile converts a VRS Allele into the simple contained FHIR
// form. The state must already be a literal sequence expression.
func (t *AlleleTranslator) VrsToAlleleProfile(ctx context.Context, allele *vrs.Allele) (*fhir.MolecularDefinition, error) {
	if err := validateVrsAllele(allele); err != nil {
		return nil, err
	}
	allele, err := t.denorm.Denormalize(ctx, allele)
	if err != nil {
		return nil, err
	}
	lse, ok := allele.State.(vrs.LiteralSequenceExpression)
	if !ok {
		return nil, fmt.Errorf("%w: state type must be %q", ErrInvalidVrsAllele, vrs.TypeLiteralSequenceExpression)
	}

	refseqID, err := refseqIDForAccession(ctx, t.resolver, allele.Location.SequenceReference.RefgetAccession)
	if err != nil {
		return nil, err
	}
	seqType, err := refseq.Classify(refseqID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMoleculeType, err)
	}

	name := seqType.String()
	molType := fhir.CC(sequenceTypeSystem, strings.ToLower(name), name+" Sequence")

	containedID := containedRefPrefix + refseq.ToCanonicalID(refseqID)
	sequenceProfile := &fhir.MolecularDefinition{
		ResourceType: fhir.ResourceTypeMolecularDefinition,
		ID:           containedID,
		MoleculeType: molType,
		Representation: []*fhir.Representation{
			{Code: []fhir.CodeableConcept{
				{Coding: []fhir.Coding{{System: refseqSystem, Code: refseqID}}},
			}},
		},
	}

	// FHIR literal.value must be non-empty; deletions carry a single space.
	altSeq := lse.Sequence
	if altSeq == "" {
		altSeq = " "
	}

	conv, err := t.coords.ForFormat(coords.FormatVRS, seqType)
	if err != nil {
		return nil, err
	}

	return &fhir.MolecularDefinition{
		ResourceType: fhir.ResourceTypeMolecularDefinition,
		Contained:    []*fhir.MolecularDefinition{sequenceProfile},
		MoleculeType: molType,
		Location: []*fhir.Location{{
			SequenceLocation: &fhir.SequenceLocation{
				SequenceContext: &fhir.Reference{
					Reference: "#" + containedID,
					Type:      fhir.ResourceTypeMolecularDefinition,
				},
				CoordinateInterval: &fhir.CoordinateInterval{
					CoordinateSystem: &fhir.CoordinateSystem{
						System:              conv.System,
						Origin:              conv.Origin,
						NormalizationMethod: conv.NormalizationMethod,
					},
					StartQuantity: fhir.NewQuantity(allele.Location.Start),
					EndQuantity:   fhir.NewQuantity(allele.Location.End),
				},
			},
		}},
		Representation: []*fhir.Representation{{
			Focus:   fhir.CC(focusSystemAllele, focusCodeAlleleState, "Allele State"),
			Literal: &fhir.Literal{Value: altSeq},
		}},
	}, nil
}

// extractContainedAccession digs the RefSeq accession out of the simple
// form's contained resource and validates its shape.
func extractContainedAccession(doc *fhir.MolecularDefinition) (string, error) {
	if len(doc.Contained) == 0 {
		return "", fmt.Errorf("%w: 'contained'", ErrMissingField)
	}
	item := doc.Contained[0]
	if len(item.Representation) != 1 {
		return "", fmt.Errorf("%w: contained 'representation' must contain exactly one item", ErrMissingField)
	}
	rep := item.Representation[0]
	if len(rep.Code) == 0 {
		return "", fmt.Errorf("%w: 'code' in representation", ErrMissingField)
	}
	code := rep.Code[0]
	if len(code.Coding) == 0 || code.Coding[0].Code == "" {
		return "", fmt.Errorf("%w: 'coding.code' value", ErrMissingField)
	}
	return refseq.Validate(code.Coding[0].Code)
}
