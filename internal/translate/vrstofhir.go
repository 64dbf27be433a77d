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

// VrsToFhirTranslator renders a VRS Allele into the rich FHIR Allele
// profile form: metadata as identifier entries, the location's sequence
// context as contained Sequence resources, and every nested extension
// preserved so the translation is lossless.
type VrsToFhirTranslator struct {
	resolver seqrepo.Resolver
	denorm   *SequenceExpressionResolver
	mapper   *ExtensionMapper
	coords   coords.Table
	urls     URLTable
}

// NewVrsToFhirTranslator builds a translator with the default URL and
// coordinate tables.
func NewVrsToFhirTranslator(r seqrepo.Resolver) *VrsToFhirTranslator {
	urls := DefaultURLs()
	return &VrsToFhirTranslator{
		resolver: r,
		denorm:   NewSequenceExpressionResolver(r),
		mapper:   NewExtensionMapper(urls),
		coords:   coords.DefaultTable(),
		urls:     urls,
	}
}

// Translate converts a VRS Allele into a FHIR Allele profile. Alleles with
// a reference-length state are denormalized to a literal state first. The
// input allele is never mutated.
func (t *VrsToFhirTranslator) Translate(ctx context.Context, allele *vrs.Allele) (*fhir.MolecularDefinition, error) {
	if err := validateVrsAllele(allele); err != nil {
		return nil, err
	}

	allele, err := t.denorm.Denormalize(ctx, allele)
	if err != nil {
		return nil, err
	}
	lse := allele.State.(vrs.LiteralSequenceExpression)

	molType, err := t.moleculeType(ctx, allele)
	if err != nil {
		return nil, err
	}

	contained, err := t.mapContained(allele, molType)
	if err != nil {
		return nil, err
	}
	location, err := t.mapLocation(allele)
	if err != nil {
		return nil, err
	}
	representation, err := t.mapRepresentation(allele, lse)
	if err != nil {
		return nil, err
	}

	return &fhir.MolecularDefinition{
		ResourceType:   fhir.ResourceTypeMolecularDefinition,
		Contained:      contained,
		Identifier:     t.mapIdentifiers(allele),
		Description:    allele.Description,
		MoleculeType:   molType,
		Location:       []*fhir.Location{location},
		Representation: []*fhir.Representation{representation},
	}, nil
}

// validateVrsAllele checks the top-level type discriminators before any
// mapping starts.
func validateVrsAllele(allele *vrs.Allele) error {
	if allele == nil || allele.Type != vrs.TypeAllele {
		return fmt.Errorf("%w: expression type must be %q", ErrInvalidVrsAllele, vrs.TypeAllele)
	}
	if allele.Location == nil || allele.Location.Type != vrs.TypeSequenceLocation {
		return fmt.Errorf("%w: location type must be %q", ErrInvalidVrsAllele, vrs.TypeSequenceLocation)
	}
	if allele.State == nil {
		return fmt.Errorf("%w: state is required", ErrInvalidVrsAllele)
	}
	switch allele.State.StateType() {
	case vrs.TypeLiteralSequenceExpression, vrs.TypeReferenceLengthExpression:
		return nil
	}
	return fmt.Errorf("%w: unsupported state type %q", ErrInvalidVrsAllele, allele.State.StateType())
}

// moleculeType prefers the explicit moleculeType on the sequence
// reference; otherwise it resolves the refget accession to a RefSeq id and
// classifies its prefix.
func (t *VrsToFhirTranslator) moleculeType(ctx context.Context, allele *vrs.Allele) (*fhir.CodeableConcept, error) {
	ref := allele.Location.SequenceReference
	if ref != nil && ref.MoleculeType != "" {
		code, ok := vrsToFhirMolType[ref.MoleculeType]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedMoleculeType, ref.MoleculeType)
		}
		return fhir.CC(t.urls.MoleculeType, code, code+" Sequence"), nil
	}

	refseqID, err := t.refseqID(ctx, allele)
	if err != nil {
		return nil, err
	}
	seqType, err := refseq.Classify(refseqID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMoleculeType, err)
	}
	name := seqType.String()
	return fhir.CC(sequenceTypeSystem, strings.ToLower(name), name+" Sequence"), nil
}

func (t *VrsToFhirTranslator) refseqID(ctx context.Context, allele *vrs.Allele) (string, error) {
	ref := allele.Location.SequenceReference
	if ref == nil {
		return "", fmt.Errorf("%w: location.sequenceReference", ErrMissingField)
	}
	return refseqIDForAccession(ctx, t.resolver, ref.RefgetAccession)
}

// mapIdentifiers renders id, name, aliases, and digest as identifier
// entries. Nil when all four are absent so the field is omitted entirely.
func (t *VrsToFhirTranslator) mapIdentifiers(allele *vrs.Allele) []fhir.Identifier {
	var ids []fhir.Identifier
	if allele.ID != "" {
		ids = append(ids, fhir.Identifier{System: t.urls.Allele.ID, Value: allele.ID})
	}
	if allele.Name != "" {
		ids = append(ids, fhir.Identifier{System: t.urls.Allele.Name, Value: allele.Name})
	}
	for _, alias := range allele.Aliases {
		ids = append(ids, fhir.Identifier{System: t.urls.Allele.Aliases, Value: alias})
	}
	if allele.Digest != "" {
		ids = append(ids, fhir.Identifier{System: t.urls.Allele.Digest, Value: allele.Digest})
	}
	return ids
}

// mapContained builds the auxiliary Sequence resources backing the
// location's sequence context: one literal-only resource for
// location.sequence and one cross-reference resource for
// location.sequenceReference.
func (t *VrsToFhirTranslator) mapContained(allele *vrs.Allele, molType *fhir.CodeableConcept) ([]*fhir.MolecularDefinition, error) {
	loc := allele.Location
	var contained []*fhir.MolecularDefinition

	if loc.Sequence != "" {
		contained = append(contained, &fhir.MolecularDefinition{
			ResourceType: fhir.ResourceTypeMolecularDefinition,
			ID:           containedSequenceID,
			MoleculeType: molType,
			Representation: []*fhir.Representation{
				{Literal: &fhir.Literal{Value: loc.Sequence}},
			},
		})
	}

	if ref := loc.SequenceReference; ref != nil {
		exts, err := t.mapper.BuildEntityExtensions(t.urls.SequenceReference, EntityFields{
			ID:          ref.ID,
			Name:        ref.Name,
			Description: ref.Description,
			Aliases:     ref.Aliases,
			Extensions:  ref.Extensions,
		})
		if err != nil {
			return nil, err
		}

		rep := &fhir.Representation{
			Code: []fhir.CodeableConcept{
				{Coding: []fhir.Coding{{System: t.urls.RefgetAccession, Code: ref.RefgetAccession}}},
			},
		}
		if ref.Sequence != "" {
			alphabet := ref.ResidueAlphabet
			if alphabet == "" && molType != nil && len(molType.Coding) > 0 {
				alphabet = residueAlphabetFor(molType.Coding[0].Code)
			}
			rep.Literal = &fhir.Literal{
				Encoding: fhir.CC(t.urls.ResidueAlphabet, alphabet, ""),
				Value:    ref.Sequence,
			}
		}

		contained = append(contained, &fhir.MolecularDefinition{
			ResourceType:   fhir.ResourceTypeMolecularDefinition,
			ID:             containedSequenceReferenceID,
			Extension:      exts,
			MoleculeType:   molType,
			Representation: []*fhir.Representation{rep},
		})
	}

	return contained, nil
}

// mapLocation builds the single location entry. The sequence context
// points at whichever contained resource was built, with location.sequence
// taking priority over location.sequenceReference when both are present.
func (t *VrsToFhirTranslator) mapLocation(allele *vrs.Allele) (*fhir.Location, error) {
	loc := allele.Location

	var context *fhir.Reference
	switch {
	case loc.Sequence != "":
		context = &fhir.Reference{
			Reference: "#" + containedSequenceID,
			Type:      "Sequence",
			Display:   "VRS location.sequence as contained FHIR Sequence",
		}
	case loc.SequenceReference != nil:
		context = &fhir.Reference{
			Reference: "#" + containedSequenceReferenceID,
			Type:      "Sequence",
			Display:   "VRS location.sequenceReference as contained FHIR Sequence",
		}
	default:
		return nil, fmt.Errorf("%w: location needs a sequence or a sequenceReference", ErrMissingField)
	}

	exts, err := t.mapper.BuildEntityExtensions(t.urls.SequenceLocation, EntityFields{
		Name:        loc.Name,
		Description: loc.Description,
		Aliases:     loc.Aliases,
		Digest:      loc.Digest,
		Extensions:  loc.Extensions,
	})
	if err != nil {
		return nil, err
	}

	// VRS positions are already 0-based interbase, so they cast straight
	// into the vrs convention with no indexing adjustment.
	conv, err := t.coords.ForFormat(coords.FormatVRS, refseq.DNA)
	if err != nil {
		return nil, err
	}

	return &fhir.Location{
		ID:        loc.ID,
		Extension: exts,
		SequenceLocation: &fhir.SequenceLocation{
			SequenceContext: context,
			CoordinateInterval: &fhir.CoordinateInterval{
				CoordinateSystem: &fhir.CoordinateSystem{
					System:              conv.System,
					Origin:              conv.Origin,
					NormalizationMethod: conv.NormalizationMethod,
				},
				StartQuantity: fhir.NewQuantity(loc.Start),
				EndQuantity:   fhir.NewQuantity(loc.End),
			},
		},
	}, nil
}

// mapRepresentation builds the single allele-state representation: one
// code entry per VRS expression plus the literal state value.
func (t *VrsToFhirTranslator) mapRepresentation(allele *vrs.Allele, lse vrs.LiteralSequenceExpression) (*fhir.Representation, error) {
	var codes []fhir.CodeableConcept
	for _, exp := range allele.Expressions {
		exts, err := t.mapper.ToFhir(exp.Extensions)
		if err != nil {
			return nil, err
		}
		codes = append(codes, fhir.CodeableConcept{
			ID:        exp.ID,
			Extension: exts,
			Coding: []fhir.Coding{{
				Display: exp.Syntax,
				Code:    exp.Value,
				Version: exp.SyntaxVersion,
			}},
		})
	}

	litExts, err := t.mapper.BuildEntityExtensions(t.urls.LiteralSequence, EntityFields{
		Name:        lse.Name,
		Description: lse.Description,
		Aliases:     lse.Aliases,
		Extensions:  lse.Extensions,
	})
	if err != nil {
		return nil, err
	}

	return &fhir.Representation{
		Focus: fhir.CC(focusSystemAllele, focusCodeAlleleState, "Allele State"),
		Code:  codes,
		Literal: &fhir.Literal{
			ID:        lse.ID,
			Extension: litExts,
			Value:     lse.Sequence,
		},
	}, nil
}
