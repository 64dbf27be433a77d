package translate

import (
	"context"
	"strings"

	"github.com/seqvar/vrsfhir/internal/coords"
	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/refseq"
	"github.com/seqvar/vrsfhir/internal/seqrepo"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// AlleleFactory builds VRS Alleles and FHIR Allele profiles from five
// attributes: accession, start, end, allele state, and an optional id.
// The factory exists so callers composing alleles by hand do not have to
// assemble the nested location and representation structures themselves.
type AlleleFactory struct {
	resolver   seqrepo.Resolver
	normalizer *AlleleNormalizer
	coords     coords.Table
}

// NewAlleleFactory builds a factory over the given sequence store.
func NewAlleleFactory(r seqrepo.Resolver) *AlleleFactory {
	return &AlleleFactory{
		resolver:   r,
		normalizer: NewAlleleNormalizer(r),
		coords:     coords.DefaultTable(),
	}
}

// BuildVrsAllele constructs a VRS Allele from an accession, an interbase
// interval, and a literal allele state. When normalize is true the result
// is canonicalized and given digest ids.
func (f *AlleleFactory) BuildVrsAllele(ctx context.Context, accession string, start, end int64, alleleState string, normalize bool) (*vrs.Allele, error) {
	seq, err := vrs.ValidateSequence(alleleState)
	if err != nil {
		return nil, err
	}
	refgetAccession, err := f.resolver.DeriveRefgetAccession(ctx, "refseq:"+accession)
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
			Sequence: seq,
		},
	}
	if !normalize {
		return allele, nil
	}
	return f.normalizer.Normalize(ctx, allele)
}

// BuildFhirAllele constructs a FHIR Allele profile with one contained
// Sequence cross-referencing the accession. idValue overrides the
// generated contained id suffix when non-empty.
func (f *AlleleFactory) BuildFhirAllele(accession string, start, end int64, alleleState, idValue string) (*fhir.MolecularDefinition, error) {
	validated, err := refseq.Validate(accession)
	if err != nil {
		return nil, err
	}
	seqType, err := refseq.Classify(validated)
	if err != nil {
		return nil, err
	}
	name := seqType.String()
	molType := fhir.CC(sequenceTypeSystem, strings.ToLower(name), name+" Sequence")

	suffix := idValue
	if suffix == "" {
		suffix = refseq.ToCanonicalID(validated)
	}
	containedID := containedRefPrefix + suffix

	sequenceProfile := &fhir.MolecularDefinition{
		ResourceType: fhir.ResourceTypeMolecularDefinition,
		ID:           containedID,
		MoleculeType: molType,
		Representation: []*fhir.Representation{
			{Code: []fhir.CodeableConcept{
				{Coding: []fhir.Coding{{System: refseqSystem, Code: validated}}},
			}},
		},
	}

	conv, err := f.coords.ForFormat(coords.FormatVRS, seqType)
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
					StartQuantity: fhir.NewQuantity(start),
					EndQuantity:   fhir.NewQuantity(end),
				},
			},
		}},
		Representation: []*fhir.Representation{{
			Focus:   fhir.CC(focusSystemAllele, focusCodeAlleleState, "Allele State"),
			Literal: &fhir.Literal{Value: alleleState},
		}},
	}, nil
}
