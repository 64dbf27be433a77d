package translate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/seqvar/vrsfhir/internal/coords"
	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/hgvs"
	"github.com/seqvar/vrsfhir/internal/refseq"
	"github.com/seqvar/vrsfhir/internal/seqrepo"
)

// ExpressionTranslator converts external variant expressions (HGVS, SPDI)
// into FHIR Variation profiles with explicit reference-state and
// alternative-state representations.
type ExpressionTranslator struct {
	resolver seqrepo.Resolver
	coords   coords.Table
}

// NewExpressionTranslator builds an expression translator over the given
// sequence store.
func NewExpressionTranslator(r seqrepo.Resolver) *ExpressionTranslator {
	return &ExpressionTranslator{resolver: r, coords: coords.DefaultTable()}
}

// variant carries the parsed attributes a Variation profile is built from.
// Start and end follow the source notation's own counting convention; the
// coordinate system coding conveys how to read them.
type variant struct {
	accession string
	start     int64
	end       int64
	ref       string
	alt       string
}

// FromExpression translates a raw HGVS or SPDI expression into a Variation
// profile.
func (t *ExpressionTranslator) FromExpression(ctx context.Context, raw string, format coords.Format) (*fhir.MolecularDefinition, error) {
	switch format {
	case coords.FormatHGVS:
		return t.fromHGVS(ctx, raw)
	case coords.FormatSPDI:
		return t.fromSPDI(ctx, raw)
	}
	return nil, fmt.Errorf("%w: %q (supported: hgvs, spdi)", ErrUnsupportedFormat, format)
}

// fromSPDI parses "<accession>:<position>:<deleted sequence or length>:<inserted sequence>".
// The deleted span is always fetched from the reference so the profile
// carries the actual bases rather than a length.
func (t *ExpressionTranslator) fromSPDI(ctx context.Context, spdi string) (*fhir.MolecularDefinition, error) {
	fields := strings.Split(spdi, ":")
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: expected four colon-separated fields, got %q", ErrMalformedSpdi, spdi)
	}
	accession := strings.TrimSpace(fields[0])

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: position %q: %v", ErrMalformedSpdi, fields[1], err)
	}

	delLen, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		delLen = int64(len(fields[2]))
	}
	end := start + delLen

	refseqID, err := translateToRefseqID(ctx, t.resolver, accession)
	if err != nil {
		return nil, err
	}
	ref, err := t.resolver.FetchSubsequence(ctx, refseqID, start, end)
	if err != nil {
		return nil, err
	}

	return t.buildVariation(&variant{
		accession: accession,
		start:     start,
		end:       end,
		ref:       ref,
		alt:       fields[3],
	}, coords.FormatSPDI)
}

// fromHGVS parses an HGVS expression and resolves the reference state per
// edit type. Deletion spans come from the reference sequence; substitution
// and insertion states come from the expression itself.
func (t *ExpressionTranslator) fromHGVS(ctx context.Context, expr string) (*fhir.MolecularDefinition, error) {
	v, err := hgvs.Parse(expr)
	if err != nil {
		return nil, err
	}
	if v.IsIntronic() {
		return nil, fmt.Errorf("%w: %q", ErrIntronicVariant, expr)
	}

	// Interbase span covered by the edit, for reference fetches.
	fetchStart, fetchEnd := v.Start-1, v.End

	var ref, alt string
	switch v.Edit {
	case hgvs.Sub:
		ref, alt = v.Ref, v.Alt
	case hgvs.Del:
		ref, err = t.resolver.FetchSubsequence(ctx, v.Accession, fetchStart, fetchEnd)
		if err != nil {
			return nil, err
		}
		alt = ""
	case hgvs.Delins:
		ref, err = t.resolver.FetchSubsequence(ctx, v.Accession, fetchStart, fetchEnd)
		if err != nil {
			return nil, err
		}
		alt = v.Alt
	case hgvs.Dup:
		ref, err = t.resolver.FetchSubsequence(ctx, v.Accession, fetchStart, fetchEnd)
		if err != nil {
			return nil, err
		}
		alt = ref + ref
	case hgvs.Ins:
		ref, alt = v.Ref, v.Alt
	case hgvs.Identity:
		ref, err = t.resolver.FetchSubsequence(ctx, v.Accession, fetchStart, fetchEnd)
		if err != nil {
			return nil, err
		}
		if ref == "" {
			ref = v.Alt
		}
		alt = ref
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEditType, v.Edit)
	}

	start, end := v.Position()
	return t.buildVariation(&variant{
		accession: v.Accession,
		start:     start,
		end:       end,
		ref:       ref,
		alt:       alt,
	}, coords.FormatHGVS)
}

// buildVariation assembles the Variation profile shared by both formats.
func (t *ExpressionTranslator) buildVariation(v *variant, format coords.Format) (*fhir.MolecularDefinition, error) {
	seqType, err := refseq.Classify(v.accession)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMoleculeType, err)
	}
	name := seqType.String()

	conv, err := t.coords.ForFormat(format, seqType)
	if err != nil {
		return nil, err
	}

	return &fhir.MolecularDefinition{
		ResourceType: fhir.ResourceTypeMolecularDefinition,
		MoleculeType: fhir.CC(molTypeSystemVariation, strings.ToLower(name), name+" Sequence"),
		Location: []*fhir.Location{{
			SequenceLocation: &fhir.SequenceLocation{
				SequenceContext: &fhir.Reference{
					Reference: "#" + containedRefPrefix + refseq.ToCanonicalID(v.accession),
					Type:      fhir.ResourceTypeMolecularDefinition,
					Display:   v.accession,
				},
				CoordinateInterval: &fhir.CoordinateInterval{
					CoordinateSystem: &fhir.CoordinateSystem{
						System:              conv.System,
						Origin:              conv.Origin,
						NormalizationMethod: conv.NormalizationMethod,
					},
					StartQuantity: fhir.NewQuantity(v.start),
					EndQuantity:   fhir.NewQuantity(v.end),
				},
			},
		}},
		Representation: []*fhir.Representation{
			{
				Focus:   fhir.CC(focusSystemVariation, focusCodeReferenceState, "Reference State"),
				Literal: &fhir.Literal{Value: v.ref},
			},
			{
				Focus:   fhir.CC(focusSystemVariation, focusCodeAlternativeState, "Alternative State"),
				Literal: &fhir.Literal{Value: v.alt},
			},
		},
	}, nil
}

// translateToRefseqID resolves any prefixed accession to the bare RefSeq
// identifier the sequence store indexes on.
func translateToRefseqID(ctx context.Context, r seqrepo.Resolver, accession string) (string, error) {
	aliases, err := r.TranslateIdentifier(ctx, accession, "refseq")
	if err != nil {
		return "", err
	}
	if len(aliases) == 0 {
		return "", fmt.Errorf("%w: no refseq alias for %q", seqrepo.ErrUntranslatable, accession)
	}
	_, id, ok := strings.Cut(aliases[0], ":")
	if !ok {
		return "", fmt.Errorf("%w: malformed alias %q for %q", seqrepo.ErrUntranslatable, aliases[0], accession)
	}
	return id, nil
}
