package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/seqvar/vrsfhir/internal/seqrepo"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// SequenceExpressionResolver expands reference-length allele states into
// explicit literal sequences. FHIR has no length-delta representation, so
// this runs before any reference-length allele can be rendered into a
// profile.
type SequenceExpressionResolver struct {
	resolver seqrepo.Resolver
}

// NewSequenceExpressionResolver builds a resolver over the given sequence
// store.
func NewSequenceExpressionResolver(r seqrepo.Resolver) *SequenceExpressionResolver {
	return &SequenceExpressionResolver{resolver: r}
}

// Denormalize returns a copy of the allele whose state is a literal
// sequence expression. Alleles whose state is already literal come back
// unchanged. The input is never mutated.
func (s *SequenceExpressionResolver) Denormalize(ctx context.Context, allele *vrs.Allele) (*vrs.Allele, error) {
	rle, ok := allele.State.(vrs.ReferenceLengthExpression)
	if !ok {
		out := *allele
		return &out, nil
	}
	if allele.Location == nil || allele.Location.SequenceReference == nil {
		return nil, fmt.Errorf("%w: location.sequenceReference", ErrMissingField)
	}

	refseqID, err := refseqIDForAccession(ctx, s.resolver, allele.Location.SequenceReference.RefgetAccession)
	if err != nil {
		return nil, err
	}
	refSeq, err := s.resolver.FetchSubsequence(ctx, refseqID, allele.Location.Start, allele.Location.End)
	if err != nil {
		return nil, err
	}

	out := *allele
	out.State = vrs.LiteralSequenceExpression{
		Type:     vrs.TypeLiteralSequenceExpression,
		Sequence: expandReferenceLength(refSeq, rle.RepeatSubunitLength, rle.Length),
	}
	return &out, nil
}

// expandReferenceLength builds the alternate literal for a reference-length
// expression: the leading repeat subunit of the reference cycled out to
// exactly altLength bases.
func expandReferenceLength(refSeq string, subunitLength, altLength int64) string {
	if altLength <= 0 {
		return ""
	}
	if int64(len(refSeq)) == altLength {
		return refSeq
	}
	if subunitLength <= 0 || subunitLength > int64(len(refSeq)) {
		subunitLength = int64(len(refSeq))
	}
	subunit := refSeq[:subunitLength]
	if subunit == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(int(altLength) + len(subunit))
	for int64(b.Len()) < altLength {
		b.WriteString(subunit)
	}
	return b.String()[:altLength]
}

// refseqIDForAccession resolves a refget accession to its unprefixed
// RefSeq identifier.
func refseqIDForAccession(ctx context.Context, r seqrepo.Resolver, refgetAccession string) (string, error) {
	aliases, err := r.TranslateIdentifier(ctx, "ga4gh:"+refgetAccession, "refseq")
	if err != nil {
		return "", err
	}
	if len(aliases) == 0 {
		return "", fmt.Errorf("%w: no refseq alias for %q", seqrepo.ErrUntranslatable, refgetAccession)
	}
	alias := aliases[0]
	if !strings.HasPrefix(alias, "refseq:") {
		return "", fmt.Errorf("unexpected identifier format %q", alias)
	}
	return strings.TrimPrefix(alias, "refseq:"), nil
}
