package translate

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"fmt"

	"github.com/seqvar/vrsfhir/internal/seqrepo"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// rollWindow bounds how far an ambiguous indel may shift in either
// direction during justification.
const rollWindow = 100

// AlleleNormalizer canonicalizes allele shape (trimming shared affixes and
// fully justifying ambiguous indels against the reference) and assigns
// content-derived GA4GH identifiers to the allele and its location.
type AlleleNormalizer struct {
	resolver seqrepo.Resolver
}

// NewAlleleNormalizer builds a normalizer over the given sequence store.
func NewAlleleNormalizer(r seqrepo.Resolver) *AlleleNormalizer {
	return &AlleleNormalizer{resolver: r}
}

// Normalize returns a canonicalized copy of the allele with digest-based
// ids on the allele and its location. The state must be a literal sequence
// expression; denormalize reference-length states first. Normalizing an
// already-normalized allele yields the same result.
func (n *AlleleNormalizer) Normalize(ctx context.Context, allele *vrs.Allele) (*vrs.Allele, error) {
	lse, ok := allele.State.(vrs.LiteralSequenceExpression)
	if !ok {
		return nil, fmt.Errorf("%w: state must be a LiteralSequenceExpression", ErrInvalidVrsAllele)
	}
	if allele.Location == nil || allele.Location.SequenceReference == nil {
		return nil, fmt.Errorf("%w: location.sequenceReference", ErrMissingField)
	}

	start, end, alt, err := n.justify(ctx, allele, lse.Sequence)
	if err != nil {
		return nil, err
	}

	out := *allele
	loc := *allele.Location
	loc.Start = start
	loc.End = end
	lse.Sequence = alt
	out.Location = &loc
	out.State = lse

	locDigest := locationDigest(&loc)
	loc.Digest = locDigest
	loc.ID = "ga4gh:SL." + locDigest

	aDigest := alleleDigest(locDigest, alt)
	out.Digest = aDigest
	out.ID = "ga4gh:VA." + aDigest
	return &out, nil
}

// justify trims the common prefix and suffix between the reference and
// alternate sequences, then fully justifies a pure insertion or deletion by
// rolling it to its leftmost and rightmost placements and covering the
// whole ambiguous span.
func (n *AlleleNormalizer) justify(ctx context.Context, allele *vrs.Allele, alt string) (int64, int64, string, error) {
	loc := allele.Location
	accession := "ga4gh:" + loc.SequenceReference.RefgetAccession

	wStart := loc.Start - rollWindow
	if wStart < 0 {
		wStart = 0
	}
	wEnd := loc.End + rollWindow
	window, err := n.resolver.FetchSubsequence(ctx, accession, wStart, wEnd)
	if err != nil {
		return 0, 0, "", err
	}
	s := int(loc.Start - wStart)
	e := int(loc.End - wStart)
	if e > len(window) {
		e = len(window)
	}
	ref := window[s:e]

	ref, alt, s, e = trimAffixes(ref, alt, s, e)

	switch {
	case ref != "" && alt != "":
		// Substitution or delins: already canonical after trimming.
	case ref == "" && alt == "":
		// Reference agreement: nothing to justify.
	case ref == "":
		// Insertion at point s.
		ls, _ := rollLeft(window, s, alt)
		rs, rotated := rollRight(window, s, alt)
		ref = window[ls:rs]
		alt = ref + rotated
		s, e = ls, rs
	default:
		// Deletion of ref over [s, e).
		ls, _ := rollLeft(window, s, ref)
		re, _ := rollRight(window, e, ref)
		span := window[ls:re]
		alt = span[:len(span)-len(ref)]
		ref = span
		s, e = ls, re
	}

	return wStart + int64(s), wStart + int64(e), alt, nil
}

// trimAffixes removes the common suffix then prefix shared by ref and alt,
// narrowing the interval accordingly.
func trimAffixes(ref, alt string, s, e int) (string, string, int, int) {
	for len(ref) > 0 && len(alt) > 0 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref = ref[:len(ref)-1]
		alt = alt[:len(alt)-1]
		e--
	}
	for len(ref) > 0 && len(alt) > 0 && ref[0] == alt[0] {
		ref = ref[1:]
		alt = alt[1:]
		s++
	}
	return ref, alt, s, e
}

// rollLeft shifts an edit site leftward while the preceding reference base
// matches the tail of the edited sequence, rotating it as it goes.
func rollLeft(window string, idx int, seq string) (int, string) {
	for idx > 0 && window[idx-1] == seq[len(seq)-1] {
		seq = seq[len(seq)-1:] + seq[:len(seq)-1]
		idx--
	}
	return idx, seq
}

// rollRight shifts an edit site rightward while the next reference base
// matches the head of the edited sequence.
func rollRight(window string, idx int, seq string) (int, string) {
	for idx < len(window) && window[idx] == seq[0] {
		seq = seq[1:] + seq[:1]
		idx++
	}
	return idx, seq
}

// sha512t24u computes the GA4GH truncated digest: base64url over the first
// 24 bytes of SHA-512.
func sha512t24u(data []byte) string {
	sum := sha512.Sum512(data)
	return base64.RawURLEncoding.EncodeToString(sum[:24])
}

// locationDigest serializes the location's identifiable content with
// lexically ordered keys, per the GA4GH digest convention.
func locationDigest(loc *vrs.SequenceLocation) string {
	payload := fmt.Sprintf(
		`{"end":%d,"sequenceReference":{"refgetAccession":%q,"type":"SequenceReference"},"start":%d,"type":"SequenceLocation"}`,
		loc.End, loc.SequenceReference.RefgetAccession, loc.Start,
	)
	return sha512t24u([]byte(payload))
}

// alleleDigest serializes the allele with its location collapsed to the
// location digest, per the GA4GH digest convention.
func alleleDigest(locDigest, sequence string) string {
	payload := fmt.Sprintf(
		`{"location":%q,"state":{"sequence":%q,"type":"LiteralSequenceExpression"},"type":"Allele"}`,
		locDigest, sequence,
	)
	return sha512t24u([]byte(payload))
}
