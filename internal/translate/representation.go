package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seqvar/vrsfhir/internal/coords"
	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/seqrepo"
)

// ErrAmbiguousRepresentation reports a document without exactly one
// representation of the requested indirect form.
var ErrAmbiguousRepresentation = errors.New("ambiguous representation")

// RepresentationTranslator resolves indirect sequence representations
// (extracted slices, repeated motifs) into literal ones, appending the
// resolved literal to the document's representation list.
type RepresentationTranslator struct {
	resolver seqrepo.Resolver
}

// NewRepresentationTranslator builds a translator over the given sequence
// store. Repeated-motif translation never touches the store.
func NewRepresentationTranslator(r seqrepo.Resolver) *RepresentationTranslator {
	return &RepresentationTranslator{resolver: r}
}

// TranslateExtractedToLiteral fetches the slice an extracted
// representation describes and appends it as a literal. The document must
// carry exactly one extracted representation.
func (t *RepresentationTranslator) TranslateExtractedToLiteral(ctx context.Context, doc *fhir.MolecularDefinition) (*fhir.MolecularDefinition, error) {
	var extracted *fhir.Extracted
	count := 0
	for _, rep := range doc.Representation {
		if rep != nil && rep.Extracted != nil {
			extracted = rep.Extracted
			count++
		}
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: need exactly one extracted representation, got %d", ErrAmbiguousRepresentation, count)
	}

	interval := extracted.CoordinateInterval
	if interval == nil || interval.CoordinateSystem == nil || interval.CoordinateSystem.System == nil ||
		len(interval.CoordinateSystem.System.Coding) == 0 {
		return nil, fmt.Errorf("%w: coordinateSystem coding in extracted representation", ErrMissingField)
	}
	start, err := coords.AdjustStartForIndexing(interval.CoordinateSystem.System.Coding[0].Display, interval.Start)
	if err != nil {
		return nil, err
	}

	if extracted.StartingMolecule == nil || extracted.StartingMolecule.Display == "" {
		return nil, fmt.Errorf("%w: startingMolecule display must carry the sequence id", ErrMissingField)
	}
	sequenceID := extracted.StartingMolecule.Display

	literal, err := t.resolver.FetchSubsequence(ctx, sequenceID, start, interval.End)
	if err != nil {
		return nil, fmt.Errorf("fetching %s[%d:%d]: %w", sequenceID, start, interval.End, err)
	}

	doc.Representation = append(doc.Representation, &fhir.Representation{
		Literal: &fhir.Literal{Value: literal},
	})
	return doc, nil
}

// TranslateRepeatedToLiteral expands a repeated motif into a literal and
// appends it. The document must carry exactly one repeated representation.
func (t *RepresentationTranslator) TranslateRepeatedToLiteral(doc *fhir.MolecularDefinition) (*fhir.MolecularDefinition, error) {
	var repeated *fhir.Repeated
	count := 0
	for _, rep := range doc.Representation {
		if rep != nil && rep.Repeated != nil {
			repeated = rep.Repeated
			count++
		}
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: need exactly one repeated representation, got %d", ErrAmbiguousRepresentation, count)
	}
	if repeated.SequenceMotif == nil || repeated.SequenceMotif.Display == "" {
		return nil, fmt.Errorf("%w: sequenceMotif display in repeated representation", ErrMissingField)
	}
	if repeated.CopyCount < 0 {
		return nil, fmt.Errorf("copyCount must be non-negative, got %d", repeated.CopyCount)
	}

	doc.Representation = append(doc.Representation, &fhir.Representation{
		Literal: &fhir.Literal{Value: strings.Repeat(repeated.SequenceMotif.Display, repeated.CopyCount)},
	})
	return doc, nil
}
