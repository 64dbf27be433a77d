package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqvar/vrsfhir/internal/coords"
	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

func TestRoundTripV600E(t *testing.T) {
	ctx := context.Background()
	original := v600eAllele()

	doc, err := NewVrsToFhirTranslator(&fakeResolver{}).Translate(ctx, original)
	require.NoError(t, err)

	back, err := NewFhirToVrsTranslator(&fakeResolver{}).Translate(ctx, doc, false)
	require.NoError(t, err)

	assert.Equal(t, original, back)
}

func TestFhirToVrsRejectsWrongResourceType(t *testing.T) {
	tr := NewFhirToVrsTranslator(&fakeResolver{})

	_, err := tr.Translate(context.Background(), &fhir.MolecularDefinition{ResourceType: "Observation"}, false)
	assert.ErrorIs(t, err, ErrInvalidAlleleProfile)

	_, err = tr.Translate(context.Background(), nil, false)
	assert.ErrorIs(t, err, ErrInvalidAlleleProfile)
}

func TestFhirToVrsStructuralValidation(t *testing.T) {
	ctx := context.Background()
	tr := NewFhirToVrsTranslator(&fakeResolver{})

	tests := []struct {
		name    string
		mutate  func(doc *fhir.MolecularDefinition)
		wantErr error
	}{
		{
			"no locations",
			func(doc *fhir.MolecularDefinition) { doc.Location = nil },
			ErrMissingField,
		},
		{
			"missing sequenceLocation",
			func(doc *fhir.MolecularDefinition) { doc.Location[0].SequenceLocation = nil },
			ErrMissingField,
		},
		{
			"missing coordinateInterval",
			func(doc *fhir.MolecularDefinition) { doc.Location[0].SequenceLocation.CoordinateInterval = nil },
			ErrMissingField,
		},
		{
			"missing coordinate system coding",
			func(doc *fhir.MolecularDefinition) {
				doc.Location[0].SequenceLocation.CoordinateInterval.CoordinateSystem.System.Coding = nil
			},
			ErrMissingField,
		},
		{
			"missing coding display",
			func(doc *fhir.MolecularDefinition) {
				doc.Location[0].SequenceLocation.CoordinateInterval.CoordinateSystem.System.Coding[0].Display = ""
			},
			ErrMissingField,
		},
		{
			"missing startQuantity",
			func(doc *fhir.MolecularDefinition) {
				doc.Location[0].SequenceLocation.CoordinateInterval.StartQuantity = nil
			},
			ErrMissingField,
		},
		{
			"missing endQuantity",
			func(doc *fhir.MolecularDefinition) {
				doc.Location[0].SequenceLocation.CoordinateInterval.EndQuantity = nil
			},
			ErrMissingField,
		},
		{
			"missing contained resources",
			func(doc *fhir.MolecularDefinition) { doc.Contained = nil },
			ErrMissingField,
		},
		{
			"no allele-state representation",
			func(doc *fhir.MolecularDefinition) { doc.Representation = nil },
			ErrMissingAlleleState,
		},
		{
			"allele-state without literal",
			func(doc *fhir.MolecularDefinition) { doc.Representation[0].Literal = nil },
			ErrMissingLiteralValue,
		},
		{
			"two codings in coordinate system",
			func(doc *fhir.MolecularDefinition) {
				coding := doc.Location[0].SequenceLocation.CoordinateInterval.CoordinateSystem.System.Coding
				doc.Location[0].SequenceLocation.CoordinateInterval.CoordinateSystem.System.Coding = append(coding, coding[0])
			},
			coords.ErrInvalidCoordinateSystem,
		},
		{
			"invalid allele state characters",
			func(doc *fhir.MolecularDefinition) { doc.Representation[0].Literal.Value = "acgt" },
			vrs.ErrInvalidSequenceValue,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewVrsToFhirTranslator(&fakeResolver{}).Translate(ctx, v600eAllele())
			require.NoError(t, err)
			tt.mutate(doc)

			_, err = tr.Translate(ctx, doc, false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFhirToVrsAdjustsOneBasedStarts(t *testing.T) {
	ctx := context.Background()

	doc, err := NewVrsToFhirTranslator(&fakeResolver{}).Translate(ctx, v600eAllele())
	require.NoError(t, err)

	coding := &doc.Location[0].SequenceLocation.CoordinateInterval.CoordinateSystem.System.Coding[0]
	coding.Display = coords.OneBasedCharacter
	doc.Location[0].SequenceLocation.CoordinateInterval.StartQuantity = fhir.NewQuantity(600)

	back, err := NewFhirToVrsTranslator(&fakeResolver{}).Translate(ctx, doc, false)
	require.NoError(t, err)

	assert.Equal(t, int64(599), back.Location.Start)
	assert.Equal(t, int64(600), back.Location.End)
}

func TestFhirToVrsRejectsFractionalQuantities(t *testing.T) {
	ctx := context.Background()

	doc, err := NewVrsToFhirTranslator(&fakeResolver{}).Translate(ctx, v600eAllele())
	require.NoError(t, err)
	doc.Location[0].SequenceLocation.CoordinateInterval.StartQuantity = &fhir.Quantity{Value: "599.5"}

	_, err = NewFhirToVrsTranslator(&fakeResolver{}).Translate(ctx, doc, false)
	assert.ErrorIs(t, err, fhir.ErrNotAnInteger)
}

func TestFhirToVrsUnsupportedMoleculeType(t *testing.T) {
	ctx := context.Background()

	doc, err := NewVrsToFhirTranslator(&fakeResolver{}).Translate(ctx, v600eAllele())
	require.NoError(t, err)
	doc.Contained[1].MoleculeType = fhir.CC("http://example.org", "peptide", "")

	_, err = NewFhirToVrsTranslator(&fakeResolver{}).Translate(ctx, doc, false)
	assert.ErrorIs(t, err, ErrUnsupportedMoleculeType)
}

func TestFhirToVrsNormalizeAssignsDigests(t *testing.T) {
	ctx := context.Background()
	resolver := &fakeResolver{
		sequences: map[string]string{
			// Window fetches during justification address the refget id.
			"ga4gh:SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y": strings.Repeat("MVVVVVVEEEEEEKKKKKKLLLLLL", 30),
		},
	}

	doc, err := NewVrsToFhirTranslator(&fakeResolver{}).Translate(ctx, v600eAllele())
	require.NoError(t, err)

	back, err := NewFhirToVrsTranslator(resolver).Translate(ctx, doc, true)
	require.NoError(t, err)

	assert.Contains(t, back.ID, "ga4gh:VA.")
	assert.Contains(t, back.Location.ID, "ga4gh:SL.")
	assert.Equal(t, back.Digest, back.ID[len("ga4gh:VA."):])
	assert.Equal(t, back.Location.Digest, back.Location.ID[len("ga4gh:SL."):])
}
