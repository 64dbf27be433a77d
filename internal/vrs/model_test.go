package vrs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlleleJSONRoundTripLiteralState(t *testing.T) {
	original := Allele{
		ID:     "ga4gh:VA.j4XnsLZcdzDIYa5pvvXM7t1wn9OITr0L",
		Type:   TypeAllele,
		Name:   "V600E",
		Digest: "j4XnsLZcdzDIYa5pvvXM7t1wn9OITr0L",
		Location: &SequenceLocation{
			Type: TypeSequenceLocation,
			SequenceReference: &SequenceReference{
				Type:            TypeSequenceReference,
				RefgetAccession: "SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y",
			},
			Start: 599,
			End:   600,
		},
		State: LiteralSequenceExpression{
			Type:     TypeLiteralSequenceExpression,
			Sequence: "E",
		},
	}

	raw, err := json.Marshal(original)
	require.NoError(t, err)

	var back Allele
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, original, back)

	lse, ok := back.State.(LiteralSequenceExpression)
	require.True(t, ok)
	assert.Equal(t, "E", lse.Sequence)
}

func TestAlleleJSONDispatchesReferenceLengthState(t *testing.T) {
	doc := `{
		"type": "Allele",
		"location": {
			"type": "SequenceLocation",
			"sequenceReference": {"type": "SequenceReference", "refgetAccession": "SQ.abc"},
			"start": 10,
			"end": 16
		},
		"state": {"type": "ReferenceLengthExpression", "repeatSubunitLength": 2, "length": 8}
	}`

	var allele Allele
	require.NoError(t, json.Unmarshal([]byte(doc), &allele))

	rle, ok := allele.State.(ReferenceLengthExpression)
	require.True(t, ok)
	assert.Equal(t, int64(2), rle.RepeatSubunitLength)
	assert.Equal(t, int64(8), rle.Length)
}

func TestAlleleJSONRejectsUnknownState(t *testing.T) {
	doc := `{"type": "Allele", "state": {"type": "CopyNumberCount", "copies": 3}}`

	var allele Allele
	err := json.Unmarshal([]byte(doc), &allele)
	assert.ErrorContains(t, err, "CopyNumberCount")
}

func TestAlleleJSONAllowsMissingState(t *testing.T) {
	var allele Allele
	require.NoError(t, json.Unmarshal([]byte(`{"type": "Allele"}`), &allele))
	assert.Nil(t, allele.State)

	raw, err := json.Marshal(allele)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "state")
}

func TestValidateSequence(t *testing.T) {
	for _, s := range []string{"", "ACGT", "E", "MVVVK", "TGA*", "AC-GT"} {
		got, err := ValidateSequence(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, got)
	}

	for _, s := range []string{"acgt", "AC1T", "AC GT", "A\n"} {
		_, err := ValidateSequence(s)
		assert.ErrorIs(t, err, ErrInvalidSequenceValue, s)
	}
}
