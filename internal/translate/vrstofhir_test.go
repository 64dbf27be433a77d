package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqvar/vrsfhir/internal/vrs"
)

// v600eAllele builds the fully populated BRAF V600E allele: every optional
// metadata field, nested extensions on every entity, an expression, and
// both a literal sequence and a sequence reference on the location.
func v600eAllele() *vrs.Allele {
	return &vrs.Allele{
		ID:          "ga4gh:VA.j4XnsLZcdzDIYa5pvvXM7t1wn9OITr0L",
		Type:        vrs.TypeAllele,
		Name:        "V600E",
		Description: "BRAF V600E variant",
		Digest:      "j4XnsLZcdzDIYa5pvvXM7t1wn9OITr0L",
		Aliases:     []string{"VAL600GLU", "V640E", "VAL640GLU"},
		Expressions: []vrs.Expression{{
			ID:            "expression:1",
			Syntax:        "hgvs.p",
			Value:         "NP_004324.2:p.Val600Glu",
			SyntaxVersion: "21.0",
			Extensions: []vrs.Extension{{
				ID:          "sub-expression:1",
				Name:        "expression.name.1",
				Value:       vrs.StringValue("expression.value.1"),
				Description: "expression.description.1",
				Extensions: []vrs.Extension{{
					ID:          "sub-sub-expression:2",
					Name:        "expression.sub.name.2",
					Value:       vrs.StringValue("expression.sub.value,2"),
					Description: "expression.description.2",
				}},
			}},
		}},
		Location: &vrs.SequenceLocation{
			ID:          "ga4gh:SL.t-3DrWALhgLdXHsupI-e-M00aL3HgK3y",
			Type:        vrs.TypeSequenceLocation,
			Name:        "NP_004324.2",
			Description: "My location description",
			Digest:      "t-3DrWALhgLdXHsupI-e-M00aL3HgK3y",
			Aliases:     []string{"Ensembl:ENSP00000288602.6"},
			Extensions: []vrs.Extension{{
				ID:          "sequence_location.extension:1",
				Name:        "sequence_location.name",
				Value:       vrs.StringValue("sequence_location.value"),
				Description: "sequence_location.description",
				Extensions: []vrs.Extension{{
					ID:          "sequence_location.sub_extension:1",
					Name:        "sequence_location.sub_extension.name",
					Value:       vrs.StringValue("sequence_location.sub_extension.value"),
					Description: "sequence_location.sub_extension.description",
				}},
			}},
			SequenceReference: &vrs.SequenceReference{
				ID:              "sequence_reference.id",
				Type:            vrs.TypeSequenceReference,
				Name:            "sequence_reference.name",
				Description:     "sequence_reference.description",
				Aliases:         []string{"sequence_reference.aliase"},
				RefgetAccession: "SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y",
				MoleculeType:    "protein",
				ResidueAlphabet: "aa",
				Sequence:        "V",
				Extensions: []vrs.Extension{{
					ID:          "sequence_reference.extension:1",
					Name:        "sequence_reference.extension.name",
					Value:       vrs.StringValue("sequence_reference.extension.value"),
					Description: "sequence_reference.extension.description",
					Extensions: []vrs.Extension{{
						ID:          "sequence_reference.sub_extension:1",
						Name:        "sequence_reference.sub_extension.name",
						Value:       vrs.StringValue("sequence_reference.sub_extension.value"),
						Description: "sequence_reference.sub_extension.description",
					}},
				}},
			},
			Start:    599,
			End:      600,
			Sequence: "V",
		},
		State: vrs.LiteralSequenceExpression{
			ID:          "state:1",
			Type:        vrs.TypeLiteralSequenceExpression,
			Name:        "state",
			Description: "My description for state",
			Aliases:     []string{"my_sequence"},
			Sequence:    "E",
			Extensions: []vrs.Extension{{
				ID:          "state.extension:1",
				Name:        "state.name",
				Value:       vrs.StringValue("state.value"),
				Description: "state.description",
				Extensions: []vrs.Extension{{
					ID:          "state.sub_extension:1",
					Name:        "state.sub_extension.name",
					Value:       vrs.StringValue("state.sub_extension.value"),
					Description: "state.sub_extension.description",
				}},
			}},
		},
	}
}

func TestTranslateV600EToFhir(t *testing.T) {
	tr := NewVrsToFhirTranslator(&fakeResolver{})

	doc, err := tr.Translate(context.Background(), v600eAllele())
	require.NoError(t, err)

	assert.Equal(t, "MolecularDefinition", doc.ResourceType)
	assert.Equal(t, "BRAF V600E variant", doc.Description)

	// Metadata becomes identifiers in declaration order.
	require.Len(t, doc.Identifier, 6)
	assert.Equal(t, "https://w3id.org/ga4gh/schema/vrs/2.0.1/json/Allele#properties/id", doc.Identifier[0].System)
	assert.Equal(t, "ga4gh:VA.j4XnsLZcdzDIYa5pvvXM7t1wn9OITr0L", doc.Identifier[0].Value)
	assert.Equal(t, "V600E", doc.Identifier[1].Value)
	assert.Equal(t, "https://w3id.org/ga4gh/schema/vrs/2.0.1/json/Allele#properties/aliases", doc.Identifier[2].System)
	assert.Equal(t, []string{"VAL600GLU", "V640E", "VAL640GLU"},
		[]string{doc.Identifier[2].Value, doc.Identifier[3].Value, doc.Identifier[4].Value})
	assert.Equal(t, "https://w3id.org/ga4gh/schema/vrs/2.0.1/json/Allele#properties/digest", doc.Identifier[5].System)

	// Explicit protein molecule type maps to the FHIR amino acid code.
	require.NotNil(t, doc.MoleculeType)
	require.Len(t, doc.MoleculeType.Coding, 1)
	assert.Equal(t, "amino acid", doc.MoleculeType.Coding[0].Code)
	assert.Equal(t, "amino acid Sequence", doc.MoleculeType.Coding[0].Display)
	assert.Equal(t, "https://w3id.org/ga4gh/schema/vrs/2.0.1/json/SequenceReference#properties/moleculeType",
		doc.MoleculeType.Coding[0].System)

	// Both contained resources present under their fixed ids.
	require.Len(t, doc.Contained, 2)
	assert.Equal(t, "vrs-location-sequence", doc.Contained[0].ID)
	require.Len(t, doc.Contained[0].Representation, 1)
	assert.Equal(t, "V", doc.Contained[0].Representation[0].Literal.Value)

	seqRef := doc.Contained[1]
	assert.Equal(t, "vrs-location-sequenceReference", seqRef.ID)
	require.Len(t, seqRef.Representation, 1)
	require.Len(t, seqRef.Representation[0].Code, 1)
	assert.Equal(t, "SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y", seqRef.Representation[0].Code[0].Coding[0].Code)
	require.NotNil(t, seqRef.Representation[0].Literal)
	assert.Equal(t, "V", seqRef.Representation[0].Literal.Value)
	assert.Equal(t, "aa", seqRef.Representation[0].Literal.Encoding.Coding[0].Code)
	// Entity fields become extensions in order: id, name, description, aliases.
	require.GreaterOrEqual(t, len(seqRef.Extension), 4)
	assert.Equal(t, "https://w3id.org/ga4gh/schema/vrs/2.0.1/json/SequenceReference#properties/id", seqRef.Extension[0].URL)
	assert.Equal(t, "sequence_reference.id", *seqRef.Extension[0].ValueString)

	// location.sequence wins the sequence context.
	require.Len(t, doc.Location, 1)
	loc := doc.Location[0]
	assert.Equal(t, "ga4gh:SL.t-3DrWALhgLdXHsupI-e-M00aL3HgK3y", loc.ID)
	assert.Equal(t, "#vrs-location-sequence", loc.SequenceLocation.SequenceContext.Reference)
	assert.Equal(t, "VRS location.sequence as contained FHIR Sequence", loc.SequenceLocation.SequenceContext.Display)

	interval := loc.SequenceLocation.CoordinateInterval
	assert.Equal(t, "0-based interval counting", interval.CoordinateSystem.System.Coding[0].Display)
	assert.Equal(t, "sequence-start", interval.CoordinateSystem.Origin.Coding[0].Code)
	assert.Equal(t, "fully-justified", interval.CoordinateSystem.NormalizationMethod.Coding[0].Code)
	assert.Equal(t, "599", interval.StartQuantity.Value.String())
	assert.Equal(t, "600", interval.EndQuantity.Value.String())

	require.Len(t, doc.Representation, 1)
	rep := doc.Representation[0]
	assert.Equal(t, "allele-state", rep.Focus.Coding[0].Code)
	assert.Equal(t, "Allele State", rep.Focus.Coding[0].Display)
	assert.Equal(t, "http://hl7.org/fhir/moleculardefinition-focus", rep.Focus.Coding[0].System)

	require.Len(t, rep.Code, 1)
	assert.Equal(t, "expression:1", rep.Code[0].ID)
	assert.Equal(t, "hgvs.p", rep.Code[0].Coding[0].Display)
	assert.Equal(t, "NP_004324.2:p.Val600Glu", rep.Code[0].Coding[0].Code)
	assert.Equal(t, "21.0", rep.Code[0].Coding[0].Version)

	require.NotNil(t, rep.Literal)
	assert.Equal(t, "state:1", rep.Literal.ID)
	assert.Equal(t, "E", rep.Literal.Value)
}

func TestTranslateOmitsEmptyMetadata(t *testing.T) {
	allele := &vrs.Allele{
		Type: vrs.TypeAllele,
		Location: &vrs.SequenceLocation{
			Type: vrs.TypeSequenceLocation,
			SequenceReference: &vrs.SequenceReference{
				Type:            vrs.TypeSequenceReference,
				RefgetAccession: "SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y",
				MoleculeType:    "protein",
			},
			Start: 599,
			End:   600,
		},
		State: vrs.LiteralSequenceExpression{
			Type:     vrs.TypeLiteralSequenceExpression,
			Sequence: "E",
		},
	}

	doc, err := NewVrsToFhirTranslator(&fakeResolver{}).Translate(context.Background(), allele)
	require.NoError(t, err)

	assert.Nil(t, doc.Identifier)
	assert.Empty(t, doc.Description)
	require.Len(t, doc.Contained, 1)
	assert.Equal(t, "vrs-location-sequenceReference", doc.Contained[0].ID)
	assert.Nil(t, doc.Contained[0].Extension)
	assert.Equal(t, "#vrs-location-sequenceReference",
		doc.Location[0].SequenceLocation.SequenceContext.Reference)
	assert.Nil(t, doc.Location[0].Extension)
	assert.Nil(t, doc.Representation[0].Code)
	assert.Nil(t, doc.Representation[0].Literal.Extension)
}

func TestTranslateMoleculeTypeFromAccession(t *testing.T) {
	// No explicit moleculeType: resolve the refget accession to a RefSeq
	// id and classify the prefix.
	resolver := &fakeResolver{
		aliases: map[string][]string{
			"ga4gh:SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y/refseq": {"refseq:NP_004324.2"},
		},
	}
	allele := &vrs.Allele{
		Type: vrs.TypeAllele,
		Location: &vrs.SequenceLocation{
			Type: vrs.TypeSequenceLocation,
			SequenceReference: &vrs.SequenceReference{
				Type:            vrs.TypeSequenceReference,
				RefgetAccession: "SQ.cQvw4UsHHRRlogxbWCB8W-mKD4AraM9y",
			},
			Start: 599,
			End:   600,
		},
		State: vrs.LiteralSequenceExpression{
			Type:     vrs.TypeLiteralSequenceExpression,
			Sequence: "E",
		},
	}

	doc, err := NewVrsToFhirTranslator(resolver).Translate(context.Background(), allele)
	require.NoError(t, err)

	coding := doc.MoleculeType.Coding[0]
	assert.Equal(t, "http://hl7.org/fhir/sequence-type", coding.System)
	assert.Equal(t, "protein", coding.Code)
	assert.Equal(t, "protein Sequence", coding.Display)
}

func TestTranslateRejectsInvalidAlleles(t *testing.T) {
	tr := NewVrsToFhirTranslator(&fakeResolver{})

	tests := []struct {
		name   string
		allele *vrs.Allele
	}{
		{"nil allele", nil},
		{"wrong type", &vrs.Allele{Type: "CopyNumberCount"}},
		{"missing location", &vrs.Allele{Type: vrs.TypeAllele, State: vrs.LiteralSequenceExpression{Type: vrs.TypeLiteralSequenceExpression}}},
		{"missing state", &vrs.Allele{Type: vrs.TypeAllele, Location: &vrs.SequenceLocation{Type: vrs.TypeSequenceLocation}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Translate(context.Background(), tt.allele)
			assert.ErrorIs(t, err, ErrInvalidVrsAllele)
		})
	}
}
