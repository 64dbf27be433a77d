package fhir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMolecularDefinitionJSONOmitsEmpties(t *testing.T) {
	doc := &MolecularDefinition{
		ResourceType: ResourceTypeMolecularDefinition,
		MoleculeType: CC("http://hl7.org/fhir/sequence-type", "dna", "DNA Sequence"),
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "resourceType")
	assert.Contains(t, fields, "moleculeType")
	assert.NotContains(t, fields, "contained")
	assert.NotContains(t, fields, "identifier")
	assert.NotContains(t, fields, "location")
	assert.NotContains(t, fields, "representation")
}

func TestQuantityPreservesTextualForm(t *testing.T) {
	var interval CoordinateInterval
	require.NoError(t, json.Unmarshal([]byte(`{"startQuantity":{"value":599.0}}`), &interval))

	// The digits round-trip untouched so integrality checks see "599.0",
	// not a float approximation.
	assert.Equal(t, "599.0", interval.StartQuantity.Value.String())

	raw, err := json.Marshal(interval.StartQuantity)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":599.0}`, string(raw))
}

func TestExtensionValueFieldsAreExclusive(t *testing.T) {
	s := "BRAF"
	raw, err := json.Marshal(Extension{URL: "http://example.org/name", ValueString: &s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"http://example.org/name","valueString":"BRAF"}`, string(raw))
}
