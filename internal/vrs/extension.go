package vrs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is the value carried by an Extension. Concrete kinds are decided
// when the document is decoded, never by sniffing at serialization time.
type Value interface {
	isValue()
}

// StringValue is a string-typed extension value.
type StringValue string

// BoolValue is a boolean-typed extension value.
type BoolValue bool

// IntValue is an integer-typed extension value.
type IntValue int64

// FloatValue is a decimal-typed extension value.
type FloatValue float64

func (StringValue) isValue() {}
func (BoolValue) isValue()   {}
func (IntValue) isValue()    {}
func (FloatValue) isValue()  {}

// Extension is a generic nested annotation: a rose tree of ordered child
// annotations. Each entity's extension list is exclusively owned by that
// entity.
type Extension struct {
	ID          string      `json:"id,omitempty"`
	Name        string      `json:"name,omitempty"`
	Value       Value       `json:"value,omitempty"`
	Description string      `json:"description,omitempty"`
	Extensions  []Extension `json:"extensions,omitempty"`
}

// UnmarshalJSON types the value field by its JSON representation: strings,
// booleans, and numbers (integral vs fractional) become the matching Value
// kind.
func (e *Extension) UnmarshalJSON(data []byte) error {
	type extensionJSON struct {
		ID          string          `json:"id,omitempty"`
		Name        string          `json:"name,omitempty"`
		Value       json.RawMessage `json:"value,omitempty"`
		Description string          `json:"description,omitempty"`
		Extensions  []Extension     `json:"extensions,omitempty"`
	}
	var raw extensionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.ID = raw.ID
	e.Name = raw.Name
	e.Description = raw.Description
	e.Extensions = raw.Extensions
	e.Value = nil

	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		return nil
	}
	v, err := decodeValue(raw.Value)
	if err != nil {
		return err
	}
	e.Value = v
	return nil
}

func decodeValue(raw json.RawMessage) (Value, error) {
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return StringValue(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return BoolValue(b), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("unsupported extension value %s", raw)
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		i, err := n.Int64()
		if err == nil {
			return IntValue(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return FloatValue(f), nil
}

// ValueString renders a Value for contexts that need its textual form.
func ValueString(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return string(val)
	case BoolValue:
		return strconv.FormatBool(bool(val))
	case IntValue:
		return strconv.FormatInt(int64(val), 10)
	case FloatValue:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	}
	return ""
}
