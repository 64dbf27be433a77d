package translate

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/seqvar/vrsfhir/internal/fhir"
	"github.com/seqvar/vrsfhir/internal/vrs"
)

// ExtensionMapper converts between the VRS extension tree and its FHIR
// encoding. On the FHIR side each node is an Extension whose name, value,
// and description live in child extensions keyed by fixed URLs; further
// children are nested generic extensions. Entity-level scalar fields
// (name, aliases, digest) ride alongside as flat extensions keyed by the
// owning entity's URL table.
type ExtensionMapper struct {
	urls URLTable
}

// NewExtensionMapper builds a mapper over the given URL table.
func NewExtensionMapper(urls URLTable) *ExtensionMapper {
	return &ExtensionMapper{urls: urls}
}

// EntityFields is the flat metadata extracted from (or rendered into) an
// entity's FHIR extension list.
type EntityFields struct {
	ID          string
	Name        string
	Description string
	Digest      string
	Aliases     []string
	Extensions  []vrs.Extension
}

// ToFhir maps an extension tree depth-first. Empty input yields nil so the
// FHIR field is omitted rather than serialized as an empty array.
func (m *ExtensionMapper) ToFhir(exts []vrs.Extension) ([]fhir.Extension, error) {
	if len(exts) == 0 {
		return nil, nil
	}
	out := make([]fhir.Extension, 0, len(exts))
	for _, ext := range exts {
		mapped, err := m.mapExtension(ext)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (m *ExtensionMapper) mapExtension(ext vrs.Extension) (fhir.Extension, error) {
	node := fhir.Extension{ID: ext.ID}

	var subs []fhir.Extension
	if ext.Name != "" {
		subs = append(subs, stringExtension(m.urls.ExtensionName, ext.Name))
	}
	if ext.Value != nil {
		valueExt, err := m.valueExtension(m.urls.ExtensionValue, ext.Value)
		if err != nil {
			return fhir.Extension{}, err
		}
		subs = append(subs, valueExt)
	}
	if ext.Description != "" {
		subs = append(subs, stringExtension(m.urls.ExtensionDescription, ext.Description))
	}
	for _, nested := range ext.Extensions {
		mapped, err := m.mapExtension(nested)
		if err != nil {
			return fhir.Extension{}, err
		}
		subs = append(subs, mapped)
	}

	node.Extension = subs
	return node, nil
}

// valueExtension dispatches the tagged value union onto FHIR's value[x]
// fields.
func (m *ExtensionMapper) valueExtension(url string, v vrs.Value) (fhir.Extension, error) {
	switch val := v.(type) {
	case vrs.StringValue:
		s := string(val)
		return fhir.Extension{URL: url, ValueString: &s}, nil
	case vrs.BoolValue:
		b := bool(val)
		return fhir.Extension{URL: url, ValueBoolean: &b}, nil
	case vrs.IntValue:
		i := int64(val)
		return fhir.Extension{URL: url, ValueInteger: &i}, nil
	case vrs.FloatValue:
		n := json.Number(strconv.FormatFloat(float64(val), 'g', -1, 64))
		return fhir.Extension{URL: url, ValueDecimal: &n}, nil
	}
	return fhir.Extension{}, fmt.Errorf("%w: %T", ErrUnsupportedExtensionValue, v)
}

// ToVrs is the inverse of ToFhir: each top-level extension becomes one
// tree node, with its child extensions matched against the sub-field URLs
// to recover name, value, and description, and recursed into otherwise.
func (m *ExtensionMapper) ToVrs(exts []fhir.Extension) []vrs.Extension {
	if len(exts) == 0 {
		return nil
	}
	out := make([]vrs.Extension, 0, len(exts))
	for _, ext := range exts {
		node := vrs.Extension{ID: ext.ID}
		for _, sub := range ext.Extension {
			switch sub.URL {
			case m.urls.ExtensionName:
				node.Name = stringValueOf(sub)
			case m.urls.ExtensionValue:
				node.Value = valueOf(sub)
			case m.urls.ExtensionDescription:
				node.Description = stringValueOf(sub)
			default:
				if len(sub.Extension) > 0 {
					node.Extensions = append(node.Extensions, m.ToVrs([]fhir.Extension{sub})...)
				}
			}
		}
		out = append(out, node)
	}
	return out
}

// BuildEntityExtensions renders an entity's flat fields plus its extension
// tree into a FHIR extension list. Entity fields with no URL in the table
// (for example digest on a literal sequence expression) are skipped.
func (m *ExtensionMapper) BuildEntityExtensions(urls EntityURLs, fields EntityFields) ([]fhir.Extension, error) {
	var out []fhir.Extension
	if urls.ID != "" && fields.ID != "" {
		out = append(out, stringExtension(urls.ID, fields.ID))
	}
	if fields.Name != "" {
		out = append(out, stringExtension(urls.Name, fields.Name))
	}
	if fields.Description != "" {
		out = append(out, stringExtension(urls.Description, fields.Description))
	}
	for _, alias := range fields.Aliases {
		out = append(out, stringExtension(urls.Aliases, alias))
	}
	if urls.Digest != "" && fields.Digest != "" {
		out = append(out, stringExtension(urls.Digest, fields.Digest))
	}
	nested, err := m.ToFhir(fields.Extensions)
	if err != nil {
		return nil, err
	}
	out = append(out, nested...)
	return out, nil
}

// ExtractEntityFields is the inverse of BuildEntityExtensions: it matches
// each extension's URL against the entity table and collects the flat
// fields, treating anything with children and no known URL as a nested
// generic extension.
func (m *ExtensionMapper) ExtractEntityFields(urls EntityURLs, exts []fhir.Extension) EntityFields {
	var fields EntityFields
	for _, ext := range exts {
		switch {
		case urls.ID != "" && ext.URL == urls.ID:
			fields.ID = stringValueOf(ext)
		case ext.URL != "" && ext.URL == urls.Name:
			fields.Name = stringValueOf(ext)
		case ext.URL != "" && ext.URL == urls.Description:
			fields.Description = stringValueOf(ext)
		case ext.URL != "" && ext.URL == urls.Aliases:
			fields.Aliases = append(fields.Aliases, stringValueOf(ext))
		case urls.Digest != "" && ext.URL == urls.Digest:
			fields.Digest = stringValueOf(ext)
		default:
			if len(ext.Extension) > 0 {
				fields.Extensions = append(fields.Extensions, m.ToVrs([]fhir.Extension{ext})...)
			}
		}
	}
	return fields
}

func stringExtension(url, value string) fhir.Extension {
	return fhir.Extension{URL: url, ValueString: &value}
}

// stringValueOf reads the valueString of a flat field extension.
func stringValueOf(ext fhir.Extension) string {
	if ext.ValueString != nil {
		return *ext.ValueString
	}
	return ""
}

// valueOf recovers the tagged value union from whichever value[x] field is
// set, probed in a fixed order.
func valueOf(ext fhir.Extension) vrs.Value {
	switch {
	case ext.ValueString != nil:
		return vrs.StringValue(*ext.ValueString)
	case ext.ValueBoolean != nil:
		return vrs.BoolValue(*ext.ValueBoolean)
	case ext.ValueDecimal != nil:
		if f, err := ext.ValueDecimal.Float64(); err == nil {
			return vrs.FloatValue(f)
		}
		return vrs.StringValue(ext.ValueDecimal.String())
	case ext.ValueInteger != nil:
		return vrs.IntValue(*ext.ValueInteger)
	}
	return nil
}
