// internal/models/metadata.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// MetadataKind tags the variant held by a MetadataValue.
type MetadataKind int

const (
	MetadataNull MetadataKind = iota
	MetadataString
	MetadataNumber
	MetadataBool
	MetadataObject
	MetadataList
)

// MetadataValue is one engine-specific fact attached to a citation. Exactly one
// of the payload fields is meaningful, selected by Kind.
type MetadataValue struct {
	Kind   MetadataKind
	Str    string
	Num    float64
	Bool   bool
	Object Metadata
	List   []MetadataValue
}

// Metadata is the open key/value extension of a citation record.
type Metadata map[string]MetadataValue

func StringValue(s string) MetadataValue   { return MetadataValue{Kind: MetadataString, Str: s} }
func NumberValue(f float64) MetadataValue  { return MetadataValue{Kind: MetadataNumber, Num: f} }
func BoolValue(b bool) MetadataValue       { return MetadataValue{Kind: MetadataBool, Bool: b} }
func ObjectValue(m Metadata) MetadataValue { return MetadataValue{Kind: MetadataObject, Object: m} }

func ListValue(items ...MetadataValue) MetadataValue {
	return MetadataValue{Kind: MetadataList, List: items}
}

// IsScalar reports whether the value is a string, number or bool.
func (v MetadataValue) IsScalar() bool {
	return v.Kind == MetadataString || v.Kind == MetadataNumber || v.Kind == MetadataBool
}

// String renders scalar values the way they appear in feature tokens.
func (v MetadataValue) String() string {
	switch v.Kind {
	case MetadataString:
		return v.Str
	case MetadataNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case MetadataBool:
		return strconv.FormatBool(v.Bool)
	case MetadataNull:
		return "null"
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Keys returns the metadata keys in lexical order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy safe to add keys to.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (v MetadataValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case MetadataNull:
		return []byte("null"), nil
	case MetadataString:
		return json.Marshal(v.Str)
	case MetadataNumber:
		return json.Marshal(v.Num)
	case MetadataBool:
		return json.Marshal(v.Bool)
	case MetadataObject:
		if v.Object == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(map[string]MetadataValue(v.Object))
	case MetadataList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	default:
		return nil, fmt.Errorf("unknown metadata kind %d", v.Kind)
	}
}

func (v *MetadataValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromInterface converts a decoded JSON value into a MetadataValue.
func FromInterface(raw interface{}) (MetadataValue, error) {
	switch t := raw.(type) {
	case nil:
		return MetadataValue{Kind: MetadataNull}, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return MetadataValue{}, fmt.Errorf("metadata number %q: %w", t.String(), err)
		}
		return NumberValue(f), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case map[string]interface{}:
		obj := make(Metadata, len(t))
		for k, item := range t {
			mv, err := FromInterface(item)
			if err != nil {
				return MetadataValue{}, fmt.Errorf("metadata key %q: %w", k, err)
			}
			obj[k] = mv
		}
		return ObjectValue(obj), nil
	case []interface{}:
		list := make([]MetadataValue, 0, len(t))
		for i, item := range t {
			mv, err := FromInterface(item)
			if err != nil {
				return MetadataValue{}, fmt.Errorf("metadata index %d: %w", i, err)
			}
			list = append(list, mv)
		}
		return ListValue(list...), nil
	default:
		return MetadataValue{}, fmt.Errorf("unsupported metadata type %T", raw)
	}
}
