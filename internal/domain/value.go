package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ValueKind identifies which primitive a Value holds.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
)

// Value is an item attribute: a string, a number or a boolean.
type Value struct {
	kind ValueKind
	s    string
	n    float64
	b    bool
}

func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func NumberValue(n float64) Value { return Value{kind: KindNumber, n: n} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }

// Kind reports the primitive held by v.
func (v Value) Kind() ValueKind { return v.kind }

// Interface returns the held primitive as string, float64 or bool.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.n
	case KindBool:
		return v.b
	default:
		return v.s
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = StringValue(x)
	case float64:
		*v = NumberValue(x)
	case bool:
		*v = BoolValue(x)
	default:
		return fmt.Errorf("attribute value must be string, number or bool, got %s", string(data))
	}
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: attribute value must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		var n float64
		if err := node.Decode(&n); err != nil {
			return err
		}
		*v = NumberValue(n)
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case "!!null":
		return fmt.Errorf("line %d: attribute value must not be null", node.Line)
	default:
		*v = StringValue(node.Value)
	}
	return nil
}
