package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// AnswerKind discriminates the shapes an answer value can take on the wire.
type AnswerKind int

const (
	// AnswerNull is the zero kind; a null or absent value.
	AnswerNull AnswerKind = iota
	// AnswerString is a single scalar string (single choice, free text).
	AnswerString
	// AnswerList is an ordered list of strings; compared as a set.
	AnswerList
	// AnswerTuple is a fixed-size array of strings as produced by typed
	// array inputs. Compared against a list by one-way containment only;
	// see grading.Compare.
	AnswerTuple
	// AnswerOpaque is any other JSON value, compared by deep equality.
	AnswerOpaque
)

// AnswerValue is a tagged union over the answer shapes: string, list of
// strings, fixed-size tuple of strings, or an opaque JSON value. Correct
// answers and submitted answers share this representation.
type AnswerValue struct {
	kind AnswerKind
	str  string
	list []string
	raw  json.RawMessage
}

// StringAnswer wraps a scalar string value.
func StringAnswer(s string) *AnswerValue {
	return &AnswerValue{kind: AnswerString, str: s}
}

// ListAnswer wraps an ordered list of strings.
func ListAnswer(values ...string) *AnswerValue {
	return &AnswerValue{kind: AnswerList, list: values}
}

// TupleAnswer wraps a fixed-size string array.
func TupleAnswer(values ...string) *AnswerValue {
	return &AnswerValue{kind: AnswerTuple, list: values}
}

// OpaqueAnswer wraps a raw JSON value of any other shape.
func OpaqueAnswer(raw json.RawMessage) *AnswerValue {
	return &AnswerValue{kind: AnswerOpaque, raw: raw}
}

// Kind reports the shape of the value. A nil receiver is AnswerNull.
func (v *AnswerValue) Kind() AnswerKind {
	if v == nil {
		return AnswerNull
	}
	return v.kind
}

// AsString returns the scalar value when the kind is AnswerString.
func (v *AnswerValue) AsString() (string, bool) {
	if v == nil || v.kind != AnswerString {
		return "", false
	}
	return v.str, true
}

// AsStrings returns the element slice for list and tuple kinds.
func (v *AnswerValue) AsStrings() ([]string, bool) {
	if v == nil || (v.kind != AnswerList && v.kind != AnswerTuple) {
		return nil, false
	}
	return v.list, true
}

// UnmarshalJSON decodes a string into AnswerString, an array of strings into
// AnswerList and anything else into AnswerOpaque. Tuples never arrive from
// JSON; they are constructed by callers holding typed string arrays.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*v = AnswerValue{}
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = AnswerValue{kind: AnswerString, str: s}
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(trimmed, &list); err == nil {
			*v = AnswerValue{kind: AnswerList, list: list}
			return nil
		}
	}
	*v = AnswerValue{kind: AnswerOpaque, raw: append(json.RawMessage(nil), trimmed...)}
	return nil
}

// MarshalJSON writes the underlying value in its natural JSON shape.
func (v *AnswerValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.kind {
	case AnswerString:
		return json.Marshal(v.str)
	case AnswerList, AnswerTuple:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case AnswerOpaque:
		return append(json.RawMessage(nil), v.raw...), nil
	default:
		return []byte("null"), nil
	}
}

// DeepEqual reports generic value equality between two answer values. This is
// the grading fallback for shapes not covered by the typed comparison cases.
func (v *AnswerValue) DeepEqual(other *AnswerValue) bool {
	if v == nil || other == nil {
		return false
	}
	if v.kind == AnswerOpaque || other.kind == AnswerOpaque {
		return jsonEqual(v, other)
	}
	if v.kind == AnswerString && other.kind == AnswerString {
		return v.str == other.str
	}
	return reflect.DeepEqual(v.list, other.list)
}

func jsonEqual(a, b *AnswerValue) bool {
	ab, err := a.MarshalJSON()
	if err != nil {
		return false
	}
	bb, err := b.MarshalJSON()
	if err != nil {
		return false
	}
	var av, bv interface{}
	if err := json.Unmarshal(ab, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(bb, &bv); err != nil {
		return false
	}
	return reflect.DeepEqual(av, bv)
}
