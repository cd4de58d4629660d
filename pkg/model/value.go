package model

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// ValueKind tags the variant held by a FieldValue.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindText
	KindSet
	KindFile
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSet:
		return "set"
	case KindFile:
		return "file"
	default:
		return "none"
	}
}

// FileRef is the opaque handle stored for file fields. Only metadata is kept;
// contents stay with whatever surface produced the reference.
type FileRef struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType,omitempty"`
}

// FieldValue is the current value of one field: nothing, a string, an ordered
// set of strings or a file reference.
type FieldValue struct {
	kind ValueKind
	text string
	set  []string
	file FileRef
}

// None returns the absent value.
func None() FieldValue {
	return FieldValue{}
}

// Text wraps a string value.
func Text(s string) FieldValue {
	return FieldValue{kind: KindText, text: s}
}

// Set builds a set value. Duplicates are dropped, first occurrence wins.
func Set(values ...string) FieldValue {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return FieldValue{kind: KindSet, set: out}
}

// File wraps a file reference.
func File(ref FileRef) FieldValue {
	return FieldValue{kind: KindFile, file: ref}
}

// Kind reports the active variant.
func (v FieldValue) Kind() ValueKind {
	return v.kind
}

// AsText returns the string payload when the value is text.
func (v FieldValue) AsText() (string, bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// Members returns a copy of the set members, or nil for non-set values.
func (v FieldValue) Members() []string {
	if v.kind != KindSet {
		return nil
	}
	return append([]string{}, v.set...)
}

// FileRef returns the file reference when the value holds one.
func (v FieldValue) FileRef() (FileRef, bool) {
	if v.kind != KindFile {
		return FileRef{}, false
	}
	return v.file, true
}

// IsEmpty reports absent values, empty strings and empty sets.
func (v FieldValue) IsEmpty() bool {
	switch v.kind {
	case KindText:
		return v.text == ""
	case KindSet:
		return len(v.set) == 0
	case KindFile:
		return false
	default:
		return true
	}
}

// Len is the natural size of the value: characters for text, members for
// sets. Files and absent values have length zero.
func (v FieldValue) Len() int {
	switch v.kind {
	case KindText:
		return utf8.RuneCountInString(v.text)
	case KindSet:
		return len(v.set)
	default:
		return 0
	}
}

// Contains reports set membership. Text values match on equality.
func (v FieldValue) Contains(member string) bool {
	switch v.kind {
	case KindSet:
		for _, m := range v.set {
			if m == member {
				return true
			}
		}
	case KindText:
		return v.text == member
	}
	return false
}

// Toggle adds member when checked and removes it otherwise. Non-set values
// are treated as the empty set.
func (v FieldValue) Toggle(member string, checked bool) FieldValue {
	current := v.Members()
	if checked {
		return Set(append(current, member)...)
	}
	out := current[:0]
	for _, m := range current {
		if m != member {
			out = append(out, m)
		}
	}
	return Set(out...)
}

// Equal compares variant and payload. Sets compare by membership.
func (v FieldValue) Equal(other FieldValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == other.text
	case KindSet:
		if len(v.set) != len(other.set) {
			return false
		}
		for _, m := range v.set {
			if !other.Contains(m) {
				return false
			}
		}
		return true
	case KindFile:
		return v.file == other.file
	default:
		return true
	}
}

// String renders the value for display.
func (v FieldValue) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindSet:
		return strings.Join(v.set, ", ")
	case KindFile:
		return v.file.Name
	default:
		return ""
	}
}

// MarshalJSON emits the submission shape: null, a string, an array or a file
// object.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindSet:
		return json.Marshal(v.Members())
	case KindFile:
		return json.Marshal(v.file)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the shapes produced by MarshalJSON.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = None()
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = Text(s)
	case '[':
		var members []string
		if err := json.Unmarshal(trimmed, &members); err != nil {
			return err
		}
		*v = Set(members...)
	case '{':
		var ref FileRef
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return err
		}
		*v = File(ref)
	default:
		return fmt.Errorf("model: unsupported field value %s", trimmed)
	}
	return nil
}

// Values is the sparse id to value mapping held by the form state.
type Values map[string]FieldValue

// Clone returns a shallow copy; FieldValue is immutable so that is enough.
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Get returns the value for id, defaulting to None.
func (vs Values) Get(id string) FieldValue {
	if vs == nil {
		return None()
	}
	return vs[id]
}
