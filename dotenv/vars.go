package dotenv

import (
	"bytes"
	"encoding/json"
	"iter"
	"maps"
	"reflect"
)

var jsonVarsType = reflect.TypeFor[Vars]()

// Lookuper is a read-only key/value namespace.
type Lookuper interface {
	// Lookup returns the value of key and whether it is defined.
	Lookup(key string) (string, bool)
	// Len returns the number of defined keys.
	Len() int
}

// Vars is a mapping from key to value that remembers the order in which keys
// were first inserted.
//
// The zero value is an empty mapping ready to use.
type Vars struct {
	keys []string
	vals map[string]string
}

// NewVars returns an empty mapping.
func NewVars() *Vars {
	return &Vars{vals: make(map[string]string)}
}

// VarsOf returns a mapping holding the given key/value pairs, which must
// alternate key, value, key, value. A trailing key without a value is
// assigned the empty string.
func VarsOf(kv ...string) *Vars {
	v := NewVars()

	for i := 0; i < len(kv); i += 2 {
		var val string
		if i+1 < len(kv) {
			val = kv[i+1]
		}

		v.Set(kv[i], val)
	}

	return v
}

// Lookup implements [Lookuper].
func (v *Vars) Lookup(key string) (string, bool) {
	if v == nil || v.vals == nil {
		return "", false
	}

	val, ok := v.vals[key]

	return val, ok
}

// Get returns the value of key, or the empty string if undefined.
func (v *Vars) Get(key string) string {
	val, _ := v.Lookup(key)

	return val
}

// Len implements [Lookuper].
func (v *Vars) Len() int {
	if v == nil {
		return 0
	}

	return len(v.keys)
}

// Set assigns val to key. A new key is appended to the iteration order;
// an existing key keeps its position.
func (v *Vars) Set(key, val string) {
	if v.vals == nil {
		v.vals = make(map[string]string)
	}

	if _, ok := v.vals[key]; !ok {
		v.keys = append(v.keys, key)
	}

	v.vals[key] = val
}

// Merge assigns every pair of src to v in the iteration order of src,
// replacing existing values.
func (v *Vars) Merge(src *Vars) {
	for key, val := range src.All() {
		v.Set(key, val)
	}
}

// Keys returns an iterator over the keys in insertion order.
func (v *Vars) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		if v == nil {
			return
		}

		for _, key := range v.keys {
			if !yield(key) {
				return
			}
		}
	}
}

// All returns an iterator over key/value pairs in insertion order.
func (v *Vars) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if v == nil {
			return
		}

		for _, key := range v.keys {
			if !yield(key, v.vals[key]) {
				return
			}
		}
	}
}

// Map returns the pairs as a native map. The result is a copy.
func (v *Vars) Map() map[string]string {
	if v == nil {
		return map[string]string{}
	}

	return maps.Clone(v.vals)
}

// Clone returns a deep copy of v.
func (v *Vars) Clone() *Vars {
	c := NewVars()
	c.Merge(v)

	return c
}

// MarshalJSON encodes the mapping as a JSON object whose members appear in
// insertion order.
func (v *Vars) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	i := 0
	for key, val := range v.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		s, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(s)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string members, keeping member
// order. Existing contents of v are replaced.
func (v *Vars) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if tok == nil {
		return nil // null
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: jsonVarsType}
	}

	out := NewVars()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, _ := tok.(string)

		var val string
		if err := dec.Decode(&val); err != nil {
			return err
		}

		out.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*v = *out

	return nil
}
