package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Descriptor is a package.json object. Keys keep the order in which they
// appear in the source file and values are kept as raw JSON, so a round
// trip does not reorder or respell anything the builder did not touch.
//
// Exported methods never modify the receiver.
type Descriptor struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
}

func newDescriptor() *Descriptor {
	return &Descriptor{fields: orderedmap.New[string, json.RawMessage]()}
}

// ParseFile reads and decodes the descriptor at path.
func ParseFile(fsys afero.Fs, path string) (*Descriptor, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing descriptor %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a JSON object. A repeated key keeps its first position and
// its last value.
func Parse(data []byte) (*Descriptor, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		if !json.Valid(data) {
			return nil, errors.New("decoding JSON: invalid syntax")
		}
		return nil, errors.New("descriptor is not a JSON object")
	}

	d := newDescriptor()
	if err := json.Unmarshal(data, d.fields); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	return d, nil
}

// Keys returns the keys in document order.
func (d *Descriptor) Keys() []string {
	keys := make([]string, 0, d.fields.Len())
	for pair := d.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Has reports whether key is present, including when its value is null.
func (d *Descriptor) Has(key string) bool {
	_, ok := d.fields.Get(key)
	return ok
}

// Raw returns the raw JSON value stored under key.
func (d *Descriptor) Raw(key string) (json.RawMessage, bool) {
	return d.fields.Get(key)
}

// String returns the value under key when it is a JSON string.
func (d *Descriptor) String(key string) (string, bool) {
	raw, ok := d.fields.Get(key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Clone returns a deep copy.
func (d *Descriptor) Clone() *Descriptor {
	c := newDescriptor()
	for pair := d.fields.Oldest(); pair != nil; pair = pair.Next() {
		c.fields.Set(pair.Key, bytes.Clone(pair.Value))
	}
	return c
}

// MarshalJSON encodes the object compactly, keys in document order. HTML
// characters are written as is.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for pair := d.fields.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(pair.Key); err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", pair.Key, err)
		}
		// Encode terminates every value with a newline.
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')

		if err := json.Compact(&buf, pair.Value); err != nil {
			return nil, fmt.Errorf("encoding value of %q: %w", pair.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent encodes the object with two-space indentation, the layout
// npm and JSON.stringify(value, null, 2) produce. Scalars keep their
// source spelling: \u00e9 stays escaped and 1.0 is not shortened to 1.
func (d *Descriptor) MarshalIndent() ([]byte, error) {
	compact, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("indenting descriptor: %w", err)
	}
	return out.Bytes(), nil
}

// set stores value under key. An existing key keeps its position; a new
// key is appended.
func (d *Descriptor) set(key string, value json.RawMessage) {
	d.fields.Set(key, value)
}

func (d *Descriptor) remove(key string) {
	d.fields.Delete(key)
}
