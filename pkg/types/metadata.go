// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MetadataEntry is a single key/value pair of document metadata.
type MetadataEntry struct {
	Key   string
	Value any
}

// Metadata is an insertion-ordered mapping from string keys to scalar
// values. The zero value is an empty mapping ready for use.
type Metadata struct {
	entries []MetadataEntry
}

// NewMetadata builds Metadata from alternating key/value arguments.
// It panics if a key is not a string or a value is missing.
func NewMetadata(kv ...any) Metadata {
	if len(kv)%2 != 0 {
		panic("types.NewMetadata: odd number of arguments")
	}
	var m Metadata
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("types.NewMetadata: key %v is not a string", kv[i]))
		}
		m.Set(key, kv[i+1])
	}
	return m
}

// Set stores value under key. An existing key keeps its position.
func (m *Metadata) Set(key string, value any) {
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Value = value
			return
		}
	}
	m.entries = append(m.entries, MetadataEntry{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m Metadata) Get(key string) (any, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the entries in insertion order.
func (m Metadata) Entries() []MetadataEntry {
	out := make([]MetadataEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// MarshalJSON encodes the mapping as a JSON object with keys in insertion
// order. HTML characters are not escaped.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(e.Value)
		if err != nil {
			return nil, fmt.Errorf("metadata %q: %w", e.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
