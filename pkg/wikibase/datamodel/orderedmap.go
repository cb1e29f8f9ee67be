package datamodel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// orderedMap is a JSON object that remembers the order of its members. The wire format keys
// snak groups and statement groups by property id and that order is part of the content.
type orderedMap[T any] struct {
	keys   []string
	values map[string]T
}

func (m *orderedMap[T]) set(key string, value T) {
	if m.values == nil {
		m.values = map[string]T{}
	}

	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.values[key] = value
}

func (m *orderedMap[T]) len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// orderedKeys returns the keys named in order first, followed by all other keys in
// document order. Names in order that are not present are skipped.
func (m *orderedMap[T]) orderedKeys(order []string) []string {
	if m == nil {
		return nil
	}

	keys := make([]string, 0, len(m.keys))
	seen := map[string]bool{}

	for _, k := range order {
		if _, ok := m.values[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	for _, k := range m.keys {
		if !seen[k] {
			keys = append(keys, k)
		}
	}

	return keys
}

func (m orderedMap[T]) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	for idx, k := range m.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object, null, or an empty array, which is how empty objects
// appear in some dumps.
func (m *orderedMap[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch tok {
	case nil:
		return nil
	case json.Delim('['):
		if dec.More() {
			return fmt.Errorf("expected an object or an empty array")
		}
		return nil
	case json.Delim('{'):
	default:
		return fmt.Errorf("expected an object but found %v", tok)
	}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}

		var value T
		if err = dec.Decode(&value); err != nil {
			return err
		}

		m.set(key, value)
	}

	_, err = dec.Token()
	return err
}
