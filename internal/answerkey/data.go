package answerkey

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// StorageData is the flat answer map persisted for an assessment. Values are
// strings or numbers. Key insertion order is preserved through JSON round
// trips because report ordering and follow-up lookup depend on it.
type StorageData struct {
	keys   []string
	values map[string]any
}

// NewStorageData returns an empty answer map.
func NewStorageData() *StorageData {
	return &StorageData{values: make(map[string]any)}
}

// Set stores value under key. Re-setting an existing key keeps its position.
func (d *StorageData) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// SetKey stores value under the formatted form of k.
func (d *StorageData) SetKey(k Key, value any) {
	d.Set(k.Format(), value)
}

// Get returns the value stored under key.
func (d *StorageData) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Delete removes key.
func (d *StorageData) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (d *StorageData) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of entries.
func (d *StorageData) Len() int {
	return len(d.keys)
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (d *StorageData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, fmt.Errorf("encode value for %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (d *StorageData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("answer data must be a JSON object")
	}

	d.keys = nil
	d.values = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode value for %q: %w", key, err)
		}
		d.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// FormatValue renders a stored answer as text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
