package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// MarshalPayload serializes a payload to JSON TEXT for storage.
// HTML escaping is disabled so stored payloads match what clients sent.
func MarshalPayload(p Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", p.EventType(), err)
	}
	// Encoder adds a trailing newline, remove it
	return []byte(strings.TrimSpace(buf.String())), nil
}

// UnmarshalPayload decodes stored payload JSON into the typed payload
// registered under name.
func UnmarshalPayload(name string, data []byte) (Payload, error) {
	p, err := New(name)
	if err != nil {
		return nil, err
	}

	// The registry hands back a value; unmarshal needs a pointer to it.
	ptr := reflect.New(reflect.TypeOf(p))
	if len(data) > 0 {
		if err := json.Unmarshal(data, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("unmarshal %s payload: %w", name, err)
		}
	}
	return ptr.Elem().Interface().(Payload), nil
}
