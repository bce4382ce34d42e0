package event

import (
	"fmt"
	"sort"
	"sync"
)

// registry maps event type names to payload constructors so stored
// events can be decoded back into their typed payloads.
var registry = struct {
	mu    sync.RWMutex
	types map[string]func() Payload
}{types: make(map[string]func() Payload)}

// Register adds a payload constructor under its EventType name.
// Called from init funcs in the domain packages. Registering the same
// name twice panics: a duplicate means two payloads claim one wire name
// and stored events would decode ambiguously.
func Register(newPayload func() Payload) {
	name := newPayload().EventType()

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.types[name]; exists {
		panic(fmt.Sprintf("event: duplicate payload registration for %q", name))
	}
	registry.types[name] = newPayload
}

// New returns a zero value of the payload registered under name.
func New(name string) (Payload, error) {
	registry.mu.RLock()
	newPayload, ok := registry.types[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("event: unknown event type %q", name)
	}
	return newPayload(), nil
}

// RegisteredTypes returns all registered event type names, sorted.
// Used by exhaustiveness tests.
func RegisteredTypes() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.types))
	for name := range registry.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
