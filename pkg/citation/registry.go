package citation

import (
	"fmt"
	"sync"
)

// Registry holds catalog parsers in precedence order. The first parser to
// accept a citation wins, so order matters.
// Thread-safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	parsers map[System]Parser
	order   []System
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[System]Parser),
	}
}

// DefaultRegistry returns a registry holding every built-in parser in the
// standard precedence order.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	for _, system := range Precedence {
		parser, ok := NewParser(system)
		if !ok {
			continue
		}
		// Precedence holds no duplicates, so Register cannot fail here.
		_ = registry.Register(parser)
	}
	return registry
}

// NewParser builds the built-in parser for system.
func NewParser(system System) (Parser, bool) {
	switch system {
	case SystemRIC:
		return NewRICParser(), true
	case SystemCrawford:
		return NewCrawfordParser(), true
	case SystemRPC:
		return NewRPCParser(), true
	case SystemSNG:
		return NewSNGParser(), true
	}
	if parser, ok := NewKeywordParser(system); ok {
		return parser, true
	}
	return nil, false
}

// Register appends a parser at the lowest precedence.
// Returns an error if the parser is nil, names no system, or a parser for
// the same system is already registered.
func (r *Registry) Register(parser Parser) error {
	if parser == nil {
		return fmt.Errorf("citation parser cannot be nil")
	}
	system := parser.System()
	if system == "" {
		return fmt.Errorf("citation parser system cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[system]; exists {
		return fmt.Errorf("citation parser for %q already registered", system)
	}
	r.parsers[system] = parser
	r.order = append(r.order, system)
	return nil
}

// Unregister removes the parser for system.
// Returns an error if no such parser is registered.
func (r *Registry) Unregister(system System) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[system]; !exists {
		return fmt.Errorf("citation parser for %q not found", system)
	}
	delete(r.parsers, system)

	filtered := make([]System, 0, len(r.order))
	for _, existing := range r.order {
		if existing != system {
			filtered = append(filtered, existing)
		}
	}
	r.order = filtered
	return nil
}

// Get returns the parser registered for system.
func (r *Registry) Get(system System) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parser, ok := r.parsers[system]
	return parser, ok
}

// List returns the registered systems in precedence order.
func (r *Registry) List() []System {
	r.mu.RLock()
	defer r.mu.RUnlock()
	systems := make([]System, len(r.order))
	copy(systems, r.order)
	return systems
}

// Parsers returns a snapshot of the registered parsers in precedence order.
func (r *Registry) Parsers() []Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	parsers := make([]Parser, 0, len(r.order))
	for _, system := range r.order {
		parsers = append(parsers, r.parsers[system])
	}
	return parsers
}

// Count returns the number of registered parsers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.parsers)
}
