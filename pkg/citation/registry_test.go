package citation

import (
	"sync"
	"testing"
)

// mockParser is a test double implementing Parser.
type mockParser struct {
	system System
	ref    *ParsedReference
}

func (m *mockParser) System() System { return m.system }
func (m *mockParser) Parse(raw string) (*ParsedReference, bool) {
	if m.ref == nil {
		return nil, false
	}
	return m.ref, true
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if registry.Count() != 0 {
		t.Errorf("Expected 0 parsers, got %d", registry.Count())
	}
	if systems := registry.List(); len(systems) != 0 {
		t.Errorf("Expected empty list, got %v", systems)
	}
}

func TestDefaultRegistryPrecedence(t *testing.T) {
	registry := DefaultRegistry()
	if registry.Count() != len(Precedence) {
		t.Fatalf("Expected %d parsers, got %d", len(Precedence), registry.Count())
	}
	systems := registry.List()
	for i, system := range Precedence {
		if systems[i] != system {
			t.Errorf("position %d: expected %s, got %s", i, system, systems[i])
		}
	}

	bmcrr, bmcre := -1, -1
	for i, system := range systems {
		switch system {
		case SystemBMCRR:
			bmcrr = i
		case SystemBMCRE:
			bmcre = i
		}
	}
	if bmcrr > bmcre {
		t.Errorf("BMCRR (%d) must precede BMCRE (%d)", bmcrr, bmcre)
	}
}

func TestRegistryRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		registry := NewRegistry()
		if err := registry.Register(&mockParser{system: SystemRIC}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if registry.Count() != 1 {
			t.Errorf("Expected 1 parser, got %d", registry.Count())
		}
		if _, ok := registry.Get(SystemRIC); !ok {
			t.Error("Expected RIC parser to be retrievable")
		}
	})

	t.Run("nil_parser", func(t *testing.T) {
		if err := NewRegistry().Register(nil); err == nil {
			t.Error("Expected error for nil parser")
		}
	})

	t.Run("empty_system", func(t *testing.T) {
		if err := NewRegistry().Register(&mockParser{}); err == nil {
			t.Error("Expected error for empty system")
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		registry := NewRegistry()
		_ = registry.Register(&mockParser{system: SystemRIC})
		if err := registry.Register(&mockParser{system: SystemRIC}); err == nil {
			t.Error("Expected error for duplicate system")
		}
	})

	t.Run("appends_lowest_precedence", func(t *testing.T) {
		registry := NewRegistry()
		_ = registry.Register(&mockParser{system: SystemSNG})
		_ = registry.Register(&mockParser{system: SystemRIC})
		systems := registry.List()
		if len(systems) != 2 || systems[0] != SystemSNG || systems[1] != SystemRIC {
			t.Errorf("Expected [sng ric], got %v", systems)
		}
	})
}

func TestRegistryUnregister(t *testing.T) {
	registry := DefaultRegistry()
	if err := registry.Unregister(SystemRPC); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if _, ok := registry.Get(SystemRPC); ok {
		t.Error("RPC parser still registered")
	}
	for _, system := range registry.List() {
		if system == SystemRPC {
			t.Error("RPC still listed")
		}
	}
	if registry.Count() != len(Precedence)-1 {
		t.Errorf("Expected %d parsers, got %d", len(Precedence)-1, registry.Count())
	}
	if err := registry.Unregister(SystemRPC); err == nil {
		t.Error("Expected error unregistering a missing parser")
	}
}

func TestRegistryPrecedenceDecidesWinner(t *testing.T) {
	registry := NewRegistry()
	first := &ParsedReference{System: SystemCohen, Number: "1"}
	second := &ParsedReference{System: SystemSear, Number: "2"}
	_ = registry.Register(&mockParser{system: SystemCohen, ref: first})
	_ = registry.Register(&mockParser{system: SystemSear, ref: second})

	engine := NewEngine(WithRegistry(registry))
	outcome := engine.Parse("anything 1")
	if outcome.Reference != first {
		t.Errorf("Expected first-registered parser to win, got %+v", outcome.Reference)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := DefaultRegistry()
	engine := NewEngine(WithRegistry(registry))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = registry.List()
			_ = registry.Count()
			_, _ = registry.Get(SystemRIC)
			if outcome := engine.Parse("RIC I 207"); outcome.Reference == nil {
				t.Error("Expected RIC I 207 to parse")
			}
		}()
	}
	wg.Wait()
}
