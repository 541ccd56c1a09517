package resolver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fintech-analyst/models"
)

// ResourceType identifies which kind of request a provider serves.
type ResourceType string

const (
	ResourceQuote      ResourceType = "quote"
	ResourceGeneration ResourceType = "generation"
)

// Descriptor describes one registered provider. Enabled is decided once at
// registration, from credential presence, and is immutable afterwards.
type Descriptor struct {
	ID       string
	Resource ResourceType
	Priority int
	Quota    QuotaPolicy
	Timeout  time.Duration
	Enabled  bool
}

// Handler is the uniform fetch contract providers implement. A nil error
// means a well-formed payload; wrapping ErrQuotaSignal reports an upstream
// rate-limit condition; any other error is a soft failure.
type Handler[R, T any] func(ctx context.Context, req R) (T, error)

type entry[R, T any] struct {
	desc    Descriptor
	handler Handler[R, T]
}

// Registry holds the ordered provider list for one resource type.
// Registration happens at startup; reads afterwards need no locking.
type Registry[R, T any] struct {
	resource ResourceType
	entries  []entry[R, T]
}

// NewRegistry creates an empty registry for the given resource type.
func NewRegistry[R, T any](resource ResourceType) *Registry[R, T] {
	return &Registry[R, T]{resource: resource}
}

// Register adds a provider. Priority ranks form a total order: duplicate
// ranks and duplicate ids are rejected, as is the reserved synthetic id.
func (g *Registry[R, T]) Register(desc Descriptor, handler Handler[R, T]) error {
	if desc.ID == "" {
		return fmt.Errorf("provider id must not be empty")
	}
	if desc.ID == models.SyntheticSource {
		return fmt.Errorf("provider id %q is reserved for the fallback", desc.ID)
	}
	if desc.Resource != g.resource {
		return fmt.Errorf("provider %s has resource %q, registry holds %q", desc.ID, desc.Resource, g.resource)
	}
	if handler == nil {
		return fmt.Errorf("provider %s has no handler", desc.ID)
	}
	for _, e := range g.entries {
		if e.desc.ID == desc.ID {
			return fmt.Errorf("provider %s already registered", desc.ID)
		}
		if e.desc.Priority == desc.Priority {
			return fmt.Errorf("provider %s and %s share priority %d", e.desc.ID, desc.ID, desc.Priority)
		}
	}

	g.entries = append(g.entries, entry[R, T]{desc: desc, handler: handler})
	sort.Slice(g.entries, func(i, j int) bool {
		return g.entries[i].desc.Priority < g.entries[j].desc.Priority
	})
	return nil
}

// Descriptors returns the registered descriptors in priority order.
func (g *Registry[R, T]) Descriptors() []Descriptor {
	descs := make([]Descriptor, 0, len(g.entries))
	for _, e := range g.entries {
		descs = append(descs, e.desc)
	}
	return descs
}

// Len returns the number of registered providers.
func (g *Registry[R, T]) Len() int {
	return len(g.entries)
}
