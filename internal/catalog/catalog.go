package catalog

import (
	"context"
	"sync"
)

// Catalog pairs a Resolver with the ephemeral "current model list"
// shown for the active provider. The list is created on demand by
// Refresh, cleared whenever the active provider changes, and never
// persisted.
type Catalog struct {
	resolver *Resolver

	mu      sync.Mutex
	active  Provider
	gen     uint64
	current []string
}

func New(resolver *Resolver) *Catalog {
	return &Catalog{resolver: resolver}
}

// SetActive records the provider selection and clears the held model
// list. Any refresh still in flight is invalidated.
func (c *Catalog) SetActive(p Provider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == c.active {
		return
	}
	c.active = p
	c.gen++
	c.current = nil
}

// Active returns the currently selected provider.
func (c *Catalog) Active() Provider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Current returns the held model list, independent of any in-flight
// refresh.
func (c *Catalog) Current() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.current))
	copy(out, c.current)
	return out
}

// Refresh fetches the provider's catalog and, if no newer refresh or
// provider switch happened meanwhile, stores it as the current list.
// Each call is tagged with a generation; the last refresh started wins
// the visible state, and stale responses are discarded.
func (c *Catalog) Refresh(ctx context.Context, p Provider) ([]string, error) {
	c.mu.Lock()
	c.gen++
	token := c.gen
	c.mu.Unlock()

	models, err := c.resolver.ListModels(ctx, p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if token == c.gen {
		c.current = models
	}
	c.mu.Unlock()
	return models, nil
}
