package memory

import (
	"context"
	"sync"

	"github.com/dtroode/inkdesk/internal/model"
)

var _ model.Tier = (*Tier)(nil)

// Tier is a session-scoped tier that lives as long as the process.
type Tier struct {
	mu        sync.RWMutex
	namespace string
	values    map[string]string
}

func NewTier(namespace string) *Tier {
	return &Tier{
		namespace: namespace,
		values:    make(map[string]string),
	}
}

func (t *Tier) Name() string {
	return "memory:" + t.namespace
}

func (t *Tier) Get(_ context.Context, key string) (string, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.values[key]
	return v, ok, nil
}

func (t *Tier) SetAll(_ context.Context, values map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for k, v := range values {
		t.values[k] = v
	}
	return nil
}

func (t *Tier) Delete(_ context.Context, keys ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, k := range keys {
		delete(t.values, k)
	}
	return nil
}
