// Package optimistic holds ordered collections that apply user mutations
// locally before the server confirms them and roll back on failure.
package optimistic

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/inkdesk/internal/failure"
	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
)

// Mutation describes one optimistic action on the item identified by ID.
type Mutation[T any] struct {
	ID string
	// Apply returns the locally mutated item.
	Apply func(T) T
	// Call performs the server request.
	Call func(ctx context.Context) error
	// RemoveOnSuccess drops the item once the server confirms.
	RemoveOnSuccess bool

	Pending  string
	Success  string
	Fallback string
}

// List is an ordered collection published to subscribers on every change.
type List[T any] struct {
	mu          sync.Mutex
	items       []T
	id          func(T) string
	subscribers map[int]func([]T)
	nextSub     int
	// version counts changes to items.
	version uint64

	notifier   model.Notifier
	normalizer failure.Normalizer
	logger     *logger.Logger
}

// NewList creates an empty List. id extracts an item's identity.
func NewList[T any](id func(T) string, notifier model.Notifier, logger *logger.Logger) *List[T] {
	return &List[T]{
		id:          id,
		subscribers: make(map[int]func([]T)),
		notifier:    notifier,
		normalizer:  failure.DefaultNormalizer,
		logger:      logger,
	}
}

// WithNormalizer replaces the error normalizer.
func (l *List[T]) WithNormalizer(n failure.Normalizer) *List[T] {
	l.normalizer = n
	return l
}

// Set replaces the collection.
func (l *List[T]) Set(items []T) {
	l.mu.Lock()
	l.items = slices.Clone(items)
	l.version++
	l.mu.Unlock()

	l.publish()
}

// Items returns a copy of the collection.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.items)
}

// Len returns the collection size.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.items)
}

// Get returns the item with the given id.
func (l *List[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Subscribe registers fn to receive a copy of the collection after every
// change. The returned func unsubscribes.
func (l *List[T]) Subscribe(fn func([]T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	l.subscribers[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subscribers, id)
	}
}

// Mutate snapshots the collection, applies m locally and publishes, then
// issues the call. On failure the snapshot is restored and a normalized error
// is surfaced; on success the item is optionally removed.
//
// If the collection changed while the call was in flight, a rollback restores
// only this item from the snapshot so other items keep their newer state.
func (l *List[T]) Mutate(ctx context.Context, m Mutation[T]) error {
	l.mu.Lock()
	i := l.index(m.ID)
	if i < 0 {
		l.mu.Unlock()
		return model.ErrItemNotFound
	}
	snapshot := l.items
	mutated := slices.Clone(snapshot)
	mutated[i] = m.Apply(mutated[i])
	l.items = mutated
	l.version++
	applied := l.version
	l.mu.Unlock()

	l.publish()

	correlationID := uuid.NewString()
	if m.Pending != "" {
		l.notify(ctx, model.Notification{ID: correlationID, Kind: model.NotificationLoading, Title: m.Pending})
	}

	if err := m.Call(ctx); err != nil {
		l.mu.Lock()
		l.rollback(m.ID, snapshot, i, applied)
		l.mu.Unlock()

		l.publish()

		msg := l.normalizer.Normalize(err, m.Fallback)
		l.notify(ctx, model.Notification{
			ID:          correlationID,
			Kind:        model.NotificationError,
			Title:       msg.Title,
			Description: msg.Description,
		})
		l.logger.Warn("Optimistic list: mutation rolled back",
			"item_id", m.ID,
			"error", err.Error())
		return err
	}

	if m.RemoveOnSuccess {
		l.mu.Lock()
		if j := l.index(m.ID); j >= 0 {
			l.items = slices.Delete(slices.Clone(l.items), j, j+1)
			l.version++
		}
		l.mu.Unlock()

		l.publish()
	}

	if m.Success != "" {
		l.notify(ctx, model.Notification{ID: correlationID, Kind: model.NotificationSuccess, Title: m.Success})
	}

	l.logger.Debug("Optimistic list: mutation confirmed",
		"item_id", m.ID)
	return nil
}

// rollback must be called with l.mu held.
func (l *List[T]) rollback(id string, snapshot []T, at int, applied uint64) {
	defer func() { l.version++ }()

	if l.version == applied {
		l.items = snapshot
		return
	}
	if j := l.index(id); j >= 0 {
		items := slices.Clone(l.items)
		items[j] = snapshot[at]
		l.items = items
	}
}

func (l *List[T]) index(id string) int {
	return slices.IndexFunc(l.items, func(item T) bool { return l.id(item) == id })
}

func (l *List[T]) publish() {
	l.mu.Lock()
	items := slices.Clone(l.items)
	subs := make([]func([]T), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(slices.Clone(items))
	}
}

func (l *List[T]) notify(ctx context.Context, n model.Notification) {
	if l.notifier != nil {
		l.notifier.Notify(ctx, n)
	}
}
