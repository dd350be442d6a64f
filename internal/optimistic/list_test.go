package optimistic

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/inkdesk/internal/failure"
	"github.com/dtroode/inkdesk/internal/model"
	"github.com/dtroode/inkdesk/internal/testutil"
)

type item struct {
	ID     string
	Status bool
}

type recordingNotifier struct {
	mu    sync.Mutex
	shown []model.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, n)
}

func (r *recordingNotifier) all() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notification(nil), r.shown...)
}

func newTestList(n model.Notifier) *List[item] {
	l := NewList(func(i item) string { return i.ID }, n, testutil.MakeNoopLogger())
	l.WithNormalizer(failure.Normalizer{Online: func() bool { return true }})
	l.Set([]item{{ID: "a"}, {ID: "x", Status: false}, {ID: "b", Status: true}})
	return l
}

func toggle(i item) item {
	i.Status = !i.Status
	return i
}

func TestList_MutateAppliesBeforeCall(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestList(notifier)

	var published [][]item
	unsubscribe := l.Subscribe(func(items []item) { published = append(published, items) })
	defer unsubscribe()

	err := l.Mutate(context.Background(), Mutation[item]{
		ID:    "x",
		Apply: toggle,
		Call: func(context.Context) error {
			got, ok := l.Get("x")
			require.True(t, ok)
			assert.True(t, got.Status, "local state must flip before the call resolves")
			require.Len(t, published, 1)
			assert.True(t, published[0][1].Status)
			return nil
		},
		Pending: "Updating comment...",
		Success: "Comment updated",
	})
	require.NoError(t, err)

	got, _ := l.Get("x")
	assert.True(t, got.Status)
	assert.Len(t, published, 1)

	shown := notifier.all()
	require.Len(t, shown, 2)
	assert.Equal(t, model.NotificationLoading, shown[0].Kind)
	assert.Equal(t, model.NotificationSuccess, shown[1].Kind)
	assert.NotEmpty(t, shown[0].ID)
	assert.Equal(t, shown[0].ID, shown[1].ID)
}

func TestList_MutateRollsBackToSnapshot(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	l := newTestList(notifier)
	before := l.Items()

	var last []item
	l.Subscribe(func(items []item) { last = items })

	callErr := &model.APIError{Status: 500}
	err := l.Mutate(context.Background(), Mutation[item]{
		ID:       "x",
		Apply:    toggle,
		Call:     func(context.Context) error { return callErr },
		Pending:  "Updating comment...",
		Fallback: "Could not update comment",
	})
	require.ErrorIs(t, err, callErr)

	assert.Equal(t, before, l.Items())
	assert.Equal(t, before, last)
	got, _ := l.Get("x")
	assert.False(t, got.Status)

	shown := notifier.all()
	require.Len(t, shown, 2)
	assert.Equal(t, model.NotificationError, shown[1].Kind)
	assert.Equal(t, shown[0].ID, shown[1].ID)
	assert.Equal(t, "Could not update comment", shown[1].Title)
	assert.Equal(t, failure.DescriptionServerError, shown[1].Description)
}

func TestList_MutateRemoveOnSuccess(t *testing.T) {
	t.Parallel()

	l := newTestList(nil)

	err := l.Mutate(context.Background(), Mutation[item]{
		ID:              "a",
		Apply:           toggle,
		Call:            func(context.Context) error { return nil },
		RemoveOnSuccess: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, l.Len())
	_, ok := l.Get("a")
	assert.False(t, ok)
}

func TestList_MutateRemoveOnSuccess_FailureKeepsItem(t *testing.T) {
	t.Parallel()

	l := newTestList(nil)

	err := l.Mutate(context.Background(), Mutation[item]{
		ID:              "a",
		Apply:           toggle,
		Call:            func(context.Context) error { return errors.New("boom") },
		RemoveOnSuccess: true,
	})
	require.Error(t, err)

	got, ok := l.Get("a")
	require.True(t, ok)
	assert.False(t, got.Status)
	assert.Equal(t, 3, l.Len())
}

func TestList_MutateUnknownItem(t *testing.T) {
	t.Parallel()

	l := newTestList(nil)
	called := false

	err := l.Mutate(context.Background(), Mutation[item]{
		ID:    "missing",
		Apply: toggle,
		Call: func(context.Context) error {
			called = true
			return nil
		},
	})
	require.ErrorIs(t, err, model.ErrItemNotFound)
	assert.False(t, called)
}

func TestList_SetCopiesInput(t *testing.T) {
	t.Parallel()

	l := newTestList(nil)
	in := []item{{ID: "z"}}
	l.Set(in)
	in[0].Status = true

	got, ok := l.Get("z")
	require.True(t, ok)
	assert.False(t, got.Status)
}

func TestList_Unsubscribe(t *testing.T) {
	t.Parallel()

	l := newTestList(nil)
	calls := 0
	unsubscribe := l.Subscribe(func([]item) { calls++ })

	l.Set(nil)
	unsubscribe()
	l.Set(nil)

	assert.Equal(t, 1, calls)
}

func TestList_IndependentItems(t *testing.T) {
	t.Parallel()

	l := newTestList(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = l.Mutate(ctx, Mutation[item]{
				ID:    id,
				Apply: toggle,
				Call:  func(context.Context) error { return nil },
			})
		}(id)
	}
	wg.Wait()

	a, _ := l.Get("a")
	b, _ := l.Get("b")
	assert.True(t, a.Status)
	assert.False(t, b.Status)
}

func TestList_RollbackKeepsConcurrentChanges(t *testing.T) {
	t.Parallel()

	l := newTestList(nil)
	ctx := context.Background()

	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- l.Mutate(ctx, Mutation[item]{
			ID:    "x",
			Apply: toggle,
			Call: func(context.Context) error {
				<-release
				return errors.New("boom")
			},
		})
	}()

	require.Eventually(t, func() bool {
		got, _ := l.Get("x")
		return got.Status
	}, time.Second, time.Millisecond)

	require.NoError(t, l.Mutate(ctx, Mutation[item]{
		ID:    "a",
		Apply: toggle,
		Call:  func(context.Context) error { return nil },
	}))

	close(release)
	require.Error(t, <-done)

	x, _ := l.Get("x")
	a, _ := l.Get("a")
	assert.False(t, x.Status)
	assert.True(t, a.Status)
}
