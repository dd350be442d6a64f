package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/inkdesk/internal/failure"
	"github.com/dtroode/inkdesk/internal/model"
	"github.com/dtroode/inkdesk/internal/testutil"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []model.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *recordingNotifier) kinds() []model.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.NotificationKind, 0, len(r.seen))
	for _, n := range r.seen {
		out = append(out, n.Kind)
	}
	return out
}

func (r *recordingNotifier) last() model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[len(r.seen)-1]
}

func sessionWithRoles(t *testing.T, roles ...model.Role) *Session {
	t.Helper()

	auth := &mockAuth{}
	auth.On("Login", mock.Anything, "admin@example.com", "pw").Return(model.LoginResult{
		AccessToken:  "T",
		RefreshToken: "R",
		User:         model.User{ID: "admin", Roles: model.NewRoleSet(roles...)},
	}, nil).Once()

	f := newSessionFixture(auth)
	require.NoError(t, f.session.Login(context.Background(), "admin@example.com", "pw", false))
	return f.session
}

var testNormalizer = failure.Normalizer{Online: func() bool { return true }}

func TestComments_Load(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &mockModeration{}
	api.On("ListComments", mock.Anything).Return([]model.Comment{{ID: "c1"}, {ID: "c2", Approved: true}}, nil).Once()

	c := NewComments(api, sessionWithRoles(t, model.RoleAdmin), &recordingNotifier{}, testutil.MakeNoopLogger())
	require.NoError(t, c.Load(ctx))

	assert.Equal(t, 2, c.List().Len())
	api.AssertExpectations(t)
}

func TestComments_Load_Error(t *testing.T) {
	t.Parallel()

	api := &mockModeration{}
	apiErr := &model.APIError{Status: 500}
	api.On("ListComments", mock.Anything).Return(nil, apiErr).Once()

	c := NewComments(api, sessionWithRoles(t, model.RoleAdmin), &recordingNotifier{}, testutil.MakeNoopLogger())
	err := c.Load(context.Background())

	require.ErrorIs(t, err, apiErr)
	assert.Zero(t, c.List().Len())
}

func TestComments_RequiresAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session *Session
		wantErr error
	}{
		{name: "anonymous", session: newSessionFixture(&mockAuth{}).session, wantErr: model.ErrUnauthenticated},
		{name: "author", session: sessionWithRoles(t, model.RoleAuthor), wantErr: model.ErrForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := &mockModeration{}
			c := NewComments(api, tt.session, &recordingNotifier{}, testutil.MakeNoopLogger())

			assert.ErrorIs(t, c.Load(context.Background()), tt.wantErr)
			assert.ErrorIs(t, c.Toggle(context.Background(), "c1"), tt.wantErr)
			api.AssertNotCalled(t, "ListComments", mock.Anything)
			api.AssertNotCalled(t, "SetCommentStatus", mock.Anything, mock.Anything)
		})
	}
}

func TestComments_Toggle_AppliesBeforeCall(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &mockModeration{}
	notifier := &recordingNotifier{}
	c := NewComments(api, sessionWithRoles(t, model.RoleAdmin), notifier, testutil.MakeNoopLogger())
	c.List().Set([]model.Comment{{ID: "c1", Approved: false}, {ID: "c2"}})

	var approvedDuringCall bool
	api.On("SetCommentStatus", mock.Anything, "c1").Run(func(mock.Arguments) {
		cm, _ := c.List().Get("c1")
		approvedDuringCall = cm.Approved
	}).Return(nil).Once()

	require.NoError(t, c.Toggle(ctx, "c1"))

	assert.True(t, approvedDuringCall)
	cm, ok := c.List().Get("c1")
	require.True(t, ok)
	assert.True(t, cm.Approved)
	assert.Equal(t, 2, c.List().Len())
	assert.Equal(t, []model.NotificationKind{model.NotificationLoading, model.NotificationSuccess}, notifier.kinds())
	assert.Equal(t, "Comment approved", notifier.last().Title)
}

func TestComments_Toggle_RollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := &mockModeration{}
	notifier := &recordingNotifier{}
	c := NewComments(api, sessionWithRoles(t, model.RoleAdmin), notifier, testutil.MakeNoopLogger())
	c.List().WithNormalizer(testNormalizer)

	before := []model.Comment{{ID: "c1", Approved: true}, {ID: "c2"}}
	c.List().Set(before)

	callErr := &model.APIError{Status: 500, Message: "Database unavailable"}
	api.On("SetCommentStatus", mock.Anything, "c1").Return(callErr).Once()

	err := c.Toggle(ctx, "c1")
	require.ErrorIs(t, err, callErr)

	assert.Equal(t, before, c.List().Items())
	last := notifier.last()
	assert.Equal(t, model.NotificationError, last.Kind)
	assert.Equal(t, "Database unavailable", last.Title)
	assert.Equal(t, failure.DescriptionServerError, last.Description)
}

func TestComments_Toggle_UnknownItem(t *testing.T) {
	t.Parallel()

	api := &mockModeration{}
	c := NewComments(api, sessionWithRoles(t, model.RoleAdmin), &recordingNotifier{}, testutil.MakeNoopLogger())

	assert.ErrorIs(t, c.Toggle(context.Background(), "missing"), model.ErrItemNotFound)
	api.AssertNotCalled(t, "SetCommentStatus", mock.Anything, mock.Anything)
}

func TestAuthorRequests_LoadKeepsPending(t *testing.T) {
	t.Parallel()

	api := &mockModeration{}
	api.On("ListAuthorRequests", mock.Anything).Return([]model.AuthorRequest{
		{ID: "r1", Status: model.RequestPending},
		{ID: "r2", Status: model.RequestApproved},
		{ID: "r3", Status: model.RequestPending},
		{ID: "r4", Status: model.RequestRejected},
	}, nil).Once()

	a := NewAuthorRequests(api, sessionWithRoles(t, model.RoleAdmin), nil, &recordingNotifier{}, testutil.MakeNoopLogger())
	require.NoError(t, a.Load(context.Background()))

	ids := make([]string, 0)
	for _, r := range a.List().Items() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r1", "r3"}, ids)
}

func TestAuthorRequests_Decide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		decide    func(a *AuthorRequests, ctx context.Context, id string) error
		status    model.RequestStatus
		callErr   error
		wantIDs   []string
		wantTitle string
	}{
		{
			name:      "approve removes on success",
			decide:    (*AuthorRequests).Approve,
			status:    model.RequestApproved,
			wantIDs:   []string{"r2"},
			wantTitle: "Request approved",
		},
		{
			name:      "reject removes on success",
			decide:    (*AuthorRequests).Reject,
			status:    model.RequestRejected,
			wantIDs:   []string{"r2"},
			wantTitle: "Request rejected",
		},
		{
			name:      "approve failure keeps request pending",
			decide:    (*AuthorRequests).Approve,
			status:    model.RequestApproved,
			callErr:   &model.NetworkError{Op: "decide", Err: errors.New("refused")},
			wantIDs:   []string{"r1", "r2"},
			wantTitle: failure.TitleConnectionFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			api := &mockModeration{}
			notifier := &recordingNotifier{}
			a := NewAuthorRequests(api, sessionWithRoles(t, model.RoleAdmin), nil, notifier, testutil.MakeNoopLogger())
			a.List().WithNormalizer(testNormalizer)
			a.List().Set([]model.AuthorRequest{
				{ID: "r1", Status: model.RequestPending},
				{ID: "r2", Status: model.RequestPending},
			})

			var statusDuringCall model.RequestStatus
			api.On("DecideAuthorRequest", mock.Anything, "r1", tt.status).Run(func(mock.Arguments) {
				r, _ := a.List().Get("r1")
				statusDuringCall = r.Status
			}).Return(tt.callErr).Once()

			err := tt.decide(a, ctx, "r1")
			if tt.callErr != nil {
				require.ErrorIs(t, err, tt.callErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.status, statusDuringCall)
			ids := make([]string, 0)
			for _, r := range a.List().Items() {
				ids = append(ids, r.ID)
				assert.Equal(t, model.RequestPending, r.Status)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTitle, notifier.last().Title)
			api.AssertExpectations(t)
		})
	}
}

func TestAuthorRequests_DocumentURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("links stored document", func(t *testing.T) {
		t.Parallel()

		linker := &mockLinker{}
		linker.On("Link", mock.Anything, "docs/r1.pdf").Return("https://files.example.com/docs/r1.pdf?sig=1", nil).Once()

		a := NewAuthorRequests(&mockModeration{}, sessionWithRoles(t, model.RoleAdmin), linker, &recordingNotifier{}, testutil.MakeNoopLogger())
		a.List().Set([]model.AuthorRequest{{ID: "r1", DocumentKey: "docs/r1.pdf", Status: model.RequestPending}})

		link, err := a.DocumentURL(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com/docs/r1.pdf?sig=1", link)
	})

	t.Run("request without document", func(t *testing.T) {
		t.Parallel()

		linker := &mockLinker{}
		a := NewAuthorRequests(&mockModeration{}, sessionWithRoles(t, model.RoleAdmin), linker, &recordingNotifier{}, testutil.MakeNoopLogger())
		a.List().Set([]model.AuthorRequest{{ID: "r1", Status: model.RequestPending}})

		_, err := a.DocumentURL(ctx, "r1")
		assert.ErrorIs(t, err, model.ErrNotFound)
		linker.AssertNotCalled(t, "Link", mock.Anything, mock.Anything)
	})

	t.Run("storage disabled", func(t *testing.T) {
		t.Parallel()

		a := NewAuthorRequests(&mockModeration{}, sessionWithRoles(t, model.RoleAdmin), nil, &recordingNotifier{}, testutil.MakeNoopLogger())

		_, err := a.DocumentURL(ctx, "r1")
		assert.ErrorIs(t, err, model.ErrDocumentsDisabled)
	})

	t.Run("linker failure", func(t *testing.T) {
		t.Parallel()

		linkErr := errors.New("bucket missing")
		linker := &mockLinker{}
		linker.On("Link", mock.Anything, "docs/r1.pdf").Return("", linkErr).Once()

		a := NewAuthorRequests(&mockModeration{}, sessionWithRoles(t, model.RoleAdmin), linker, &recordingNotifier{}, testutil.MakeNoopLogger())
		a.List().Set([]model.AuthorRequest{{ID: "r1", DocumentKey: "docs/r1.pdf", Status: model.RequestPending}})

		_, err := a.DocumentURL(ctx, "r1")
		assert.ErrorIs(t, err, linkErr)
	})
}
