package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtroode/inkdesk/internal/credential"
	"github.com/dtroode/inkdesk/internal/failure"
	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
	"github.com/dtroode/inkdesk/internal/token"
)

const loginFallback = "Login failed"

// Session owns the current user. State changes only through Login, Restore
// and Logout; readers take snapshots or subscribe.
type Session struct {
	auth       model.AuthService
	store      *credential.Store
	inspector  *token.Inspector
	normalizer failure.Normalizer
	logger     *logger.Logger

	mu          sync.Mutex
	state       model.Session
	epoch       uint64
	subscribers map[int]func(model.Session)
	nextSub     int
}

func NewSession(
	auth model.AuthService,
	store *credential.Store,
	inspector *token.Inspector,
	logger *logger.Logger,
) *Session {
	return &Session{
		auth:        auth,
		store:       store,
		inspector:   inspector,
		normalizer:  failure.DefaultNormalizer,
		logger:      logger,
		state:       model.Session{Status: model.StatusAnonymous},
		subscribers: make(map[int]func(model.Session)),
	}
}

// WithNormalizer replaces the error normalizer used for login failures.
func (s *Session) WithNormalizer(n failure.Normalizer) *Session {
	s.normalizer = n
	return s
}

// State returns the current snapshot.
func (s *Session) State() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// User returns the signed-in user or nil.
func (s *Session) User() *model.User {
	return s.State().User
}

// IsAdmin reports whether the signed-in user is an admin.
func (s *Session) IsAdmin() bool {
	return s.State().IsAdmin()
}

// IsAuthor reports whether the signed-in user is an author.
func (s *Session) IsAuthor() bool {
	return s.State().IsAuthor()
}

// RequireRole guards role-gated actions.
func (s *Session) RequireRole(role model.Role) error {
	st := s.State()
	if !st.Authenticated() {
		return model.ErrUnauthenticated
	}
	if !st.User.Roles.Has(role) {
		return model.ErrForbidden
	}
	return nil
}

// Subscribe registers fn to receive every new state. The returned func
// unsubscribes.
func (s *Session) Subscribe(fn func(model.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Login authenticates and stores the token pair in the tier selected by
// remember. On failure the state carries the normalized message and the
// credential store is left untouched. A result that arrives after a newer
// Login, Restore or Logout is dropped and reported as
// model.ErrSessionSuperseded.
func (s *Session) Login(ctx context.Context, email, password string, remember bool) error {
	s.logger.Debug("Session: starting login",
		"email", email,
		"remember", remember)

	epoch := s.begin(model.Session{Status: model.StatusLoading})

	result, err := s.auth.Login(ctx, email, password)
	if err != nil {
		msg := s.normalizer.Normalize(err, loginFallback)
		if msg.Title == "" {
			msg.Title = loginFallback
		}
		s.commit(epoch, model.Session{Status: model.StatusError, ErrorMessage: msg.Title}, nil)

		s.logger.Info("Session: login failed",
			"email", email,
			"kind", string(failure.Classify(err)),
			"error", err.Error())
		return fmt.Errorf("login: %w", err)
	}

	user := result.User
	applied := s.commit(epoch, model.Session{Status: model.StatusAuthenticated, User: &user}, func() {
		s.store.SetTokens(ctx, result.AccessToken, result.RefreshToken, remember)
	})
	if !applied {
		s.logger.Debug("Session: login result superseded",
			"email", email)
		return fmt.Errorf("login: %w", model.ErrSessionSuperseded)
	}

	s.logger.Info("Session: login completed",
		"user_id", user.ID,
		"roles", user.Roles.List())
	return nil
}

// Restore re-establishes the session from a stored token. Any failure clears
// the stored credentials and leaves the session anonymous.
func (s *Session) Restore(ctx context.Context) error {
	access := s.store.GetToken(ctx)
	if access == "" {
		s.begin(model.Session{Status: model.StatusAnonymous})
		s.logger.Debug("Session: no stored token")
		return model.ErrNoStoredToken
	}

	if s.inspector != nil && s.inspector.Expired(access) {
		s.store.ClearTokens(ctx)
		s.begin(model.Session{Status: model.StatusAnonymous})
		s.logger.Info("Session: stored token expired")
		return fmt.Errorf("%w: access token expired", model.ErrSessionExpired)
	}

	epoch := s.begin(model.Session{Status: model.StatusLoading})

	user, err := s.auth.CurrentUser(ctx)
	if err != nil {
		s.commit(epoch, model.Session{Status: model.StatusAnonymous}, func() {
			s.store.ClearTokens(ctx)
		})
		s.logger.Info("Session: restore failed",
			"error", err.Error())
		return fmt.Errorf("%w: %w", model.ErrSessionExpired, err)
	}

	if !s.commit(epoch, model.Session{Status: model.StatusAuthenticated, User: &user}, nil) {
		s.logger.Debug("Session: restore result superseded")
		return fmt.Errorf("restore: %w", model.ErrSessionSuperseded)
	}

	s.logger.Info("Session: restored",
		"user_id", user.ID)
	return nil
}

// Logout revokes the refresh token when the server supports it, clears the
// credentials and leaves the session anonymous. It cannot fail.
func (s *Session) Logout(ctx context.Context) {
	if revoker, ok := s.auth.(model.TokenRevoker); ok {
		if refresh := s.store.GetRefreshToken(ctx); refresh != "" {
			if err := revoker.RevokeToken(ctx, refresh); err != nil {
				s.logger.Warn("Session: failed to revoke refresh token",
					"error", err.Error())
			}
		}
	}

	s.store.ClearTokens(ctx)
	s.begin(model.Session{Status: model.StatusAnonymous})

	s.logger.Info("Session: logged out")
}

// begin moves to next and starts a new epoch. Results of operations started
// in earlier epochs are dropped by commit.
func (s *Session) begin(next model.Session) uint64 {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.state = next
	subs := s.subscriberList()
	s.mu.Unlock()

	publish(subs, next)
	return epoch
}

// commit moves to next if epoch is still current, running effect first.
// It reports whether the state was applied.
func (s *Session) commit(epoch uint64, next model.Session, effect func()) bool {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return false
	}
	if effect != nil {
		effect()
	}
	s.state = next
	subs := s.subscriberList()
	s.mu.Unlock()

	publish(subs, next)
	return true
}

func (s *Session) subscriberList() []func(model.Session) {
	subs := make([]func(model.Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func publish(subs []func(model.Session), state model.Session) {
	for _, fn := range subs {
		fn(state)
	}
}
