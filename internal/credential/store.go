// Package credential keeps the access/refresh token pair in exactly one of
// two durability tiers.
package credential

import (
	"context"
	"sync"

	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
)

var _ model.TokenSource = (*Store)(nil)

var tokenKeys = []string{model.KeyAccessToken, model.KeyRefreshToken}

// Store persists the token pair in a persistent or an ephemeral tier, never
// both. Tier failures are logged and otherwise treated as success or absence.
type Store struct {
	mu         sync.Mutex
	persistent model.Tier
	ephemeral  model.Tier
	logger     *logger.Logger
}

func NewStore(persistent, ephemeral model.Tier, logger *logger.Logger) *Store {
	return &Store{
		persistent: persistent,
		ephemeral:  ephemeral,
		logger:     logger,
	}
}

// SetTokens writes both tokens to the persistent tier when remember is set,
// otherwise to the ephemeral tier. The other tier is cleared first.
func (s *Store) SetTokens(ctx context.Context, access, refresh string, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, other := s.ephemeral, s.persistent
	if remember {
		target, other = s.persistent, s.ephemeral
	}

	s.delete(ctx, other)

	err := target.SetAll(ctx, map[string]string{
		model.KeyAccessToken:  access,
		model.KeyRefreshToken: refresh,
	})
	if err != nil {
		s.logger.Error("Credential store: failed to write tokens",
			"tier", target.Name(),
			"error", err.Error())
		return
	}

	s.logger.Debug("Credential store: tokens written",
		"tier", target.Name())
}

// GetToken returns the access token or "" when no tier holds one.
func (s *Store) GetToken(ctx context.Context) string {
	return s.get(ctx, model.KeyAccessToken)
}

// GetRefreshToken returns the refresh token or "" when no tier holds one.
func (s *Store) GetRefreshToken(ctx context.Context) string {
	return s.get(ctx, model.KeyRefreshToken)
}

// HasToken reports whether an access token is stored.
func (s *Store) HasToken(ctx context.Context) bool {
	return s.GetToken(ctx) != ""
}

// ClearTokens removes both tokens from both tiers.
func (s *Store) ClearTokens(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delete(ctx, s.persistent)
	s.delete(ctx, s.ephemeral)
}

func (s *Store) get(ctx context.Context, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tier := range []model.Tier{s.persistent, s.ephemeral} {
		v, ok, err := tier.Get(ctx, key)
		if err != nil {
			s.logger.Warn("Credential store: failed to read token",
				"tier", tier.Name(),
				"key", key,
				"error", err.Error())
			continue
		}
		if ok && v != "" {
			return v
		}
	}
	return ""
}

func (s *Store) delete(ctx context.Context, tier model.Tier) {
	if err := tier.Delete(ctx, tokenKeys...); err != nil {
		s.logger.Error("Credential store: failed to clear tokens",
			"tier", tier.Name(),
			"error", err.Error())
	}
}
