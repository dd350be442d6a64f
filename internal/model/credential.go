package model

import "context"

// Storage keys used by every durability tier.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// Tier namespaces.
const (
	NamespaceDurable = "durable"
	NamespaceSession = "session"
)

// Tier is one durability tier of the credential store: a key/value
// namespace that is either persistent or session-scoped.
type Tier interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetAll writes every pair or none of them.
	SetAll(ctx context.Context, values map[string]string) error
	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Name identifies the tier in logs.
	Name() string
}
