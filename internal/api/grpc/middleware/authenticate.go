package middleware

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/inkdesk/internal/model"
)

// Authenticate attaches the stored bearer token to outgoing calls.
type Authenticate struct {
	tokens model.TokenSource
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens model.TokenSource) *Authenticate {
	return &Authenticate{tokens: tokens}
}

// HandleGRPC is a unary client interceptor. Calls go out unchanged when no
// token is stored.
func (m *Authenticate) HandleGRPC(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := m.tokens.GetToken(ctx); token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}
