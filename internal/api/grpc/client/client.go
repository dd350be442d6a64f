// Package client is the gRPC transport of the platform API.
package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/inkdesk/internal/api/grpc/middleware"
	"github.com/dtroode/inkdesk/internal/api/grpc/security"
	"github.com/dtroode/inkdesk/internal/failure"
	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
)

var (
	_ model.AuthService       = (*Client)(nil)
	_ model.TokenRevoker      = (*Client)(nil)
	_ model.ModerationService = (*Client)(nil)
)

const (
	MethodLogin               = "/inkdesk.v1.Auth/Login"
	MethodCurrentUser         = "/inkdesk.v1.Auth/CurrentUser"
	MethodRevokeToken         = "/inkdesk.v1.Auth/RevokeToken"
	MethodListComments        = "/inkdesk.v1.Moderation/ListComments"
	MethodSetCommentStatus    = "/inkdesk.v1.Moderation/SetCommentStatus"
	MethodListAuthorRequests  = "/inkdesk.v1.Moderation/ListAuthorRequests"
	MethodDecideAuthorRequest = "/inkdesk.v1.Moderation/DecideAuthorRequest"
)

// Client calls the platform API over a gRPC connection.
type Client struct {
	conn   *grpc.ClientConn
	logger *logger.Logger
}

// Dial connects to addr. Every call except Login carries the bearer token
// from tokens.
func Dial(addr string, layer security.Layer, tokens model.TokenSource, logger *logger.Logger, opts ...grpc.DialOption) (*Client, error) {
	creds, err := layer.DialOption()
	if err != nil {
		return nil, err
	}

	authenticate := middleware.NewAuthenticate(tokens)
	opts = append([]grpc.DialOption{
		creds,
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithChainUnaryInterceptor(
			middleware.NewLogging(logger),
			selector.UnaryClientInterceptor(authenticate.HandleGRPC, selector.MatchFunc(requiresToken)),
		),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}

	return New(conn, logger), nil
}

// New wraps an existing connection.
func New(conn *grpc.ClientConn, logger *logger.Logger) *Client {
	return &Client{conn: conn, logger: logger}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func requiresToken(_ context.Context, cm interceptors.CallMeta) bool {
	return !strings.HasSuffix(cm.FullMethod(), "/Login")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type revokeRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type idRequest struct {
	ID string `json:"id"`
}

type decideRequest struct {
	ID     string              `json:"id"`
	Status model.RequestStatus `json:"status"`
}

type empty struct{}

type commentList struct {
	Comments []model.Comment `json:"comments"`
}

type authorRequestList struct {
	Requests []model.AuthorRequest `json:"requests"`
}

func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResult, error) {
	var result model.LoginResult
	if err := c.invoke(ctx, MethodLogin, loginRequest{Email: email, Password: password}, &result); err != nil {
		return model.LoginResult{}, err
	}
	return result, nil
}

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	if err := c.invoke(ctx, MethodCurrentUser, empty{}, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (c *Client) RevokeToken(ctx context.Context, refreshToken string) error {
	return c.invoke(ctx, MethodRevokeToken, revokeRequest{RefreshToken: refreshToken}, &empty{})
}

func (c *Client) ListComments(ctx context.Context) ([]model.Comment, error) {
	var resp commentList
	if err := c.invoke(ctx, MethodListComments, empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

func (c *Client) SetCommentStatus(ctx context.Context, id string) error {
	return c.invoke(ctx, MethodSetCommentStatus, idRequest{ID: id}, &empty{})
}

func (c *Client) ListAuthorRequests(ctx context.Context) ([]model.AuthorRequest, error) {
	var resp authorRequestList
	if err := c.invoke(ctx, MethodListAuthorRequests, empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

func (c *Client) DecideAuthorRequest(ctx context.Context, id string, status model.RequestStatus) error {
	if !status.Valid() || status == model.RequestPending {
		return fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return c.invoke(ctx, MethodDecideAuthorRequest, decideRequest{ID: id, Status: status}, &empty{})
}

func (c *Client) invoke(ctx context.Context, method string, req, reply any) error {
	return convertError(method, c.conn.Invoke(ctx, method, req, reply))
}

// convertError maps a call error to the transport-neutral shapes: calls
// that got no answer become *model.NetworkError, status errors become
// *model.APIError with the matching HTTP status.
func convertError(method string, err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return &model.NetworkError{Op: method, Err: err}
	}
	return &model.APIError{Status: failure.HTTPStatus(st.Code()), Message: st.Message()}
}
