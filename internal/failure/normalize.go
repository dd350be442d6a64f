// Package failure turns errors of any shape into a user-facing title and
// description.
package failure

import (
	"errors"
	"net"
	"net/url"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/inkdesk/internal/model"
)

const (
	TitleConnectionFailed = "Connection Failed"

	DescriptionInvalidCredentials = "Invalid credentials. Please check your email and password and try again."
	DescriptionNotFound           = "The requested resource was not found."
	DescriptionServerError        = "Server error. Please try again later."
	DescriptionValidation         = "The request was rejected. Please check your input and try again."
	DescriptionOffline            = "No internet connection. Please check your network and try again."
	DescriptionUnreachable        = "Unable to reach the server. Please try again later."
	DescriptionUnexpected         = "An unexpected error occurred. Please try again."
)

// Message is a normalized, presentable error.
type Message struct {
	Title       string
	Description string
}

// Reason is a bare message used as the title as-is.
type Reason string

func (r Reason) Error() string {
	return string(r)
}

// Normalizer classifies errors. Online reports host connectivity.
type Normalizer struct {
	Online func() bool
}

// DefaultNormalizer probes the host network interfaces for connectivity.
var DefaultNormalizer = Normalizer{Online: InterfacesUp}

// Normalize classifies err with DefaultNormalizer.
func Normalize(err error, fallback string) Message {
	return DefaultNormalizer.Normalize(err, fallback)
}

// Normalize maps err to a Message. The first matching rule wins: server
// response, missing response, Reason, anything else.
func (n Normalizer) Normalize(err error, fallback string) Message {
	if apiErr, ok := responseError(err); ok {
		title := apiErr.Message
		if title == "" {
			title = apiErr.Err
		}
		if title == "" {
			title = fallback
		}
		return Message{Title: title, Description: statusDescription(apiErr.Status)}
	}

	if isNetworkFailure(err) {
		description := DescriptionUnreachable
		if n.Online != nil && !n.Online() {
			description = DescriptionOffline
		}
		return Message{Title: TitleConnectionFailed, Description: description}
	}

	var reason Reason
	if errors.As(err, &reason) {
		return Message{Title: string(reason), Description: DescriptionUnexpected}
	}

	title := fallback
	if err != nil && err.Error() != "" {
		title = err.Error()
	}
	return Message{Title: title, Description: DescriptionUnexpected}
}

func statusDescription(code int) string {
	switch {
	case code == 401 || code == 403:
		return DescriptionInvalidCredentials
	case code == 404:
		return DescriptionNotFound
	case code >= 500:
		return DescriptionServerError
	case code >= 400:
		return DescriptionValidation
	default:
		return DescriptionUnexpected
	}
}

// responseError extracts a server response from err. gRPC status errors
// count as responses unless they signal a transport failure.
func responseError(err error) (*model.APIError, bool) {
	if err == nil {
		return nil, false
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK || isTransportCode(st.Code()) {
		return nil, false
	}
	return &model.APIError{Status: HTTPStatus(st.Code()), Message: st.Message()}, true
}

func isNetworkFailure(err error) bool {
	if err == nil {
		return false
	}

	var netErr *model.NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var opErr net.Error
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	if st, ok := status.FromError(err); ok && isTransportCode(st.Code()) {
		return true
	}

	return false
}

func isTransportCode(code codes.Code) bool {
	return code == codes.Unavailable || code == codes.DeadlineExceeded
}

// HTTPStatus maps a gRPC code to the HTTP status a REST server would send.
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return 200
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return 400
	case codes.Unauthenticated:
		return 401
	case codes.PermissionDenied:
		return 403
	case codes.NotFound:
		return 404
	case codes.AlreadyExists, codes.Aborted:
		return 409
	case codes.ResourceExhausted:
		return 429
	case codes.Canceled:
		return 499
	case codes.Unimplemented:
		return 501
	case codes.Unavailable:
		return 503
	case codes.DeadlineExceeded:
		return 504
	default:
		return 500
	}
}

// InterfacesUp reports whether any non-loopback network interface is up.
func InterfacesUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return true
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp != 0 {
			return true
		}
	}
	return false
}
