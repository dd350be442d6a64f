package middleware

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"github.com/dtroode/inkdesk/internal/logger"
)

// NewLogging returns a unary client interceptor that logs every finished
// call with its method, duration and status code.
func NewLogging(l *logger.Logger) grpc.UnaryClientInterceptor {
	return logging.UnaryClientInterceptor(l.GRPC(),
		logging.WithLogOnEvents(logging.FinishCall),
		logging.WithLevels(codeToLevel),
	)
}

func codeToLevel(code codes.Code) logging.Level {
	switch code {
	case codes.OK:
		return logging.LevelDebug
	case codes.Unauthenticated, codes.PermissionDenied, codes.NotFound,
		codes.InvalidArgument, codes.AlreadyExists, codes.FailedPrecondition, codes.Canceled:
		return logging.LevelInfo
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return logging.LevelWarn
	default:
		return logging.LevelError
	}
}
