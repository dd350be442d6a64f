package failure

import (
	"errors"

	"github.com/dtroode/inkdesk/internal/model"
)

// Kind is the recovery class of an error.
type Kind string

const (
	KindAuth           Kind = "auth"
	KindSessionExpired Kind = "session_expired"
	KindNetwork        Kind = "network"
	KindServer         Kind = "server"
	KindValidation     Kind = "validation"
	KindUnknown        Kind = "unknown"
)

// Classify reports the recovery class of err.
func Classify(err error) Kind {
	if errors.Is(err, model.ErrSessionExpired) {
		return KindSessionExpired
	}
	if apiErr, ok := responseError(err); ok {
		switch {
		case apiErr.Status == 401 || apiErr.Status == 403:
			return KindAuth
		case apiErr.Status >= 500:
			return KindServer
		case apiErr.Status >= 400:
			return KindValidation
		}
		return KindUnknown
	}
	if isNetworkFailure(err) {
		return KindNetwork
	}
	return KindUnknown
}

// Retryable reports whether the user can sensibly retry the action.
func (k Kind) Retryable() bool {
	switch k {
	case KindAuth, KindNetwork, KindServer:
		return true
	}
	return false
}
