package model

// Status is the state of the session controller.
type Status string

const (
	// StatusAnonymous means no user is signed in.
	StatusAnonymous Status = "anonymous"
	// StatusLoading means a login or restore is in flight.
	StatusLoading Status = "loading"
	// StatusAuthenticated means User holds the signed-in account.
	StatusAuthenticated Status = "authenticated"
	// StatusError means the last login failed; ErrorMessage says why.
	StatusError Status = "error"
)

// Session is a snapshot of the session controller state.
//
// User is non-nil only in StatusAuthenticated and ErrorMessage is set only in
// StatusError, so at most one of loading, authenticated and error holds.
type Session struct {
	Status       Status
	User         *User
	ErrorMessage string
}

// Loading reports whether a login or restore is in flight.
func (s Session) Loading() bool {
	return s.Status == StatusLoading
}

// Error reports whether the last login failed.
func (s Session) Error() bool {
	return s.Status == StatusError
}

// Authenticated reports whether a user is signed in.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil
}

// IsAdmin reports whether the signed-in user holds RoleAdmin.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.User.Roles.IsAdmin()
}

// IsAuthor reports whether the signed-in user holds RoleAuthor.
func (s Session) IsAuthor() bool {
	return s.Authenticated() && s.User.Roles.IsAuthor()
}
