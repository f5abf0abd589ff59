package session

import "time"

// Status is the session state. Transitions happen only inside Store
// operations.
type Status string

const (
	// StatusAnonymous is the initial state: no credentials, no user.
	StatusAnonymous Status = "anonymous"
	// StatusAuthenticating is entered while a bootstrap profile fetch
	// validates previously stored credentials.
	StatusAuthenticating Status = "authenticating"
	// StatusAuthenticated means a user and credential pair are present.
	StatusAuthenticated Status = "authenticated"
	// StatusRefreshing is entered while the refresh credential is being
	// exchanged for a new access credential.
	StatusRefreshing Status = "refreshing"
	// StatusLoggedOut is reached by explicit logout or a failed refresh.
	// Functionally equivalent to anonymous; a new login leaves it.
	StatusLoggedOut Status = "logged_out"
)

// User is the profile document supplied by the backend. The session layer
// stores it verbatim and does not interpret it beyond identity display.
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsStaff     bool       `json:"is_staff,omitempty"`
	IsSuperuser bool       `json:"is_superuser,omitempty"`
	DateJoined  *time.Time `json:"date_joined,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// RegisterParams are the fields required by the registration endpoint.
type RegisterParams struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AuthError is a rejection reported by an auth endpoint (bad credentials,
// duplicate username, and so on). It is non-fatal to the session.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}
