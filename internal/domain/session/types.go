package session

import "errors"

// ErrAuthRequired is returned when an operation that needs a session is
// attempted while anonymous.
var ErrAuthRequired = errors.New("authentication required")

// State is the lifecycle state of the session manager.
// The constructor's load phase is internal; by the time a Manager is
// returned it is either Anonymous or Authenticated.
type State int

const (
	// StateAnonymous means no user is signed in.
	StateAnonymous State = iota
	// StateAuthenticated means a user and bearer token are held.
	StateAuthenticated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// User is the authenticated user profile as returned by the backend.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"nom"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// authResponse is the combined login/register response: the bearer token
// plus the user fields, flattened into one object.
type authResponse struct {
	Token string `json:"token"`
	Type  string `json:"type"`
	User
}

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"motDePasse"`
}

// registerRequest is the POST /auth/register body.
type registerRequest struct {
	Name     string `json:"nom"`
	Email    string `json:"email"`
	Password string `json:"motDePasse"`
}
