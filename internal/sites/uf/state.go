package uf

// AuthState is where a login plugin is in the sign-in handshake
type AuthState int

const (
	LoggedOut AuthState = iota
	Authenticating
	LoggedIn
	Failed
)

// String returns the string representation of the state
func (s AuthState) String() string {
	switch s {
	case LoggedOut:
		return "logged-out"
	case Authenticating:
		return "authenticating"
	case LoggedIn:
		return "logged-in"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
