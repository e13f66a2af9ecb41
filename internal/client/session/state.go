package session

// State is the lifecycle position of the session:
// NoSession, Authenticating, Authenticated, then Expired or LoggedOut.
type State int

const (
	NoSession State = iota
	Authenticating
	Authenticated
	Expired
	LoggedOut
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	case LoggedOut:
		return "logged_out"
	}
	return "unknown"
}
