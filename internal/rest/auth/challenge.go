package auth

import (
	"errors"
	"strings"
	"sync"
)

// MaxChallenges is the number of 401 challenges answered per lifecycle
const MaxChallenges = 1

var ErrExhausted = errors.New("authentication exhausted: credentials rejected")

// Credentials holds HTTP Basic credentials. Both fields may be empty.
type Credentials struct {
	Username string
	Password string
}

// IsAnonymous reports whether no credentials are configured
func (c Credentials) IsAnonymous() bool {
	return c.Username == "" && c.Password == ""
}

// Challenge is a parsed WWW-Authenticate Basic challenge
type Challenge struct {
	Scheme string
	Realm  string
}

// ParseChallenge finds the Basic challenge in a WWW-Authenticate value
func ParseChallenge(header string) (Challenge, bool) {
	rest := strings.TrimSpace(header)
	for rest != "" {
		scheme, params, _ := strings.Cut(rest, " ")
		if !strings.EqualFold(scheme, "basic") {
			idx := nextScheme(params)
			if idx < 0 {
				return Challenge{}, false
			}
			rest = strings.TrimSpace(params[idx:])
			continue
		}
		return Challenge{Scheme: "Basic", Realm: realmOf(params)}, true
	}
	return Challenge{}, false
}

// nextScheme returns the offset of the next "Basic" scheme token in s
func nextScheme(s string) int {
	lower := strings.ToLower(s)
	for i := 0; i < len(lower); i++ {
		if !strings.HasPrefix(lower[i:], "basic") {
			continue
		}
		if i == 0 || lower[i-1] == ' ' || lower[i-1] == ',' {
			return i
		}
	}
	return -1
}

func realmOf(params string) string {
	lower := strings.ToLower(params)
	idx := strings.Index(lower, "realm=")
	if idx < 0 {
		return ""
	}
	v := params[idx+len("realm="):]
	if strings.HasPrefix(v, `"`) {
		v = v[1:]
		if end := strings.IndexByte(v, '"'); end >= 0 {
			return v[:end]
		}
		return v
	}
	if end := strings.IndexAny(v, ", "); end >= 0 {
		return v[:end]
	}
	return v
}

// State of a Handler
type State int

const (
	StateIdle State = iota
	StateChallenged
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChallenged:
		return "challenged"
	default:
		return "unknown"
	}
}

// Handler answers Basic challenges for a single request lifecycle.
// The first challenge gets the stored credentials; any later challenge
// returns ErrExhausted so the caller aborts instead of looping on 401s.
type Handler struct {
	creds Credentials

	mu       sync.Mutex
	attempts int
}

// NewHandler creates an idle handler holding creds
func NewHandler(creds Credentials) *Handler {
	return &Handler{creds: creds}
}

// Respond handles one challenge
func (h *Handler) Respond(_ Challenge) (Credentials, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.attempts++
	if h.attempts > MaxChallenges {
		return Credentials{}, ErrExhausted
	}
	return h.creds, nil
}

// Attempts returns how many challenges were received
func (h *Handler) Attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts
}

// State returns the current state
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.attempts == 0 {
		return StateIdle
	}
	return StateChallenged
}

// Reset returns the handler to Idle
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts = 0
}
