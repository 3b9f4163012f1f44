package directline

import "sync"

// CredentialGate holds the current bearer credential: the caller-supplied
// long-lived secret and, while valid, the short-lived conversation token
// that supersedes it. Pure state holder; no network I/O happens here.
type CredentialGate struct {
	mu     sync.Mutex
	secret string
	token  string
}

// NewCredentialGate creates a gate around the configured secret.
func NewCredentialGate(secret string) *CredentialGate {
	return &CredentialGate{secret: secret}
}

// Authorization returns the current bearer header value. The session token
// wins whenever it is set; otherwise the secret is used.
func (g *CredentialGate) Authorization() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token != "" {
		return "Bearer " + g.token
	}
	return "Bearer " + g.secret
}

// SetToken installs a fresh conversation token.
func (g *CredentialGate) SetToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// InvalidateToken clears the token so subsequent requests fall back to the
// secret. Called on a 403 before the single retry.
func (g *CredentialGate) InvalidateToken() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
}

// HasSecret reports whether a fallback secret is configured. The 403 retry
// only fires when there is a secret to fall back to.
func (g *CredentialGate) HasSecret() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.secret != ""
}

// Empty reports whether no usable credential exists at all.
func (g *CredentialGate) Empty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.secret == "" && g.token == ""
}
