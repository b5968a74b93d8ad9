package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wadjakorntonsri/trimlink/pkg/auth"
)

const (
	tokenCookie = "auth_token"
	stateCookie = "oauthstate"

	// pendingWindow is how long after leaving for Google a sign-in still
	// counts as in flight. Past it the attempt is treated as abandoned.
	pendingWindow = 30 * time.Second
)

// Gate guards protected routes. It resolves the caller's session, stores it
// in the request context and decides what the caller sees.
type Gate struct {
	tokens *auth.Tokens
	now    func() time.Time
}

func NewGate(tokens *auth.Tokens) *Gate {
	return &Gate{tokens: tokens, now: time.Now}
}

// Resolve works out the session for r without side effects.
func (g *Gate) Resolve(r *http.Request) auth.Session {
	if raw := bearerToken(r); raw != "" {
		s, err := g.tokens.Verify(raw)
		if err != nil {
			return auth.Session{State: auth.Unauthenticated}
		}
		return s
	}
	if c, err := r.Cookie(stateCookie); err == nil {
		if _, issued, ok := parseState(c.Value); ok && g.now().Sub(issued) < pendingWindow {
			return auth.Session{State: auth.Pending}
		}
	}
	return auth.Session{State: auth.Unauthenticated}
}

// stateValue encodes an OAuth state together with the time the sign-in started.
func stateValue(state string, issued time.Time) string {
	return state + "." + strconv.FormatInt(issued.Unix(), 10)
}

func parseState(v string) (state string, issued time.Time, ok bool) {
	i := strings.LastIndexByte(v, '.')
	if i <= 0 {
		return "", time.Time{}, false
	}
	sec, err := strconv.ParseInt(v[i+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, false
	}
	return v[:i], time.Unix(sec, 0), true
}

// Protect renders next for authenticated callers, a loading page while a
// sign-in is pending, and otherwise sends browsers to the auth entry point.
func (g *Gate) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := g.Resolve(r)
		r = r.WithContext(auth.WithSession(r.Context(), s))

		switch {
		case s.Authenticated():
			next.ServeHTTP(w, r)
		case isAPIRequest(r):
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		case s.State == auth.Pending:
			renderPending(w, r)
		default:
			http.Redirect(w, r, "/auth?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusTemporaryRedirect)
		}
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// safeNext keeps post-login redirects on this site.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
