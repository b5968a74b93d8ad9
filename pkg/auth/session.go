// Package auth carries the caller's session explicitly through request
// contexts and issues the signed tokens sessions are restored from.
package auth

import (
	"context"
	"time"
)

// State is where a session is in its lifecycle:
// Anonymous -> Pending -> Authenticated | Unauthenticated.
type State int

const (
	Anonymous State = iota
	Pending
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Pending:
		return "pending"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

type Session struct {
	State     State     `json:"-"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.State == Authenticated && s.UserID != ""
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, or an Anonymous one.
func FromContext(ctx context.Context) Session {
	s, ok := ctx.Value(sessionKey{}).(Session)
	if !ok {
		return Session{State: Anonymous}
	}
	return s
}
