package domain

import (
	"errors"
	"sort"
	"strings"
)

// Kind classifies a failure independently of the store that produced it.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindStorage      Kind = "storage"
	KindInsert       Kind = "insert"
	KindDelete       Kind = "delete"
	KindLoad         Kind = "load"
	KindRender       Kind = "render"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
)

// Error is returned by every repository and service operation. Message is
// safe to show to end users; Err holds the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrStorage      = &Error{Kind: KindStorage}
	ErrInsert       = &Error{Kind: KindInsert}
	ErrDelete       = &Error{Kind: KindDelete}
	ErrLoad         = &Error{Kind: KindLoad}
	ErrRender       = &Error{Kind: KindRender}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// FieldErrors maps a form field to the message describing why it was rejected.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(f))
	for _, k := range fields {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (f FieldErrors) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindValidation
}

// KindOf returns the Kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return KindValidation
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// PublicMessage returns the user-facing text for err.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return "Something went wrong"
}
