// Package policy holds the one ownership rule every resource operation goes
// through: the caller must be signed in and must own the resource.
package policy

import (
	"context"
	"reflect"

	"finance_tracker/internal/domain"
)

// Op is the kind of operation being authorized
type Op string

const (
	OpRead   Op = "read"
	OpList   Op = "list"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Session identifies the caller of a request. The zero value is anonymous.
type Session struct {
	UserID string // Empty when anonymous
	Email  string // From the access token claims
}

// Authenticated reports whether the session belongs to a signed-in user
func (s Session) Authenticated() bool { return s.UserID != "" }

// Owned is implemented by every resource that has a single owning user
type Owned interface {
	OwnerID() string
}

// Authorize checks that s may perform op on a resource owned by ownerID. For
// list and create operations ownerID is the scope the caller asked for.
func Authorize(s Session, op Op, ownerID string) error {
	if !s.Authenticated() {
		return domain.Unauthenticated("not authenticated") // Anonymous callers first
	}
	if ownerID != s.UserID {
		return domain.Forbidden("not authorized to %s this resource", op)
	}
	return nil
}

// Guard runs Authorize on the result of a lookup. A nil resource becomes
// NotFound, lookup errors pass through untouched.
func Guard[T Owned](s Session, op Op, kind string, res T, err error) (T, error) {
	var zero T
	if !s.Authenticated() {
		return zero, domain.Unauthenticated("not authenticated")
	}
	if err != nil {
		return zero, err
	}
	if isNil(res) {
		return zero, domain.NotFound("%s not found", kind) // Missing before foreign
	}
	if err := Authorize(s, op, res.OwnerID()); err != nil {
		return zero, err
	}
	return res, nil
}

func isNil(v Owned) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || (rv.Kind() == reflect.Ptr && rv.IsNil())
}

type sessionKey struct{}

// WithSession stores s in ctx
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session stored in ctx, or an anonymous one
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}
