// Package policy implements the access checks consulted before every mutating
// catalog or review operation. Checks are pure functions over the request
// description; handlers translate the sentinel errors into HTTP statuses.
package policy

import "errors"

var (
	// ErrAuthRequired denies a request with no authenticated actor.
	ErrAuthRequired = errors.New("authentication required")
	// ErrForbidden denies an authenticated actor that lacks the required
	// ownership or role.
	ErrForbidden = errors.New("permission denied")
)

// Request describes a single authorization decision.
type Request struct {
	SafeMethod bool   // True for read-only operations (list/retrieve)
	ActorID    uint   // ID of the acting user, 0 when anonymous
	ActorRole  string // Role of the acting user, empty when anonymous
	OwnerID    uint   // ID of the target object's owner, 0 when not object-scoped
}

// Check evaluates one policy rule. A nil return allows the request.
type Check func(Request) error

// Authenticated denies anonymous actors regardless of method.
func Authenticated(r Request) error {
	if r.ActorID == 0 {
		return ErrAuthRequired
	}
	return nil
}

// OwnerOrReadOnly allows safe methods for anyone and mutations only for the
// owner of the target object.
func OwnerOrReadOnly(r Request) error {
	if r.SafeMethod {
		return nil
	}
	if r.ActorID != 0 && r.ActorID == r.OwnerID {
		return nil
	}
	return ErrForbidden
}

// AdminOrReadOnly allows safe methods for anyone and mutations only for actors
// holding the given admin role.
func AdminOrReadOnly(adminRole string) Check {
	return func(r Request) error {
		if r.SafeMethod {
			return nil
		}
		if r.ActorRole != "" && r.ActorRole == adminRole {
			return nil
		}
		return ErrForbidden
	}
}

// Evaluate runs checks left to right and stops at the first deny. Resource
// level invariants (existence, uniqueness, immutable fields) are enforced by
// the handlers after the policy checks pass.
func Evaluate(r Request, checks ...Check) error {
	for _, check := range checks {
		if err := check(r); err != nil {
			return err
		}
	}
	return nil
}

// SafeMethod reports whether an HTTP method is read-only.
func SafeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}
