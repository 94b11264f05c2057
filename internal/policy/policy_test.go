package policy_test

import (
	"errors"
	"testing"

	"book_review_api/internal/policy"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticated(t *testing.T) {
	assert.ErrorIs(t, policy.Authenticated(policy.Request{}), policy.ErrAuthRequired)
	assert.NoError(t, policy.Authenticated(policy.Request{ActorID: 7}))
}

func TestOwnerOrReadOnly(t *testing.T) {
	tests := []struct {
		name string
		req  policy.Request
		want error
	}{
		{"safe method always allowed", policy.Request{SafeMethod: true, OwnerID: 3}, nil},
		{"safe method allowed for anonymous", policy.Request{SafeMethod: true}, nil},
		{"owner may mutate", policy.Request{ActorID: 3, OwnerID: 3}, nil},
		{"non-owner denied", policy.Request{ActorID: 4, OwnerID: 3}, policy.ErrForbidden},
		{"anonymous mutation denied", policy.Request{OwnerID: 3}, policy.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.OwnerOrReadOnly(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	check := policy.AdminOrReadOnly("admin")
	tests := []struct {
		name string
		req  policy.Request
		want error
	}{
		{"safe method always allowed", policy.Request{SafeMethod: true}, nil},
		{"admin may mutate", policy.Request{ActorID: 1, ActorRole: "admin"}, nil},
		{"regular role denied", policy.Request{ActorID: 2, ActorRole: "user"}, policy.ErrForbidden},
		{"anonymous mutation denied", policy.Request{}, policy.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := check(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestEvaluate_ShortCircuitsOnFirstDeny(t *testing.T) {
	denied := errors.New("deny")
	var ran bool
	err := policy.Evaluate(policy.Request{},
		func(policy.Request) error { return denied },
		func(policy.Request) error { ran = true; return nil },
	)
	assert.ErrorIs(t, err, denied)
	assert.False(t, ran, "later checks must not run after a deny")

	// The authentication gate runs before object-level predicates, so an
	// anonymous mutation surfaces as auth-required rather than forbidden.
	err = policy.Evaluate(policy.Request{OwnerID: 3}, policy.Authenticated, policy.OwnerOrReadOnly)
	assert.ErrorIs(t, err, policy.ErrAuthRequired)
}

func TestSafeMethod(t *testing.T) {
	assert.True(t, policy.SafeMethod("GET"))
	assert.True(t, policy.SafeMethod("HEAD"))
	assert.True(t, policy.SafeMethod("OPTIONS"))
	assert.False(t, policy.SafeMethod("POST"))
	assert.False(t, policy.SafeMethod("PUT"))
	assert.False(t, policy.SafeMethod("PATCH"))
	assert.False(t, policy.SafeMethod("DELETE"))
}
