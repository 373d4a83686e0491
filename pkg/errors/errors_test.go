package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/narwhalmedia/classifieds/pkg/errors"
)

func TestTypeHelpers(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		typ   errors.ErrorType
	}{
		{"not found", errors.NotFound("post 4 not found"), errors.IsNotFound, errors.ErrorTypeNotFound},
		{"bad request", errors.BadRequest("page must be positive"), errors.IsBadRequest, errors.ErrorTypeBadRequest},
		{"precondition", errors.PreconditionFailed("post is not pending"), errors.IsPreconditionFailed, errors.ErrorTypePreconditionFailed},
		{"store", errors.StoreUnavailable("failed to load post", cause), errors.IsStoreUnavailable, errors.ErrorTypeStoreUnavailable},
		{"conflict", errors.Conflict("category exists"), errors.IsConflict, errors.ErrorTypeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("moderate: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.Equal(t, tt.typ, errors.TypeOf(wrapped))
		})
	}

	assert.Equal(t, errors.ErrorTypeInternal, errors.TypeOf(cause))
	assert.ErrorIs(t, errors.StoreUnavailable("x", cause), cause)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "post is not pending", errors.UserMessage(errors.PreconditionFailed("post is not pending")))
	assert.Contains(t, errors.UserMessage(errors.StoreUnavailable("update", fmt.Errorf("timeout"))), "unavailable")
	assert.Contains(t, errors.UserMessage(fmt.Errorf("boom")), "Something went wrong")
	assert.Empty(t, errors.UserMessage(nil))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, errors.IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: categories.name")))
	assert.True(t, errors.IsDuplicateError(fmt.Errorf("ERROR: duplicate key value violates unique constraint")))
	assert.False(t, errors.IsDuplicateError(nil))
	assert.False(t, errors.IsDuplicateError(fmt.Errorf("syntax error")))
}
