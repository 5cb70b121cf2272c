package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := NewServiceError("submit_review", "failed to persist review", cause)

	assert.Equal(t, "submit_review operation failed: failed to persist review: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *ServiceError
	assert.True(t, errors.As(error(err), &se))
	assert.Equal(t, "submit_review", se.Operation)

	bare := NewServiceError("generate_plan", "no sessions", nil)
	assert.Equal(t, "generate_plan operation failed: no sessions", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
