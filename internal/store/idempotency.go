package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRequestInProgress is returned by an IdempotencyGuard when an earlier
// request with the same key has not finished yet.
var ErrRequestInProgress = errors.New("request with this idempotency key is in progress")

// ErrIdempotencyKeyReused is returned when a key already answered one request
// is sent again with a different target.
var ErrIdempotencyKeyReused = errors.New("idempotency key was used for a different request")

// IdempotencyGuard remembers responses by client supplied key so a replayed
// request is answered from the stored response.
type IdempotencyGuard interface {
	// Begin claims key for learnerID. started is true when the caller now owns
	// the key and must call Complete or Abort. Otherwise cached holds the
	// earlier response; ErrRequestInProgress means it is still being produced.
	Begin(ctx context.Context, learnerID uuid.UUID, key string) (cached []byte, started bool, err error)

	// Complete stores the response for a claimed key.
	Complete(ctx context.Context, learnerID uuid.UUID, key string, response []byte) error

	// Abort releases a claimed key without a response.
	Abort(ctx context.Context, learnerID uuid.UUID, key string) error
}
