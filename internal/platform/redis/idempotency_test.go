package redis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	goredis "github.com/redis/go-redis/v9"
)

func TestIdempotencyGuardDefaults(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	g := NewIdempotencyGuard(client, "", 0, nil)
	assert.Equal(t, DefaultKeyPrefix, g.prefix)
	assert.Equal(t, 24*time.Hour, g.ttl)

	learnerID := uuid.MustParse("4f0a3c5e-8d6b-4a51-9a1c-0c1d2e3f4a5b")
	assert.Equal(t, "study:review:4f0a3c5e-8d6b-4a51-9a1c-0c1d2e3f4a5b:abc", g.Key(learnerID, "abc"))

	custom := NewIdempotencyGuard(client, "x:", time.Minute, nil)
	assert.Equal(t, "x:"+learnerID.String()+":k", custom.Key(learnerID, "k"))
	assert.Equal(t, time.Minute, custom.ttl)
}
