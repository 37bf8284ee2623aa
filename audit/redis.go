package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultStream is the redis stream entries are appended to when no name is
// given.
const DefaultStream = "audit:auth"

// RedisStore appends entries to a redis stream. Streams are append-only by
// construction, which matches the trail's contract: server-assigned IDs,
// no update, no delete.
type RedisStore struct {
	redis  redis.UniversalClient
	stream string
}

// NewRedisStore wraps client. An empty stream name falls back to
// [DefaultStream].
func NewRedisStore(client redis.UniversalClient, stream string) *RedisStore {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStore{
		redis:  client,
		stream: stream,
	}
}

// Stream returns the stream name entries are written to.
func (s *RedisStore) Stream() string {
	return s.stream
}

// Create appends one JSON-encoded entry. Backend failures are wrapped in
// [ErrStoreUnavailable].
func (s *RedisStore) Create(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStoreUnavailable, err)
	}

	err = s.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"entry": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
