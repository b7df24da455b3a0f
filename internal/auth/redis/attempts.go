package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal/auth"
	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldCount       = "count"
	fieldLastAttempt = "last_attempt"
	fieldLockedUntil = "locked_until"

	defaultRetention = 24 * time.Hour
)

// AttemptStore keeps one hash per identity so several CRM processes share
// the same lockout state. Records expire on their own once the lock passes.
type AttemptStore struct {
	client    goredis.UniversalClient
	prefix    string
	retention time.Duration
}

func NewAttemptStore(client goredis.UniversalClient, prefix string) *AttemptStore {
	if prefix == "" {
		prefix = "crm:login_attempts:"
	}
	return &AttemptStore{client: client, prefix: prefix, retention: defaultRetention}
}

var _ auth.AttemptStore = (*AttemptStore)(nil)

func (s *AttemptStore) key(identity string) string {
	return s.prefix + identity
}

func (s *AttemptStore) Get(ctx context.Context, identity string) (auth.AttemptRecord, bool, error) {
	values, err := s.client.HGetAll(ctx, s.key(identity)).Result()
	if err != nil {
		return auth.AttemptRecord{}, false, fmt.Errorf("redis get attempts: %w", err)
	}
	if len(values) == 0 {
		return auth.AttemptRecord{}, false, nil
	}
	rec, err := decodeRecord(values)
	if err != nil {
		return auth.AttemptRecord{}, false, err
	}
	return rec, true, nil
}

func (s *AttemptStore) Increment(ctx context.Context, identity string, at time.Time) (auth.AttemptRecord, error) {
	key := s.key(identity)
	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.HIncrBy(ctx, key, fieldCount, 1)
		p.HSet(ctx, key, fieldLastAttempt, at.UnixNano())
		p.Expire(ctx, key, s.retention)
		return nil
	})
	if err != nil {
		return auth.AttemptRecord{}, fmt.Errorf("redis increment attempts: %w", err)
	}
	return auth.AttemptRecord{Count: int(incr.Val()), LastAttempt: at}, nil
}

func (s *AttemptStore) Lock(ctx context.Context, identity string, until time.Time) error {
	key := s.key(identity)
	_, err := s.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.HSet(ctx, key, fieldLockedUntil, until.UnixNano())
		p.ExpireAt(ctx, key, until)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis lock identity: %w", err)
	}
	return nil
}

func (s *AttemptStore) Delete(ctx context.Context, identity string) error {
	if err := s.client.Del(ctx, s.key(identity)).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis delete attempts: %w", err)
	}
	return nil
}

func decodeRecord(values map[string]string) (auth.AttemptRecord, error) {
	var rec auth.AttemptRecord
	if v, ok := values[fieldCount]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return rec, fmt.Errorf("decode %s: %w", fieldCount, err)
		}
		rec.Count = n
	}
	if v, ok := values[fieldLastAttempt]; ok {
		ns, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return rec, fmt.Errorf("decode %s: %w", fieldLastAttempt, err)
		}
		rec.LastAttempt = time.Unix(0, ns)
	}
	if v, ok := values[fieldLockedUntil]; ok {
		ns, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return rec, fmt.Errorf("decode %s: %w", fieldLockedUntil, err)
		}
		until := time.Unix(0, ns)
		rec.LockedUntil = &until
	}
	return rec, nil
}
