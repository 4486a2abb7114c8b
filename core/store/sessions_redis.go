package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix  = "movura:session:"
	sessionUserPrefix = "movura:session:user:"
)

// redisSessionStore keeps sessions in Redis with a TTL matching the
// session expiry, so PurgeExpired is mostly a no-op for this backend.
type redisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(redisURL string) (SessionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &redisSessionStore{rdb: redis.NewClient(opts)}, nil
}

func NewRedisSessionStoreFromClient(rdb *redis.Client) SessionStore {
	return &redisSessionStore{rdb: rdb}
}

func (s *redisSessionStore) Put(ctx context.Context, rec *SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+rec.Token, data, ttl)
	pipe.SAdd(ctx, sessionUserPrefix+rec.UserID, rec.Token)
	pipe.Expire(ctx, sessionUserPrefix+rec.UserID, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (*SessionRecord, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *redisSessionStore) Touch(ctx context.Context, token string, at time.Time) error {
	rec, err := s.Get(ctx, token)
	if err != nil || rec == nil {
		return err
	}
	rec.LastSeenAt = at
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+token, data, ttl).Err()
}

func (s *redisSessionStore) Revoke(ctx context.Context, token, by string) error {
	rec, err := s.Get(ctx, token)
	if err != nil || rec == nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+token)
	pipe.SRem(ctx, sessionUserPrefix+rec.UserID, token)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisSessionStore) RevokeAllForUser(ctx context.Context, userID, by string) (int64, error) {
	tokens, err := s.rdb.SMembers(ctx, sessionUserPrefix+userID).Result()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, token := range tokens {
		deleted, err := s.rdb.Del(ctx, sessionKeyPrefix+token).Result()
		if err != nil {
			return n, err
		}
		n += deleted
	}
	if err := s.rdb.Del(ctx, sessionUserPrefix+userID).Err(); err != nil {
		return n, err
	}
	return n, nil
}

func (s *redisSessionStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	// Redis expires session keys on its own; nothing to sweep.
	return 0, nil
}

func (s *redisSessionStore) ListActiveForUser(ctx context.Context, userID string) ([]SessionRecord, error) {
	tokens, err := s.rdb.SMembers(ctx, sessionUserPrefix+userID).Result()
	if err != nil {
		return nil, err
	}
	var res []SessionRecord
	for _, token := range tokens {
		rec, err := s.Get(ctx, token)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			s.rdb.SRem(ctx, sessionUserPrefix+userID, token)
			continue
		}
		res = append(res, *rec)
	}
	return res, nil
}
