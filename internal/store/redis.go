package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisDataField    = "data"
	redisVersionField = "version"
)

// RedisStore keeps each blob in a hash with data and version fields and
// guards writes with WATCH/MULTI.
type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Blob, error) {
	vals, err := s.rdb.HMGet(ctx, key, redisDataField, redisVersionField).Result()
	if err != nil {
		return nil, fmt.Errorf("get blob %s: %w", key, err)
	}
	data, _ := vals[0].(string)
	version, _ := vals[1].(string)
	if version == "" {
		return nil, fmt.Errorf("get blob %s: %w", key, ErrNotFound)
	}
	return &Blob{Data: []byte(data), Version: version}, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	var next string
	txf := func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, key, redisVersionField).Result()
		if errors.Is(err, redis.Nil) {
			cur = ""
		} else if err != nil {
			return err
		}
		if cur != expectedVersion {
			return ErrVersionConflict
		}

		next, err = nextVersion(cur)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, redisDataField, data, redisVersionField, next)
			return nil
		})
		return err
	}

	err := s.rdb.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) || errors.Is(err, ErrVersionConflict) {
		return "", fmt.Errorf("put blob %s at version %q: %w", key, expectedVersion, ErrVersionConflict)
	}
	if err != nil {
		return "", fmt.Errorf("put blob %s: %w", key, err)
	}
	return next, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func nextVersion(cur string) (string, error) {
	if cur == "" {
		return "1", nil
	}
	n, err := strconv.ParseInt(cur, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse version %q: %w", cur, err)
	}
	return strconv.FormatInt(n+1, 10), nil
}
