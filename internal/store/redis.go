package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slide-composer/internal/common/database"
	apperrors "slide-composer/internal/common/errors"
)

const (
	fieldContentType = "content_type"
	fieldData        = "data"
	fieldCreatedAt   = "created_at"
)

// RedisSink stores each artifact as a hash with a TTL.
type RedisSink struct {
	client *database.RedisClient
	prefix string
	ttl    time.Duration
}

func NewRedisSink(client *database.RedisClient, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSink) redisKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *RedisSink) Save(ctx context.Context, key, contentType string, data []byte) error {
	if err := validateKey(key); err != nil {
		return apperrors.NewStoreWriteFailedError(key, err)
	}
	err := s.client.SetFields(ctx, s.redisKey(key), map[string]interface{}{
		fieldContentType: contentType,
		fieldData:        data,
		fieldCreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}, s.ttl)
	if err != nil {
		return apperrors.NewStoreWriteFailedError(key, err)
	}
	return nil
}

func (s *RedisSink) Load(ctx context.Context, key string) (*Artifact, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	vals, err := s.client.GetFields(ctx, s.redisKey(key))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	created, _ := time.Parse(time.RFC3339Nano, vals[fieldCreatedAt])
	return &Artifact{
		Key:         key,
		ContentType: vals[fieldContentType],
		Data:        []byte(vals[fieldData]),
		CreatedAt:   created,
	}, nil
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
