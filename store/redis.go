package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	sageauth "github.com/sageflow/sageauth"
)

// ErrUnavailable is returned when a storage backend fault prevents a
// read or write.
var ErrUnavailable = errors.New("session storage unavailable")

// Redis is a shared storage backend namespaced per device. Keys carry no
// TTL: session lifetime is governed by the token's own expiry, which the
// resolver checks on restore.
type Redis struct {
	redis    redis.UniversalClient
	prefix   string
	deviceID string
}

// NewRedis creates a Redis-backed store. prefix sets the key namespace;
// deviceID isolates terminals sharing one backend and is generated when
// empty.
func NewRedis(client redis.UniversalClient, prefix, deviceID string) *Redis {
	if prefix == "" {
		prefix = "sf"
	}
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	return &Redis{
		redis:    client,
		prefix:   prefix,
		deviceID: deviceID,
	}
}

// DeviceID returns the namespace this store reads and writes under.
func (s *Redis) DeviceID() string {
	return s.deviceID
}

func (s *Redis) tokenKey() string {
	return s.prefix + ":tok:" + s.deviceID
}

func (s *Redis) userKey() string {
	return s.prefix + ":usr:" + s.deviceID
}

func (s *Redis) Token(ctx context.Context) (string, error) {
	val, err := s.redis.Get(ctx, s.tokenKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return val, nil
}

func (s *Redis) SetToken(ctx context.Context, token string) error {
	if err := s.redis.Set(ctx, s.tokenKey(), token, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Redis) ClearToken(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.tokenKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Redis) Load(ctx context.Context) (*sageauth.User, error) {
	data, err := s.redis.Get(ctx, s.userKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var user sageauth.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

func (s *Redis) Save(ctx context.Context, user sageauth.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := s.redis.Set(ctx, s.userKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Redis) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.userKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
