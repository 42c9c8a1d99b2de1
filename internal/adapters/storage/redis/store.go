package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PabloGalante/mindlens/internal/domain"
)

type Store struct {
	rdb    *goredis.Client
	prefix string
}

var _ domain.BlobStore = (*Store)(nil)

// NewStore connects to addr and pings it before returning.
func NewStore(ctx context.Context, addr string) (*Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewStoreWithClient(rdb), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb, prefix: "mindlens:"}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis Get: %w", err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis Set: %w", err)
	}
	return nil
}
