package kv

import (
	"context"
	"fmt"
)

// Backend types accepted by Open.
const (
	TypeLocalFS = "localfs"
	TypeS3      = "s3"
	TypeRedis   = "redis"
	TypeMemory  = "memory"
)

// Config selects and configures a storage backend
type Config struct {
	Type  string
	Path  string
	S3    S3Config
	Redis RedisConfig
}

// Open creates the backend named by cfg.Type. An empty type means localfs.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", TypeLocalFS:
		if cfg.Path == "" {
			return nil, fmt.Errorf("localfs storage requires a path")
		}
		return NewLocalFS(cfg.Path)
	case TypeS3:
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket")
		}
		return NewS3(cfg.S3)
	case TypeRedis:
		return NewRedis(ctx, cfg.Redis)
	case TypeMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
