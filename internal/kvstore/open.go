package kvstore

import (
	"context"
	"fmt"

	"github.com/yukikurage/study-tracker-api/internal/config"
)

// Open builds the backend selected by cfg.KVBackend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.KVBackend {
	case "bolt":
		return OpenBolt(cfg.KVBoltPath, "guests")
	case "redis":
		return DialRedis(ctx, cfg.RedisAddr(), cfg.RedisPassword, "study:")
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("kvstore: unknown backend %q", cfg.KVBackend)
	}
}
