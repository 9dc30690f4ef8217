package monitor

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
)

// Probe checks one dependency. Optional probes are reported but do not make
// the service unhealthy.
type Probe struct {
	Name     string
	Optional bool
	Check    func(ctx context.Context) error
}

func BoltProbe(db *bolt.DB) Probe {
	return Probe{
		Name:  "boltdb",
		Check: func(context.Context) error { return boltdb.Ping(db) },
	}
}

func PostgresProbe(pool *pgxpool.Pool) Probe {
	return Probe{
		Name:  "postgresql",
		Check: pool.Ping,
	}
}

// RedisProbe is optional: the rate limiter falls back to local buckets when
// redis is unreachable.
func RedisProbe(client *redislib.Client) Probe {
	return Probe{
		Name:     "redis",
		Optional: true,
		Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}
