package ledger

import (
	"context"
	"fmt"

	"github.com/Atomized-titan/qri/internal/config"
	"github.com/Atomized-titan/qri/pkg/database"
	"github.com/Atomized-titan/qri/pkg/log"
)

// New creates the ledger backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.LedgerConfig) (Ledger, error) {
	l := log.Ctx(ctx)

	switch cfg.Driver {
	case "memory", "":
		l.Info().Msg("using in-memory issuance ledger")
		return NewMemoryLedger(), nil
	case "redis":
		led, err := NewRedisLedger(cfg.Redis, cfg.Prefix, cfg.TTL)
		if err != nil {
			return nil, err
		}
		l.Info().Str("address", cfg.Redis.Address).Dur("ttl", cfg.TTL).Msg("using redis issuance ledger")
		return led, nil
	case "database":
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		led, err := NewGormLedger(db)
		if err != nil {
			database.Close(db)
			return nil, fmt.Errorf("failed to migrate ledger table: %w", err)
		}
		l.Info().Str("driver", cfg.Database.Driver).Msg("using database issuance ledger")
		return led, nil
	case "cassandra":
		led, err := NewCassandraLedger(cfg.Cassandra, cfg.TTL)
		if err != nil {
			return nil, err
		}
		l.Info().Strs("hosts", cfg.Cassandra.Hosts).Str("keyspace", cfg.Cassandra.Keyspace).Msg("using cassandra issuance ledger")
		return led, nil
	default:
		return nil, fmt.Errorf("unsupported ledger driver: %s", cfg.Driver)
	}
}
