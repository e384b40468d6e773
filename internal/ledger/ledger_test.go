package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atomized-titan/qri/internal/config"
	"github.com/Atomized-titan/qri/internal/domain"
	"github.com/Atomized-titan/qri/pkg/database"
	"github.com/Atomized-titan/qri/pkg/qri"
)

func sampleIssuance(t *testing.T) *domain.Issuance {
	t.Helper()
	id, err := qri.Generate(qri.Options{})
	require.NoError(t, err)
	return domain.NewIssuance(id, "default", time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
}

func exerciseLedger(t *testing.T, led Ledger) {
	ctx := context.Background()
	rec := sampleIssuance(t)

	_, err := led.Lookup(ctx, rec.Random)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, led.Record(ctx, rec))
	got, err := led.Lookup(ctx, rec.Random)
	require.NoError(t, err)
	assert.Equal(t, rec.QRI, got.QRI)
	assert.Equal(t, rec.Timestamp, got.Timestamp)
	assert.Equal(t, rec.KeyID, got.KeyID)
	assert.True(t, rec.IssuedAt.Equal(got.IssuedAt))

	// Recording the same identifier again is idempotent.
	require.NoError(t, led.Record(ctx, rec))
}

func TestMemoryLedger(t *testing.T) {
	led := NewMemoryLedger()
	defer led.Close()
	exerciseLedger(t, led)
}

func TestRedisLedger(t *testing.T) {
	mr := miniredis.RunT(t)

	led, err := NewRedisLedger(config.RedisConfig{Address: mr.Addr()}, "qri:issued", time.Hour)
	require.NoError(t, err)
	defer led.Close()
	exerciseLedger(t, led)

	rec := sampleIssuance(t)
	require.NoError(t, led.Record(context.Background(), rec))
	assert.True(t, mr.Exists("qri:issued:"+rec.Random))

	mr.FastForward(2 * time.Hour)
	_, err = led.Lookup(context.Background(), rec.Random)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisLedgerUnreachable(t *testing.T) {
	_, err := NewRedisLedger(config.RedisConfig{Address: "127.0.0.1:1"}, "qri", time.Hour)
	assert.Error(t, err)
}

func TestGormLedger(t *testing.T) {
	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: filepath.Join(t.TempDir(), "ledger.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)

	led, err := NewGormLedger(db)
	require.NoError(t, err)
	defer led.Close()
	exerciseLedger(t, led)
}

func TestNewFactory(t *testing.T) {
	ctx := context.Background()

	led, err := New(ctx, config.LedgerConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryLedger{}, led)

	mr := miniredis.RunT(t)
	led, err = New(ctx, config.LedgerConfig{Driver: "redis", Prefix: "p", TTL: time.Minute, Redis: config.RedisConfig{Address: mr.Addr()}})
	require.NoError(t, err)
	assert.IsType(t, &RedisLedger{}, led)
	led.Close()

	led, err = New(ctx, config.LedgerConfig{Driver: "database", Database: database.Config{
		Driver:   "sqlite",
		FilePath: filepath.Join(t.TempDir(), "f.db"),
	}})
	require.NoError(t, err)
	assert.IsType(t, &GormLedger{}, led)
	led.Close()

	_, err = New(ctx, config.LedgerConfig{Driver: "etcd"})
	assert.Error(t, err)
}
