package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"

	"github.com/Atomized-titan/qri/internal/config"
	"github.com/Atomized-titan/qri/internal/domain"
)

const cassandraSchema = `
	CREATE TABLE IF NOT EXISTS qri_issuances (
		random text PRIMARY KEY,
		qri text,
		qri_timestamp text,
		signed boolean,
		key_id text,
		issued_at timestamp
	)`

// CassandraLedger stores issuances in a Cassandra table. Rows expire after
// ttl when it is positive.
type CassandraLedger struct {
	session *gocql.Session
	ttl     time.Duration
}

// NewCassandraLedger connects to the cluster and creates the table if needed.
func NewCassandraLedger(cfg config.CassandraConfig, ttl time.Duration) (*CassandraLedger, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = parseConsistency(cfg.Consistency)
	if cfg.ConnectTimeout > 0 {
		cluster.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
	}
	if cfg.NumConns > 0 {
		cluster.NumConns = cfg.NumConns
	}

	if cfg.Username != "" && cfg.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 3,
		Min:        100 * time.Millisecond,
		Max:        2 * time.Second,
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create cassandra session: %w", err)
	}

	if err := session.Query(cassandraSchema).Exec(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create issuance table: %w", err)
	}

	return &CassandraLedger{session: session, ttl: ttl}, nil
}

func (c *CassandraLedger) Record(ctx context.Context, issuance *domain.Issuance) error {
	query := `
		INSERT INTO qri_issuances (
			random, qri, qri_timestamp, signed, key_id, issued_at
		) VALUES (?, ?, ?, ?, ?, ?) USING TTL ?`

	err := c.session.Query(query,
		issuance.Random,
		issuance.QRI,
		issuance.Timestamp,
		issuance.Signed,
		issuance.KeyID,
		issuance.IssuedAt,
		ttlSeconds(c.ttl),
	).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("failed to record issuance: %w", err)
	}

	return nil
}

func (c *CassandraLedger) Lookup(ctx context.Context, random string) (*domain.Issuance, error) {
	query := `
		SELECT random, qri, qri_timestamp, signed, key_id, issued_at
		FROM qri_issuances WHERE random = ?`

	var rec domain.Issuance
	err := c.session.Query(query, random).WithContext(ctx).Scan(
		&rec.Random,
		&rec.QRI,
		&rec.Timestamp,
		&rec.Signed,
		&rec.KeyID,
		&rec.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up issuance: %w", err)
	}
	rec.IssuedAt = rec.IssuedAt.UTC()

	return &rec, nil
}

func (c *CassandraLedger) Close() error {
	c.session.Close()
	return nil
}

// ttlSeconds converts ttl for USING TTL, where 0 means no expiry.
func ttlSeconds(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	return int(ttl / time.Second)
}

// parseConsistency converts a string consistency level to gocql.Consistency.
func parseConsistency(s string) gocql.Consistency {
	switch strings.ToUpper(s) {
	case "ANY":
		return gocql.Any
	case "ONE":
		return gocql.One
	case "TWO":
		return gocql.Two
	case "THREE":
		return gocql.Three
	case "QUORUM":
		return gocql.Quorum
	case "ALL":
		return gocql.All
	case "LOCAL_QUORUM":
		return gocql.LocalQuorum
	case "EACH_QUORUM":
		return gocql.EachQuorum
	case "LOCAL_ONE":
		return gocql.LocalOne
	default:
		return gocql.LocalQuorum
	}
}
