package ledger

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atomized-titan/qri/internal/config"
)

func TestParseConsistency(t *testing.T) {
	assert.Equal(t, gocql.One, parseConsistency("one"))
	assert.Equal(t, gocql.Quorum, parseConsistency("QUORUM"))
	assert.Equal(t, gocql.LocalOne, parseConsistency("local_one"))
	assert.Equal(t, gocql.LocalQuorum, parseConsistency(""))
}

func TestTTLSeconds(t *testing.T) {
	assert.Equal(t, 0, ttlSeconds(0))
	assert.Equal(t, 0, ttlSeconds(-time.Second))
	assert.Equal(t, 3600, ttlSeconds(time.Hour))
}

// Runs against a live cluster when CASSANDRA_HOSTS is set, e.g.
// CASSANDRA_HOSTS=localhost:9042 with an existing "qri" keyspace.
func TestCassandraLedger(t *testing.T) {
	hosts := os.Getenv("CASSANDRA_HOSTS")
	if hosts == "" {
		t.Skip("CASSANDRA_HOSTS not set")
	}

	led, err := NewCassandraLedger(config.CassandraConfig{
		Hosts:       strings.Split(hosts, ","),
		Keyspace:    "qri",
		Consistency: "ONE",
	}, time.Hour)
	require.NoError(t, err)
	defer led.Close()
	exerciseLedger(t, led)
}
