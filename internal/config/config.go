package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/Atomized-titan/qri/pkg/config"
	"github.com/Atomized-titan/qri/pkg/database"
	"github.com/Atomized-titan/qri/pkg/pubsub"
	"github.com/Atomized-titan/qri/pkg/storage"
)

type Config struct {
	Server ServerConfig
	GRPC   GRPCConfig
	Log    LogConfig
	QRI    QRIConfig `mapstructure:"qri"`
	Keys   KeysConfig
	Ledger LedgerConfig
	Events pubsub.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type GRPCConfig struct {
	Host string
	Port int
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// QRIConfig controls generation and validation policy.
type QRIConfig struct {
	// UTC renders timestamps in UTC instead of the host's local time.
	UTC bool `mapstructure:"utc"`
	// RequireSignature makes signature verification mandatory whenever a
	// public key is supplied.
	RequireSignature bool `mapstructure:"require_signature"`
	// SignatureLength pins the hex length of signatures; 0 derives it from
	// the key.
	SignatureLength int `mapstructure:"signature_length"`
	BatchMax        int `mapstructure:"batch_max"`
}

// KeysConfig locates PEM key material in storage.
type KeysConfig struct {
	Storage storage.Config
	// SigningKey is the storage key of the PEM private key. Empty disables
	// signing.
	SigningKey string `mapstructure:"signing_key"`
	// SigningKeyID names the signing key's public half in the keyring.
	SigningKeyID string `mapstructure:"signing_key_id"`
	// PublicKeys maps key IDs to storage keys of PEM public keys.
	PublicKeys map[string]string `mapstructure:"public_keys"`
	// PublicKeyPrefix loads every "<id>.pub.pem" object under the prefix.
	PublicKeyPrefix string `mapstructure:"public_key_prefix"`
}

type LedgerConfig struct {
	Driver    string // memory, redis, database, cassandra
	TTL       time.Duration
	Prefix    string
	Redis     RedisConfig
	Database  database.Config
	Cassandra CassandraConfig
}

type CassandraConfig struct {
	Hosts          []string
	Keyspace       string
	Username       string
	Password       string
	Consistency    string
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration
	NumConns       int `mapstructure:"num_conns"`
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper applies defaults and environment bindings to v and decodes it.
func FromViper(v *viper.Viper) (*Config, error) {
	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8095)
	v.SetDefault("grpc.host", "0.0.0.0")
	v.SetDefault("grpc.port", 50058)
	v.SetDefault("log.level", "info")
	v.SetDefault("qri.utc", false)
	v.SetDefault("qri.require_signature", false)
	v.SetDefault("qri.signature_length", 0)
	v.SetDefault("qri.batch_max", 1000)
	v.SetDefault("keys.storage.driver", "local")
	v.SetDefault("keys.storage.local.base_path", "./keys")
	v.SetDefault("keys.signing_key", "")
	v.SetDefault("keys.signing_key_id", "default")
	v.SetDefault("keys.public_key_prefix", "")
	v.SetDefault("ledger.driver", "memory")
	v.SetDefault("ledger.ttl", "720h")
	v.SetDefault("ledger.prefix", "qri:issued")
	v.SetDefault("ledger.redis.address", "localhost:6379")
	v.SetDefault("ledger.database.driver", "sqlite")
	v.SetDefault("ledger.database.file_path", "./data/qri.db")
	v.SetDefault("ledger.database.host", "localhost")
	v.SetDefault("ledger.database.port", 5432)
	v.SetDefault("ledger.database.user", "postgres")
	v.SetDefault("ledger.database.dbname", "qri_service")
	v.SetDefault("ledger.database.sslmode", "disable")
	v.SetDefault("ledger.database.max_idle_conns", 10)
	v.SetDefault("ledger.database.max_open_conns", 100)
	v.SetDefault("ledger.database.conn_max_lifetime", 60)
	v.SetDefault("ledger.cassandra.hosts", []string{"localhost:9042"})
	v.SetDefault("ledger.cassandra.keyspace", "qri")
	v.SetDefault("ledger.cassandra.consistency", "LOCAL_QUORUM")
	v.SetDefault("ledger.cassandra.connect_timeout", "10s")
	v.SetDefault("ledger.cassandra.timeout", "5s")
	v.SetDefault("ledger.cassandra.num_conns", 2)
	events := pubsub.DefaultConfig()
	v.SetDefault("events.driver", events.Driver)
	v.SetDefault("events.channel", events.Channel)
	v.SetDefault("events.redis.address", events.Redis.Address)
	v.SetDefault("events.redis.pool_size", events.Redis.PoolSize)
	v.SetDefault("events.redis.read_timeout", events.Redis.ReadTimeout)
	v.SetDefault("events.redis.write_timeout", events.Redis.WriteTimeout)
	v.SetDefault("events.kafka.brokers", events.Kafka.Brokers)
	v.SetDefault("events.kafka.partitions", events.Kafka.Partitions)

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("grpc.port", "GRPC_PORT")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("qri.utc", "QRI_UTC")
	v.BindEnv("qri.require_signature", "QRI_REQUIRE_SIGNATURE")
	v.BindEnv("keys.storage.driver", "KEYS_STORAGE_DRIVER")
	v.BindEnv("keys.storage.local.base_path", "KEYS_PATH")
	v.BindEnv("keys.storage.s3.endpoint", "KEYS_S3_ENDPOINT")
	v.BindEnv("keys.storage.s3.bucket", "KEYS_S3_BUCKET")
	v.BindEnv("keys.storage.s3.access_key_id", "KEYS_S3_ACCESS_KEY_ID")
	v.BindEnv("keys.storage.s3.secret_access_key", "KEYS_S3_SECRET_ACCESS_KEY")
	v.BindEnv("keys.signing_key", "SIGNING_KEY")
	v.BindEnv("ledger.driver", "LEDGER_DRIVER")
	v.BindEnv("ledger.redis.address", "REDIS_ADDRESS")
	v.BindEnv("ledger.redis.password", "REDIS_PASSWORD")
	v.BindEnv("ledger.database.driver", "DB_DRIVER")
	v.BindEnv("ledger.database.host", "DB_HOST")
	v.BindEnv("ledger.database.password", "DB_PASSWORD")
	v.BindEnv("ledger.cassandra.hosts", "CASSANDRA_HOSTS")
	v.BindEnv("ledger.cassandra.keyspace", "CASSANDRA_KEYSPACE")
	v.BindEnv("events.driver", "EVENTS_DRIVER")
	v.BindEnv("events.kafka.brokers", "KAFKA_BROKERS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
