// Package config reads node configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	strs "asnode/pkg/platform/strings"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	RoleAS = "as"
)

var knownRoles = map[string]bool{"idp": true, "rp": true, "as": true, "ndid": true}

// Config is the full node configuration.
type Config struct {
	Env      string
	Role     string
	NodeID   string
	LogLevel string

	Server   Server
	Ledger   LedgerConfig
	MQ       MQConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Callback CallbackConfig

	PrivateKeyPath     string
	DataDir            string
	AdminTokenHash     string
	ProcessedRetention time.Duration
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// LedgerConfig points at the ledger RPC endpoint.
type LedgerConfig struct {
	URL          string
	PollInterval time.Duration
}

// MQConfig configures the Kafka message transport.
type MQConfig struct {
	Brokers       []string
	TopicPrefix   string
	ConsumerGroup string
}

// RedisConfig configures the pending-message store backend. An empty URL
// selects the in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures durable local state. An empty URL selects the
// in-memory store.
type PostgresConfig struct {
	URL string
}

// CallbackConfig tunes delivery to the attribute source.
type CallbackConfig struct {
	InitialInterval time.Duration
	MaxElapsed      time.Duration
	TokenSecret     string
	// MaxInFlight bounds concurrent request passes. Zero means unbounded.
	MaxInFlight int
}

// FromEnv builds a Config from environment variables, after loading a .env
// file when one exists. Defaults that an operator should know about are
// returned as warnings; the config is validated before returning.
func FromEnv() (Config, []string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, nil, fmt.Errorf("load .env: %w", err)
	}

	var (
		warnings []string
		errs     []error
	)
	warnDefault := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		warnings = append(warnings, fmt.Sprintf("%q environment variable is not set. Default to %q", key, def))
		return def
	}
	duration := func(key string, def time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return d
	}
	integer := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return def
		}
		return n
	}

	cfg := Config{
		Env:      warnDefault("NODE_ENV", EnvDevelopment),
		Role:     os.Getenv("ROLE"),
		NodeID:   os.Getenv("NODE_ID"),
		LogLevel: getenv("LOG_LEVEL", "info"),
		Server: Server{
			Addr: getenv("AS_API_ADDR", ":8080"),
		},
		Ledger: LedgerConfig{
			URL:          warnDefault("LEDGER_URL", "http://localhost:26657"),
			PollInterval: duration("LEDGER_POLL_INTERVAL", time.Second),
		},
		MQ: MQConfig{
			Brokers:       strs.SplitList(warnDefault("MQ_BROKERS", "localhost:9092"), ","),
			TopicPrefix:   getenv("MQ_TOPIC_PREFIX", "asnode"),
			ConsumerGroup: os.Getenv("MQ_CONSUMER_GROUP"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Callback: CallbackConfig{
			InitialInterval: duration("CALLBACK_INITIAL_INTERVAL", 500*time.Millisecond),
			MaxElapsed:      duration("CALLBACK_MAX_ELAPSED", 2*time.Minute),
			TokenSecret:     os.Getenv("CALLBACK_TOKEN_SECRET"),
			MaxInFlight:     integer("CALLBACK_MAX_IN_FLIGHT", 0),
		},
		PrivateKeyPath:     os.Getenv("PRIVATE_KEY_PATH"),
		DataDir:            getenv("DATA_DIRECTORY_PATH", "./data"),
		AdminTokenHash:     os.Getenv("ADMIN_TOKEN_HASH"),
		ProcessedRetention: duration("PROCESSED_RETENTION", 24*time.Hour),
	}
	if cfg.MQ.ConsumerGroup == "" && cfg.NodeID != "" {
		cfg.MQ.ConsumerGroup = cfg.NodeID
	}
	if cfg.IsProduction() && os.Getenv("DATA_DIRECTORY_PATH") == "" {
		warnings = append(warnings, `"DATA_DIRECTORY_PATH" environment variable is not set. Default to "./data"`)
	}

	if len(errs) > 0 {
		return Config{}, warnings, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

// Validate enforces the startup requirements of an attribute-source node.
func (c Config) Validate() error {
	switch {
	case c.Role == "":
		return errors.New(`"ROLE" environment variable is not set`)
	case !knownRoles[c.Role]:
		return fmt.Errorf(`unknown role %q; must be one of "idp", "rp", "as", or "ndid"`, c.Role)
	case c.Role != RoleAS:
		return fmt.Errorf("role %q is not served by this binary", c.Role)
	case c.NodeID == "":
		return errors.New(`"NODE_ID" environment variable is not set`)
	case c.IsProduction() && c.PrivateKeyPath == "":
		return errors.New(`"PRIVATE_KEY_PATH" environment variable is not set`)
	case len(c.MQ.Brokers) == 0:
		return errors.New("at least one message queue broker is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
