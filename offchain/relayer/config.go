package relayer

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the relayer configuration. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	NATSURL string `env:"HWMVAULT_RELAYER_NATS_URL" envDefault:"nats://127.0.0.1:4222"`

	// Every worker sees every message and keeps only the handles it owns, so
	// a handle's query and values land in the same local store.
	WorkerIndex int `env:"HWMVAULT_RELAYER_WORKER_INDEX" envDefault:"0"`
	WorkerCount int `env:"HWMVAULT_RELAYER_WORKER_COUNT" envDefault:"1"`

	// Coordinator is the address replies are signed by. It must match the
	// pool's coordinator param.
	Coordinator string `env:"HWMVAULT_RELAYER_COORDINATOR"`

	// ReplyDeadline bounds how long a handle waits for every domain. Keep it
	// below the pool's cross-domain grace window.
	ReplyDeadline time.Duration `env:"HWMVAULT_RELAYER_REPLY_DEADLINE" envDefault:"50m"`
	SweepInterval time.Duration `env:"HWMVAULT_RELAYER_SWEEP_INTERVAL" envDefault:"10s"`

	DataDir   string `env:"HWMVAULT_RELAYER_DATA_DIR" envDefault:"relayer-data"`
	DBBackend string `env:"HWMVAULT_RELAYER_DB_BACKEND" envDefault:"goleveldb"`

	MetricsAddr string `env:"HWMVAULT_RELAYER_METRICS_ADDR" envDefault:":9464"`
}

// LoadConfig reads envFiles (default .env) into the process environment and
// parses the relayer config. Missing env files are ignored.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config
func (c *Config) Validate() error {
	if c.NATSURL == "" {
		return errors.New("nats url is required")
	}
	if c.Coordinator == "" {
		return errors.New("coordinator address is required")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive, got %d", c.WorkerCount)
	}
	if c.WorkerIndex < 0 || c.WorkerIndex >= c.WorkerCount {
		return fmt.Errorf("worker index %d out of range [0, %d)", c.WorkerIndex, c.WorkerCount)
	}
	if c.ReplyDeadline <= 0 {
		return fmt.Errorf("reply deadline must be positive, got %s", c.ReplyDeadline)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.SweepInterval)
	}
	return nil
}
