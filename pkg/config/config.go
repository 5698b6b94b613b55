package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/snehendu098/ghost/pkg/database"
	"github.com/snehendu098/ghost/pkg/log"
)

const (
	// ConfigDirEnv points at the directory holding .env, networks.yaml and the local state.
	ConfigDirEnv = "GHOST_CONFIG_DIR"

	KeystoreFileName = "keystore.json"
	DatabaseFileName = "ghost.db"

	KeystoreBackendFile = "file"
	KeystoreBackendDB   = "db"
)

// Config is the application configuration read from the environment.
type Config struct {
	Network   string `env:"GHOST_NETWORK" env-default:"devnet" validate:"required"`
	RPCURL    string `env:"GHOST_RPC_URL" validate:"omitempty,url"`
	WSURL     string `env:"GHOST_WS_URL" validate:"omitempty,url"`
	FaucetURL string `env:"GHOST_FAUCET_URL" validate:"omitempty,url"`

	GasBudget  uint64 `env:"GHOST_GAS_BUDGET" env-default:"1000" validate:"gt=0"`
	GasPayment string `env:"GHOST_GAS_PAYMENT" validate:"omitempty,startswith=0x"`
	RateLimit  int    `env:"GHOST_RPC_RATE_LIMIT" env-default:"0" validate:"gte=0"`

	KeystoreBackend string `env:"GHOST_KEYSTORE_BACKEND" env-default:"file" validate:"oneof=file db"`
	KeystorePath    string `env:"GHOST_KEYSTORE_PATH"`
	Journal         bool   `env:"GHOST_JOURNAL" env-default:"true"`

	Log      log.Config
	Database database.Config
}

// Load reads <dir>/.env when present, then the process environment, and validates the result.
// Variables already set in the environment win over the .env file. Relative state paths
// default into dir.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %w", ErrInvalidConfig, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.KeystorePath == "" {
		cfg.KeystorePath = filepath.Join(dir, KeystoreFileName)
	}
	if cfg.Database.URL == "" && cfg.Database.Driver == "sqlite" && cfg.Database.Name == "" {
		cfg.Database.Name = filepath.Join(dir, DatabaseFileName)
	}
	if _, err := log.ParseLevel(string(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// ResolveNetwork picks the configured network from networks and applies the endpoint
// overrides.
func (c *Config) ResolveNetwork(networks Networks) (Network, error) {
	nw, err := networks.Get(c.Network)
	if err != nil {
		return Network{}, err
	}

	if c.RPCURL != "" {
		nw.RPCURL = c.RPCURL
	}
	if c.WSURL != "" {
		nw.WSURL = c.WSURL
	}
	if c.FaucetURL != "" {
		nw.FaucetURL = c.FaucetURL
	}
	return nw, nil
}
