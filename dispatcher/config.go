package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Addr         string        `env:"DISPATCHER_ADDR, default=:8081"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,   default=5s"`
	LogLevel     string        `env:"LOG_LEVEL,       default=info"`

	Fabric FabricConfig
}

type FabricConfig struct {
	ConfigPath  string `env:"FABRIC_CONFIG,    required"`
	Channel     string `env:"FABRIC_CHANNEL,   default=mychannel"`
	Chaincode   string `env:"FABRIC_CHAINCODE, default=energy-trading"`
	User        string `env:"FABRIC_USER,      default=admin"`
	Org         string `env:"FABRIC_ORG,       default=Org1"`
	EventFilter string `env:"EVENT_FILTER,     default=TradeCompleted"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig(ctx context.Context) (*Config, error) {
	return LoadConfigFrom(ctx, envconfig.OsLookuper())
}

// LoadConfigFrom reads configuration through l.
func LoadConfigFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load dispatcher config: %w", err)
	}
	if cfg.WriteTimeout <= 0 {
		return nil, fmt.Errorf("load dispatcher config: WRITE_TIMEOUT must be positive, got %s", cfg.WriteTimeout)
	}
	return &cfg, nil
}
