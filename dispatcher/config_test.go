package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"FABRIC_CONFIG": "/etc/fabric/connection.yaml",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, FabricConfig{
		ConfigPath:  "/etc/fabric/connection.yaml",
		Channel:     "mychannel",
		Chaincode:   "energy-trading",
		User:        "admin",
		Org:         "Org1",
		EventFilter: "TradeCompleted",
	}, cfg.Fabric)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"FABRIC_CONFIG":    "net.yaml",
		"DISPATCHER_ADDR":  "127.0.0.1:9000",
		"WRITE_TIMEOUT":    "250ms",
		"FABRIC_CHANNEL":   "energy",
		"FABRIC_CHAINCODE": "etcc",
		"EVENT_FILTER":     ".*",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.WriteTimeout)
	assert.Equal(t, "energy", cfg.Fabric.Channel)
	assert.Equal(t, "etcc", cfg.Fabric.Chaincode)
	assert.Equal(t, ".*", cfg.Fabric.EventFilter)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)

	_, err = LoadConfigFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"FABRIC_CONFIG": "net.yaml",
		"WRITE_TIMEOUT": "0s",
	}))
	require.Error(t, err)
}
