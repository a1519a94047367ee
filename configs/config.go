// Package configs loads the harness's YAML configuration and applies an
// optional caller-supplied overrides map on top of it.
package configs

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the full set of recognized fields, including the ones
// needed to operate the RPC pool and the optional reporting mirror.
type Config struct {
	RPCURL     string `yaml:"rpc_url"`
	WSURL      string `yaml:"ws_url"`
	ProgramID  string `yaml:"program_id"`
	Commitment string `yaml:"commitment"`

	SkipPreflight      bool `yaml:"skip_preflight"`
	AllowSkipPreflight bool `yaml:"allow_skip_preflight"`

	DataDirectory string `yaml:"data_directory"`

	TargetActivePools int `yaml:"target_active_pools"`

	MinSOLBalance       uint64 `yaml:"min_sol_balance"`
	SOLAirdropAmount    uint64 `yaml:"sol_airdrop_amount"`
	AutoRefillThreshold uint64 `yaml:"auto_refill_threshold"`

	MaxSwapPercent    int `yaml:"max_swap_percent"`
	MaxDepositPercent int `yaml:"max_deposit_percent"`

	MinDelayMS int `yaml:"min_delay_ms"`
	MaxDelayMS int `yaml:"max_delay_ms"`

	RPCPoolSize int    `yaml:"rpc_pool_size"`
	MySQLDSN    string `yaml:"mysql_dsn"`

	RetryMaxAttempts int           `yaml:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
}

// Default returns the configuration applied before YAML/env overrides.
func Default() Config {
	return Config{
		Commitment:          "confirmed",
		DataDirectory:       "./data",
		TargetActivePools:   3,
		MinSOLBalance:       100_000_000,   // 0.1 SOL
		SOLAirdropAmount:    1_500_000_000, // 1.5 SOL
		AutoRefillThreshold: 100_000_000,
		MaxSwapPercent:      2,
		MaxDepositPercent:   5,
		MinDelayMS:          750,
		MaxDelayMS:          2000,
		RPCPoolSize:         16,
		RetryMaxAttempts:    5,
		RetryBaseDelay:      800 * time.Millisecond,
	}
}

// LoadConfig reads path as YAML on top of Default, then applies any
// overrides map (typically decoded from environment variables by the
// caller, keyed by the same option names as the YAML file) via
// mapstructure.
func LoadConfig(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configs: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("configs: parse %s: %w", path, err)
	}

	if len(overrides) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "yaml", Result: &cfg})
		if err != nil {
			return nil, fmt.Errorf("configs: apply overrides: %w", err)
		}
		if err := dec.Decode(overrides); err != nil {
			return nil, fmt.Errorf("configs: apply overrides: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configs: %w", err)
	}
	return &cfg, nil
}

// Validate enforces the invariants the rest of the harness assumes hold.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if c.ProgramID == "" {
		return fmt.Errorf("program_id is required")
	}
	if c.MaxDelayMS < c.MinDelayMS {
		return fmt.Errorf("max_delay_ms (%d) must be >= min_delay_ms (%d)", c.MaxDelayMS, c.MinDelayMS)
	}
	if c.TargetActivePools <= 0 {
		return fmt.Errorf("target_active_pools must be positive")
	}
	if c.RPCPoolSize <= 0 {
		return fmt.Errorf("rpc_pool_size must be positive")
	}
	return nil
}
