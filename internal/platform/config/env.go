// Package config loads engine configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the shared settings for the savectl entrypoints.
type Config struct {
	// Backend selects the storage adapter: file, bbolt, sqlite or memory.
	Backend string `env:"CONTINUITY_BACKEND" envDefault:"file"`
	// DataPath is the save directory (file backend) or database file path
	// (bbolt and sqlite backends).
	DataPath string `env:"CONTINUITY_DATA_PATH" envDefault:"saves"`
	// GameVersion is the default migration target for savectl verify.
	// When empty, verify skips the version comparison.
	GameVersion string `env:"CONTINUITY_GAME_VERSION"`
	// OTELEndpoint enables trace export when non-empty. Entrypoints pass
	// it to otel.Setup.
	OTELEndpoint string `env:"CONTINUITY_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
