// Package config loads tunables from defaults overridden by environment
// variables. Nested keys use "__" in the environment and "." internally.
package config

import (
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/rs/zerolog/log"
)

const (
	EnvDelimiter    = "__"
	ConfigDelimiter = "."

	KeyInitialCapacity = "SSFI_INITIAL_CAPACITY"
	KeyMaxProbes       = "SSFI_MAX_PROBES"
	KeyTopCount        = "SSFI_TOP_COUNT"
)

// AppConfig can be accessed concurrently once Init has run.
var AppConfig *koanf.Koanf

func Init() {
	AppConfig = koanf.New(ConfigDelimiter)

	AppConfig.Load(confmap.Provider(map[string]interface{}{
		KeyInitialCapacity: 32,
		KeyMaxProbes:       8,
		KeyTopCount:        10,
	}, ConfigDelimiter), nil)

	// Environment variables override the defaults above.
	if err := AppConfig.Load(env.Provider("", EnvDelimiter, nil), nil); err != nil {
		log.Panic().Err(err).Msg("loading environment configuration")
	}
}
