package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays FINTAB_* variables onto config. Unset variables leave the
// field alone. A non-nil environment replaces the process environment.
func parseEnv(config *Config, environment map[string]string) {
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		panic(err)
	}
}
