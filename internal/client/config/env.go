package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays cfg with the GOPHDASH_* variables that are set. Unset
// variables leave the current values alone.
func parseEnv(cfg *Config) {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		panic(err)
	}
}
