// Package config loads typed configuration structs from the environment.
//
// It combines github.com/joho/godotenv, which reads an optional .env file,
// with github.com/caarlos0/env/v11, which parses `env` struct tags. Each
// config type is parsed once and cached for the life of the process:
//
//	var cfg httpserver.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Reset clears the cache; it exists for tests.
package config
