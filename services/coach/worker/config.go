// Copyright (C) 2026 HandLab AI (dev@handlab.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package worker

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config drives one worker process. Values come from an optional YAML
// file, then environment variables override field by field.
type Config struct {
	DatabaseURL string
	BatchSize   int
	Interval    time.Duration
	MaxBatches  int // 0 means run until drained or stopped
	LLMBackend  string
	CacheDir    string // empty disables the response cache
	RateLimit   float64
}

// yamlConfig is the file form; durations are strings like "30s" and
// numeric fields are pointers so absent keys do not clobber defaults.
type yamlConfig struct {
	DatabaseURL string   `yaml:"database_url"`
	BatchSize   *int     `yaml:"batch_size"`
	Interval    string   `yaml:"interval"`
	MaxBatches  *int     `yaml:"max_batches"`
	LLMBackend  string   `yaml:"llm_backend"`
	CacheDir    string   `yaml:"cache_dir"`
	RateLimit   *float64 `yaml:"rate_limit"`
}

// DefaultConfig returns the settings a bare worker runs with.
func DefaultConfig() Config {
	return Config{
		BatchSize:  25,
		Interval:   30 * time.Second,
		LLMBackend: "openai",
		RateLimit:  2.0,
	}
}

// LoadConfig reads the YAML file at path (skipped when path is empty)
// and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("worker: read config %s: %w", path, err)
		}
		var file yamlConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return cfg, fmt.Errorf("worker: parse config %s: %w", path, err)
		}
		if err := cfg.applyFile(file); err != nil {
			return cfg, fmt.Errorf("worker: config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyFile(f yamlConfig) error {
	if f.DatabaseURL != "" {
		c.DatabaseURL = f.DatabaseURL
	}
	if f.BatchSize != nil {
		c.BatchSize = *f.BatchSize
	}
	if f.Interval != "" {
		d, err := time.ParseDuration(f.Interval)
		if err != nil {
			return fmt.Errorf("bad interval %q: %w", f.Interval, err)
		}
		c.Interval = d
	}
	if f.MaxBatches != nil {
		c.MaxBatches = *f.MaxBatches
	}
	if f.LLMBackend != "" {
		c.LLMBackend = f.LLMBackend
	}
	if f.CacheDir != "" {
		c.CacheDir = f.CacheDir
	}
	if f.RateLimit != nil {
		c.RateLimit = *f.RateLimit
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("COACH_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv("COACH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Interval = d
		}
	}
	if v := os.Getenv("COACH_MAX_BATCHES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBatches = n
		}
	}
	if v := os.Getenv("LLM_BACKEND"); v != "" {
		c.LLMBackend = v
	}
	if v := os.Getenv("COACH_CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv("COACH_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("worker: database_url is required (set DATABASE_URL)")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("worker: batch_size must be positive, got %d", c.BatchSize)
	}
	if c.Interval < 0 {
		return fmt.Errorf("worker: interval must not be negative")
	}
	return nil
}
