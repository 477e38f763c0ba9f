// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads service configuration: built-in defaults, then
// an optional YAML file, then environment overrides (optionally read
// from a .env-style file).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		MaxFileSize int64  `yaml:"max_file_size"`
		UploadDir   string `yaml:"upload_dir"`
		OutputDir   string `yaml:"output_dir"`
	} `yaml:"server"`

	Detector struct {
		Enabled        bool   `yaml:"enabled"`
		BaseURL        string `yaml:"base_url"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"detector"`

	Redaction struct {
		MultiPass     bool `yaml:"multi_pass"`
		AutoDetectAll bool `yaml:"auto_detect_all"`
	} `yaml:"redaction"`

	Defaults struct {
		Categories string `yaml:"categories"` // comma-separated, "all" for everything
		Format     string `yaml:"format"`
		Verbose    bool   `yaml:"verbose"`
		Debug      bool   `yaml:"debug"`
		NoColor    bool   `yaml:"no_color"`
	} `yaml:"defaults"`
}

// Load reads configuration from the given YAML path. An empty path or
// missing file silently yields defaults; a present-but-broken file is
// an error. Environment variables override file values last.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8000
	cfg.Server.MaxFileSize = 10 << 20 // 10 MB
	cfg.Server.UploadDir = "uploads"
	cfg.Server.OutputDir = "outputs"

	cfg.Detector.Enabled = true
	cfg.Detector.BaseURL = "http://localhost:11434"
	cfg.Detector.Model = "mistral"
	cfg.Detector.TimeoutSeconds = 30

	cfg.Redaction.MultiPass = true
	cfg.Redaction.AutoDetectAll = false

	cfg.Defaults.Categories = "name,email,phone,address,credit_card,date"
	cfg.Defaults.Format = "text"
	return cfg
}

// applyEnv layers environment variables over the config. A config.env
// file in the working directory is loaded first when present, without
// clobbering variables already set in the real environment.
func applyEnv(cfg *Config) {
	godotenv.Load("config.env")

	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Detector.BaseURL = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		cfg.Detector.Model = v
	}
	if v := os.Getenv("DETECTOR_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Detector.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("API_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.Server.MaxFileSize = n
		}
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.Server.UploadDir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Server.OutputDir = v
	}
	if v := os.Getenv("HYBRID_MODE_ENABLED"); v != "" {
		cfg.Detector.Enabled = isTruthy(v)
	}
	if v := os.Getenv("MULTI_PASS_ENABLED"); v != "" {
		cfg.Redaction.MultiPass = isTruthy(v)
	}
	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Defaults.Debug = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "t", "yes":
		return true
	}
	return false
}

// FindConfigFile searches standard locations for a config file and
// returns the first hit, or empty when none exists.
func FindConfigFile() string {
	candidates := []string{
		"pii-redact.yaml",
		"pii-redact.yml",
		".pii-redact.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".config", "pii-redact", "config.yaml"),
			filepath.Join(home, ".pii-redact.yaml"),
		)
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate reports configuration problems.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Detector.BaseURL, "http://") && !strings.HasPrefix(c.Detector.BaseURL, "https://") {
		return fmt.Errorf("invalid detector base_url: %s", c.Detector.BaseURL)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	for _, dir := range []string{c.Server.UploadDir, c.Server.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ParseCategoryList converts the comma-separated category setting into
// wire identifiers. "all" or empty expands to every supported category.
func ParseCategoryList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "all" {
		return nil // caller expands to all
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
