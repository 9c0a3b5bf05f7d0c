// Package config loads credvault settings.
//
// Sources are applied in order, later ones taking precedence:
//  1. LoadDefaults
//  2. an optional JSON or YAML file (picked by extension)
//  3. CREDVAULT_* environment variables
//
// Command-line flags are layered on top by the caller.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/credvault/internal/backup"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/netx"
	"github.com/dmitrijs2005/credvault/internal/remote"
)

// Config holds runtime settings.
//
// Fields:
//   - DatabasePath: SQLite file of the credential store.
//   - KeyFile: vault key file; created on first run.
//   - HashAlgorithm: argon2id, bcrypt or sha256.
//   - LogLevel / LogFormat: slog level and handler (text or json).
//   - ProbeAddr / ProbeTimeout: connectivity check run before backup/restore.
//   - ProbeURL: when set, an HTTP HEAD to this URL replaces the TCP probe.
//   - Remote: backup destination.
//   - ExportDir: default directory for CSV export/import.
//   - BackupOnLogin: push a backup after every successful login.
type Config struct {
	DatabasePath  string
	KeyFile       string
	HashAlgorithm string
	LogLevel      string
	LogFormat     string
	ProbeAddr     string
	ProbeTimeout  time.Duration
	ProbeURL      string
	Remote        RemoteConfig
	ExportDir     string
	BackupOnLogin bool
}

// RemoteConfig selects the remote document store.
type RemoteConfig struct {
	Kind           string
	Collection     string
	DocumentID     string
	S3Region       string
	S3Bucket       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
	PostgresDSN    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "vault.db"
	c.KeyFile = "secret.key"
	c.HashAlgorithm = cryptox.AlgorithmArgon2id
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ProbeAddr = netx.DefaultProbeAddr
	c.ProbeTimeout = netx.DefaultProbeTimeout
	c.Remote = RemoteConfig{
		Kind:       remote.KindNone,
		Collection: backup.DefaultCollection,
		DocumentID: backup.DefaultDocumentID,
		S3Region:   "us-east-1",
	}
	c.ExportDir = "export"
}

// Load builds a Config from defaults, the file at path (skipped when path is
// empty) and the environment as seen through getenv, then validates it.
// A nil getenv disables environment overrides.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if getenv != nil {
		if err := applyEnv(cfg, getenv); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.KeyFile == "" {
		return fmt.Errorf("key_file is required")
	}
	if _, err := cryptox.NewHasher(c.HashAlgorithm); err != nil {
		return fmt.Errorf("hash_algorithm: %w", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("log_format must be 'text' or 'json'")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive")
	}
	if c.ProbeURL != "" {
		u, err := url.Parse(c.ProbeURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("probe_url must be an absolute http(s) URL")
		}
	}

	r := c.Remote
	if r.Collection == "" || r.DocumentID == "" {
		return fmt.Errorf("remote.collection and remote.document_id are required")
	}
	switch strings.ToLower(r.Kind) {
	case "", remote.KindNone, remote.KindMemory:
	case remote.KindS3:
		if r.S3Bucket == "" {
			return fmt.Errorf("remote.s3_bucket is required for the s3 remote")
		}
	case remote.KindPostgres:
		if r.PostgresDSN == "" {
			return fmt.Errorf("remote.postgres_dsn is required for the postgres remote")
		}
	default:
		return fmt.Errorf("remote.kind must be one of: none, memory, s3, postgres")
	}
	return nil
}

// Probe returns the connectivity check described by the probe settings.
func (c *Config) Probe() netx.Prober {
	if c.ProbeURL != "" {
		return &netx.HTTPProbe{URL: c.ProbeURL, Timeout: c.ProbeTimeout}
	}
	return netx.NewTCPProbe(c.ProbeAddr, c.ProbeTimeout)
}

// RemoteOptions converts the remote section for remote.Open.
func (c *Config) RemoteOptions() remote.Options {
	return remote.Options{
		Kind: c.Remote.Kind,
		S3: remote.S3Options{
			Region:       c.Remote.S3Region,
			Bucket:       c.Remote.S3Bucket,
			BaseEndpoint: c.Remote.S3BaseEndpoint,
			AccessKey:    c.Remote.S3AccessKey,
			SecretKey:    c.Remote.S3SecretKey,
		},
		PostgresDSN: c.Remote.PostgresDSN,
	}
}
