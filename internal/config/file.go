package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of Config, shared by JSON and YAML.
// Pointer fields distinguish "absent" from "empty" so a partial file only
// overrides what it names.
type fileConfig struct {
	DatabasePath  *string         `json:"database_path" yaml:"database_path"`
	KeyFile       *string         `json:"key_file" yaml:"key_file"`
	HashAlgorithm *string         `json:"hash_algorithm" yaml:"hash_algorithm"`
	LogLevel      *string         `json:"log_level" yaml:"log_level"`
	LogFormat     *string         `json:"log_format" yaml:"log_format"`
	ProbeAddr     *string         `json:"probe_addr" yaml:"probe_addr"`
	ProbeTimeout  *timex.Duration `json:"probe_timeout" yaml:"probe_timeout"`
	ProbeURL      *string         `json:"probe_url" yaml:"probe_url"`
	ExportDir     *string         `json:"export_dir" yaml:"export_dir"`
	BackupOnLogin *bool           `json:"backup_on_login" yaml:"backup_on_login"`
	Remote        *fileRemote     `json:"remote" yaml:"remote"`
}

type fileRemote struct {
	Kind           *string `json:"kind" yaml:"kind"`
	Collection     *string `json:"collection" yaml:"collection"`
	DocumentID     *string `json:"document_id" yaml:"document_id"`
	S3Region       *string `json:"s3_region" yaml:"s3_region"`
	S3Bucket       *string `json:"s3_bucket" yaml:"s3_bucket"`
	S3BaseEndpoint *string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3AccessKey    *string `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    *string `json:"s3_secret_key" yaml:"s3_secret_key"`
	PostgresDSN    *string `json:"postgres_dsn" yaml:"postgres_dsn"`
}

// loadFile overlays cfg with the file at path. Files ending in .yaml or .yml
// are parsed as YAML, anything else as JSON.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	fc.apply(cfg)
	return nil
}

func set(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (fc *fileConfig) apply(cfg *Config) {
	set(&cfg.DatabasePath, fc.DatabasePath)
	set(&cfg.KeyFile, fc.KeyFile)
	set(&cfg.HashAlgorithm, fc.HashAlgorithm)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.ProbeAddr, fc.ProbeAddr)
	set(&cfg.ProbeURL, fc.ProbeURL)
	set(&cfg.ExportDir, fc.ExportDir)
	if fc.BackupOnLogin != nil {
		cfg.BackupOnLogin = *fc.BackupOnLogin
	}
	if fc.ProbeTimeout != nil {
		cfg.ProbeTimeout = fc.ProbeTimeout.Duration
	}

	if r := fc.Remote; r != nil {
		set(&cfg.Remote.Kind, r.Kind)
		set(&cfg.Remote.Collection, r.Collection)
		set(&cfg.Remote.DocumentID, r.DocumentID)
		set(&cfg.Remote.S3Region, r.S3Region)
		set(&cfg.Remote.S3Bucket, r.S3Bucket)
		set(&cfg.Remote.S3BaseEndpoint, r.S3BaseEndpoint)
		set(&cfg.Remote.S3AccessKey, r.S3AccessKey)
		set(&cfg.Remote.S3SecretKey, r.S3SecretKey)
		set(&cfg.Remote.PostgresDSN, r.PostgresDSN)
	}
}
