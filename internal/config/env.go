package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CREDVAULT_"

// applyEnv overrides cfg with non-empty CREDVAULT_* variables.
func applyEnv(cfg *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"DB_PATH":            &cfg.DatabasePath,
		"KEY_FILE":           &cfg.KeyFile,
		"HASH_ALGORITHM":     &cfg.HashAlgorithm,
		"LOG_LEVEL":          &cfg.LogLevel,
		"LOG_FORMAT":         &cfg.LogFormat,
		"PROBE_ADDR":         &cfg.ProbeAddr,
		"PROBE_URL":          &cfg.ProbeURL,
		"EXPORT_DIR":         &cfg.ExportDir,
		"REMOTE_KIND":        &cfg.Remote.Kind,
		"REMOTE_COLLECTION":  &cfg.Remote.Collection,
		"REMOTE_DOCUMENT_ID": &cfg.Remote.DocumentID,
		"S3_REGION":          &cfg.Remote.S3Region,
		"S3_BUCKET":          &cfg.Remote.S3Bucket,
		"S3_BASE_ENDPOINT":   &cfg.Remote.S3BaseEndpoint,
		"S3_ACCESS_KEY":      &cfg.Remote.S3AccessKey,
		"S3_SECRET_KEY":      &cfg.Remote.S3SecretKey,
		"POSTGRES_DSN":       &cfg.Remote.PostgresDSN,
	}
	for name, dst := range strs {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	if v := getenv(EnvPrefix + "PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sPROBE_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.ProbeTimeout = d
	}

	if v := getenv(EnvPrefix + "BACKUP_ON_LOGIN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sBACKUP_ON_LOGIN: %w", EnvPrefix, err)
		}
		cfg.BackupOnLogin = b
	}
	return nil
}
