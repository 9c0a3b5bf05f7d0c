package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/credvault/internal/backup"
	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/config"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/remote"
	"github.com/dmitrijs2005/credvault/internal/services"
	"github.com/dmitrijs2005/credvault/internal/store"
)

// rootOptions holds the persistent flags. Non-empty values override the
// config file and environment.
type rootOptions struct {
	configPath string
	dbPath     string
	keyFile    string
	logLevel   string

	getenv func(string) string
}

// loadConfig applies flag overrides on top of config.Load.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	getenv := o.getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg, err := config.Load(o.configPath, getenv)
	if err != nil {
		return nil, err
	}

	if o.dbPath != "" {
		cfg.DatabasePath = o.dbPath
	}
	if o.keyFile != "" {
		cfg.KeyFile = o.keyFile
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// deps is everything a command needs, wired from one Config.
type deps struct {
	cfg     *config.Config
	log     logging.Logger
	store   *store.Store
	session *services.Session
	sync    *backup.Synchronizer

	closers []io.Closer
}

func setup(ctx context.Context, o *rootOptions, logOut io.Writer) (_ *deps, err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	key, err := cryptox.LoadOrCreateKey(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("key file: %w", err)
	}
	c, err := cryptox.NewCipher(key)
	common.WipeByteArray(key)
	if err != nil {
		return nil, err
	}

	h, err := cryptox.NewHasher(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	d.store, err = store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, d.store)

	rs, err := remote.Open(ctx, cfg.RemoteOptions())
	if err != nil {
		return nil, fmt.Errorf("remote: %w", err)
	}
	if cl, ok := rs.(io.Closer); ok {
		d.closers = append(d.closers, cl)
	}

	d.sync = backup.New(d.store, rs, cfg.Probe(),
		backup.WithDocument(cfg.Remote.Collection, cfg.Remote.DocumentID),
		backup.WithLogger(log.With("component", "backup")),
	)

	vault := services.NewVault(d.store, c, h, log.With("component", "vault"))
	d.session = services.NewSession(vault)

	log.Debug(ctx, "vault ready",
		"db", cfg.DatabasePath,
		"hash", cfg.HashAlgorithm,
		"remote", cfg.Remote.Kind,
	)
	return d, nil
}

// Close releases resources in reverse order of acquisition.
func (d *deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
