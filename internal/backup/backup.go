// Package backup copies the whole credential store to and from a remote
// document store as a single JSON snapshot. Ciphertext is copied verbatim;
// nothing is decrypted or re-encrypted on the way.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/models"
	"github.com/dmitrijs2005/credvault/internal/netx"
	"github.com/dmitrijs2005/credvault/internal/remote"
)

// Default location of the backup document.
const (
	DefaultCollection = "db_backup"
	DefaultDocumentID = "backup"
)

// Store is the part of the credential store the synchronizer needs.
type Store interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	ReplaceAll(ctx context.Context, snap *models.Snapshot) error
}

// Synchronizer mirrors a Store to one remote document.
type Synchronizer struct {
	store      Store
	remote     remote.DocumentStore
	probe      netx.Prober
	collection string
	docID      string
	log        logging.Logger
}

// Option customizes a Synchronizer.
type Option func(*Synchronizer)

// WithDocument overrides the collection and document id.
func WithDocument(collection, docID string) Option {
	return func(s *Synchronizer) {
		s.collection, s.docID = collection, docID
	}
}

func WithLogger(l logging.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// New returns a Synchronizer. A nil remote makes every call report failure;
// a nil probe assumes the network is reachable.
func New(st Store, rs remote.DocumentStore, probe netx.Prober, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:      st,
		remote:     rs,
		probe:      probe,
		collection: DefaultCollection,
		docID:      DefaultDocumentID,
		log:        logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Backup uploads a snapshot of the store and reports whether it succeeded.
// Failures are logged, never returned.
func (s *Synchronizer) Backup(ctx context.Context) bool {
	if err := s.BackupErr(ctx); err != nil {
		s.log.Warn(ctx, "backup failed", "error", err)
		return false
	}
	return true
}

// Restore replaces the store with the remote snapshot and reports whether it
// succeeded. On failure the local store is unchanged.
func (s *Synchronizer) Restore(ctx context.Context) bool {
	if err := s.RestoreErr(ctx); err != nil {
		s.log.Warn(ctx, "restore failed", "error", err)
		return false
	}
	return true
}

// BackupErr is Backup with the failure reason: common.ErrOffline when no
// remote is configured or the probe fails, otherwise the snapshot or upload
// error.
func (s *Synchronizer) BackupErr(ctx context.Context) error {
	if err := s.online(ctx); err != nil {
		return err
	}

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.remote.Put(ctx, s.collection, s.docID, doc); err != nil {
		return fmt.Errorf("upload snapshot: %w", err)
	}

	s.log.Info(ctx, "backup written",
		"snapshot", snap.ID, "accounts", len(snap.Accounts), "secrets", len(snap.Secrets))
	return nil
}

// RestoreErr is Restore with the failure reason: common.ErrOffline,
// common.ErrNoSnapshot when the document is absent, or an error matching
// common.ErrCorruptRecord when it cannot be decoded or validated.
func (s *Synchronizer) RestoreErr(ctx context.Context) error {
	if err := s.online(ctx); err != nil {
		return err
	}

	doc, err := s.remote.Get(ctx, s.collection, s.docID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNoSnapshot
		}
		return fmt.Errorf("download snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return fmt.Errorf("%w: decode snapshot: %v", common.ErrCorruptRecord, err)
	}

	if err := s.store.ReplaceAll(ctx, &snap); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}

	s.log.Info(ctx, "backup restored",
		"snapshot", snap.ID, "accounts", len(snap.Accounts), "secrets", len(snap.Secrets))
	return nil
}

func (s *Synchronizer) online(ctx context.Context) error {
	if s.remote == nil {
		return fmt.Errorf("%w: no remote store configured", common.ErrOffline)
	}
	if s.probe == nil {
		return nil
	}
	if err := s.probe.Probe(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrOffline, err)
	}
	return nil
}
