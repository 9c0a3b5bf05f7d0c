// Package remote holds the document stores the backup synchronizer writes
// snapshots to. A document is an opaque byte payload addressed by a
// collection and a document id.
package remote

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/credvault/internal/common"
)

// DocumentStore is a remote key/value document service.
type DocumentStore interface {
	// Put stores doc at collection/docID, replacing any previous content.
	Put(ctx context.Context, collection, docID string, doc []byte) error

	// Get returns the document at collection/docID, or common.ErrNotFound.
	Get(ctx context.Context, collection, docID string) ([]byte, error)
}

// MemoryStore is an in-process DocumentStore.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func memKey(collection, docID string) string {
	return collection + "/" + docID
}

func (m *MemoryStore) Put(ctx context.Context, collection, docID string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[memKey(collection, docID)] = append([]byte(nil), doc...)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, docID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[memKey(collection, docID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}
