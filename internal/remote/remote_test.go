package remote

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	_, err := m.Get(ctx, "db_backup", "backup")
	require.ErrorIs(t, err, common.ErrNotFound)

	doc := []byte(`{"v":1}`)
	require.NoError(t, m.Put(ctx, "db_backup", "backup", doc))
	doc[0] = 'X'

	got, err := m.Get(ctx, "db_backup", "backup")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(got), "store must keep its own copy")

	require.NoError(t, m.Put(ctx, "db_backup", "backup", []byte(`{"v":2}`)))
	got, err = m.Get(ctx, "db_backup", "backup")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	_, err = m.Get(ctx, "other", "backup")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	m := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.Put(ctx, "c", "d", nil), context.Canceled)
	_, err := m.Get(ctx, "c", "d")
	require.ErrorIs(t, err, context.Canceled)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(ctx, Options{Kind: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(ctx, Options{Kind: "Memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(ctx, Options{Kind: "firestore"})
	require.Error(t, err)

	s, err = Open(ctx, Options{Kind: KindS3})
	require.Error(t, err, "bucket is required")
	assert.True(t, s == nil, "a failed open must return an untyped nil")
}
