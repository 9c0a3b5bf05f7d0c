package remote

import (
	"context"
	"fmt"
	"strings"
)

// Kinds of remote store accepted by Open.
const (
	KindNone     = "none"
	KindMemory   = "memory"
	KindS3       = "s3"
	KindPostgres = "postgres"
)

// Options selects and configures a DocumentStore.
type Options struct {
	Kind        string
	S3          S3Options
	PostgresDSN string
}

// Open returns the DocumentStore described by opts, or nil for KindNone (and
// an empty kind). A nil store disables backup and restore. Stores holding
// resources implement io.Closer.
func Open(ctx context.Context, opts Options) (DocumentStore, error) {
	switch strings.ToLower(opts.Kind) {
	case "", KindNone:
		return nil, nil
	case KindMemory:
		return NewMemoryStore(), nil
	case KindS3:
		s, err := NewS3Store(ctx, opts.S3)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindPostgres:
		s, err := OpenPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown remote kind %q", opts.Kind)
	}
}
