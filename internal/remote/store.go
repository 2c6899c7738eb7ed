package remote

import "context"

// Reader issues filtered reads against the backing store. dest must be a
// pointer to a slice; implementations leave it empty (not nil) when no rows match.
type Reader interface {
	Select(ctx context.Context, query Query, dest any) error
}

type Writer interface {
	Insert(ctx context.Context, table string, row any) error
	Upsert(ctx context.Context, table string, conflictColumn string, row any) error
}

type Store interface {
	Reader
	Writer
}

// Storage derives durable public URLs for stored objects.
type Storage interface {
	PublicURL(bucket, path string) string
}
