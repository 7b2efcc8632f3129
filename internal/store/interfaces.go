//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

package store

import "context"

// BlobRepository stores opaque sync payloads per owner on the relay. It
// never interprets the bytes it holds.
type BlobRepository interface {
	PutBlob(ctx context.Context, owner, recordID string, payload []byte) error
	GetBlob(ctx context.Context, owner, recordID string) ([]byte, error)
	ListBlobIDs(ctx context.Context, owner string) ([]string, error)
	DeleteBlob(ctx context.Context, owner, recordID string) error
}
