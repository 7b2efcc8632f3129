package service

import (
	"context"

	"github.com/MKhiriev/go-secure-vault/models"
)

// BlobService is the relay's view of stored payloads: it checks that an
// upload is a well-formed zero-knowledge payload and keeps the bytes as they
// arrived, scoped to the authenticated owner.
type BlobService interface {
	PutBlob(ctx context.Context, owner, recordID string, payload []byte) error
	GetBlob(ctx context.Context, owner, recordID string) ([]byte, error)
	ListBlobs(ctx context.Context, owner string) ([]string, error)
	DeleteBlob(ctx context.Context, owner, recordID string) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// ClientSyncService moves records between the unlocked vault and the relay.
type ClientSyncService interface {
	// Push minimizes and seals record, then uploads it under record.ID.
	Push(ctx context.Context, record models.Record) error

	// Pull downloads the payload of recordID and opens it.
	Pull(ctx context.Context, recordID string) (models.Record, error)

	// PullAll opens every payload the relay holds for the caller. Records
	// whose erasure key is gone are skipped.
	PullAll(ctx context.Context) ([]models.Record, error)

	// List returns the record ids stored on the relay.
	List(ctx context.Context) ([]string, error)

	// Erase destroys the local erasure key of recordID, which makes every
	// synced copy unreadable, then asks the relay to drop its copy.
	Erase(ctx context.Context, recordID string) error
}

// RecordSealer is implemented by *zksync.Service.
type RecordSealer interface {
	EncryptForSync(ctx context.Context, record models.Record) (models.ZeroKnowledgePayload, error)
	DecryptFromSync(ctx context.Context, recordID string, payload models.ZeroKnowledgePayload) (models.Record, error)
}

// RecordEraser is implemented by *minimizer.Minimizer.
type RecordEraser interface {
	EraseAll(ctx context.Context, recordID string) error
}
