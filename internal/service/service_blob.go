package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/store"
	"github.com/MKhiriev/go-secure-vault/internal/zksync"
)

// blobService is the relay side of the sync. It can tell a well-formed
// payload from garbage but holds nothing that would let it decrypt one.
type blobService struct {
	blobs store.BlobRepository

	logger *logger.Logger
}

func NewBlobService(blobs store.BlobRepository, logger *logger.Logger) BlobService {
	return &blobService{
		blobs:  blobs,
		logger: logger.Component("blob_service"),
	}
}

// PutBlob stores payload as received after checking its structure.
func (s *blobService) PutBlob(ctx context.Context, owner, recordID string, payload []byte) error {
	if err := checkOwnerAndID(owner, recordID); err != nil {
		return err
	}
	if _, err := zksync.DecodePayload(payload); err != nil {
		return err
	}

	if err := s.blobs.PutBlob(ctx, owner, recordID, payload); err != nil {
		return fmt.Errorf("put blob: %w", err)
	}
	return nil
}

func (s *blobService) GetBlob(ctx context.Context, owner, recordID string) ([]byte, error) {
	if err := checkOwnerAndID(owner, recordID); err != nil {
		return nil, err
	}

	payload, err := s.blobs.GetBlob(ctx, owner, recordID)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return payload, nil
}

func (s *blobService) ListBlobs(ctx context.Context, owner string) ([]string, error) {
	if owner == "" {
		return nil, ErrNoOwner
	}

	ids, err := s.blobs.ListBlobIDs(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	return ids, nil
}

func (s *blobService) DeleteBlob(ctx context.Context, owner, recordID string) error {
	if err := checkOwnerAndID(owner, recordID); err != nil {
		return err
	}

	if err := s.blobs.DeleteBlob(ctx, owner, recordID); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func checkOwnerAndID(owner, recordID string) error {
	if owner == "" {
		return ErrNoOwner
	}
	return ValidateRecordID(recordID)
}
