package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-secure-vault/internal/adapter"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/zksync"
	"github.com/MKhiriev/go-secure-vault/models"
)

type clientSyncService struct {
	sealer    RecordSealer
	eraser    RecordEraser
	transport adapter.SyncTransport

	logger *logger.Logger
}

// NewClientSyncService wires the zero-knowledge codec to a transport.
func NewClientSyncService(sealer RecordSealer, eraser RecordEraser, transport adapter.SyncTransport, logger *logger.Logger) ClientSyncService {
	return &clientSyncService{
		sealer:    sealer,
		eraser:    eraser,
		transport: transport,
		logger:    logger.Component("client_sync"),
	}
}

func (s *clientSyncService) Push(ctx context.Context, record models.Record) error {
	if err := ValidateRecordID(record.ID); err != nil {
		return err
	}

	payload, err := s.sealer.EncryptForSync(ctx, record)
	if err != nil {
		return fmt.Errorf("push %s: %w", record.ID, err)
	}

	data, err := zksync.EncodePayload(payload)
	if err != nil {
		return fmt.Errorf("push %s: %w", record.ID, err)
	}

	if err = s.transport.Push(ctx, record.ID, data); err != nil {
		return fmt.Errorf("push %s: %w", record.ID, mapAdapterError(err))
	}

	s.logger.Info().Str("record_id", record.ID).Int("bytes", len(data)).Msg("record pushed")
	return nil
}

func (s *clientSyncService) Pull(ctx context.Context, recordID string) (models.Record, error) {
	if err := ValidateRecordID(recordID); err != nil {
		return models.Record{}, err
	}

	data, err := s.transport.Pull(ctx, recordID)
	if err != nil {
		return models.Record{}, fmt.Errorf("pull %s: %w", recordID, mapAdapterError(err))
	}

	payload, err := zksync.DecodePayload(data)
	if err != nil {
		return models.Record{}, fmt.Errorf("pull %s: %w", recordID, err)
	}

	record, err := s.sealer.DecryptFromSync(ctx, recordID, payload)
	if err != nil {
		return models.Record{}, fmt.Errorf("pull %s: %w", recordID, err)
	}

	s.logger.Debug().Str("record_id", recordID).Msg("record pulled")
	return record, nil
}

func (s *clientSyncService) PullAll(ctx context.Context) ([]models.Record, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		record, err := s.Pull(ctx, id)
		if errors.Is(err, zksync.ErrKeyMismatch) {
			s.logger.Warn().Str("record_id", id).Msg("skipping record that cannot be opened")
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *clientSyncService) List(ctx context.Context) ([]string, error) {
	ids, err := s.transport.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", mapAdapterError(err))
	}
	return ids, nil
}

// Erase never leaves the record readable: the erasure key goes first, and a
// failure to reach the relay afterwards is reported as ErrRemoteDeleteFailed.
func (s *clientSyncService) Erase(ctx context.Context, recordID string) error {
	if err := ValidateRecordID(recordID); err != nil {
		return err
	}

	if err := s.eraser.EraseAll(ctx, recordID); err != nil {
		return err
	}

	if err := s.transport.Delete(ctx, recordID); err != nil {
		s.logger.Warn().Err(err).Str("record_id", recordID).Msg("relay copy not removed")
		return fmt.Errorf("%w: %w", ErrRemoteDeleteFailed, mapAdapterError(err))
	}

	s.logger.Info().Str("record_id", recordID).Msg("record erased")
	return nil
}
