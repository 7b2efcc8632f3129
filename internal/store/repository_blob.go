// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secure-vault/internal/logger"
)

const blobsTable = "relay_blobs"

// blobRepository is the relay's [BlobRepository] over the "relay_blobs"
// table, keyed by (owner, record_id).
type blobRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewBlobRepository constructs a [BlobRepository] backed by db.
func NewBlobRepository(db *DB, log *logger.Logger) BlobRepository {
	log.Debug().Msg("creating blob repository")
	return &blobRepository{db: db, logger: log, now: time.Now}
}

func (r *blobRepository) PutBlob(ctx context.Context, owner, recordID string, payload []byte) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert(blobsTable).
		Columns("owner", "record_id", "payload", "updated_at").
		Values(owner, recordID, payload, r.now().UnixMilli()).
		Suffix("ON CONFLICT (owner, record_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return errors.Join(ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "*blobRepository.PutBlob").
			Str("owner", owner).
			Str("record_id", recordID).
			Str("pg_code", postgresError(err)).
			Msg("error saving blob")
		return r.db.classify(err, ErrExecutingStatement)
	}
	return nil
}

func (r *blobRepository) GetBlob(ctx context.Context, owner, recordID string) ([]byte, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select("payload").
		From(blobsTable).
		Where(sq.Eq{"owner": owner, "record_id": recordID}).
		ToSql()
	if err != nil {
		return nil, errors.Join(ErrBuildingSQLQuery, err)
	}

	var payload []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrBlobNotFound
	case err != nil:
		log.Err(err).
			Str("func", "*blobRepository.GetBlob").
			Str("owner", owner).
			Str("record_id", recordID).
			Msg("error reading blob")
		return nil, r.db.classify(err, ErrExecutingQuery)
	}

	return payload, nil
}

func (r *blobRepository) ListBlobIDs(ctx context.Context, owner string) ([]string, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select("record_id").
		From(blobsTable).
		Where(sq.Eq{"owner": owner}).
		OrderBy("record_id").
		ToSql()
	if err != nil {
		return nil, errors.Join(ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*blobRepository.ListBlobIDs").Str("owner", owner).Msg("error listing blobs")
		return nil, r.db.classify(err, ErrExecutingQuery)
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

func (r *blobRepository) DeleteBlob(ctx context.Context, owner, recordID string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Delete(blobsTable).
		Where(sq.Eq{"owner": owner, "record_id": recordID}).
		ToSql()
	if err != nil {
		return errors.Join(ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "*blobRepository.DeleteBlob").
			Str("owner", owner).
			Str("record_id", recordID).
			Msg("error deleting blob")
		return r.db.classify(err, ErrExecutingStatement)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrBlobNotFound
	}
	return nil
}
