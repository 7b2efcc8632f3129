package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secure-vault/internal/keystore"
	"github.com/MKhiriev/go-secure-vault/internal/logger"
)

const keyHandlesTable = "key_handles"

// keyRepository is the SQL-backed [keystore.KeyStore]. Handles live in the
// "key_handles" table as opaque bytes.
type keyRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewKeyRepository constructs a [keystore.KeyStore] backed by db.
func NewKeyRepository(db *DB, log *logger.Logger) keystore.KeyStore {
	log.Debug().Msg("creating key handle repository")
	return &keyRepository{db: db, logger: log, now: time.Now}
}

// Put upserts the handle; the last write wins.
func (r *keyRepository) Put(ctx context.Context, id string, data []byte) error {
	query, args, err := r.db.builder.
		Insert(keyHandlesTable).
		Columns("id", "data", "updated_at").
		Values(id, data, r.now().UnixMilli()).
		Suffix("ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return errors.Join(ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "*keyRepository.Put").Str("handle", id).Msg("error saving key handle")
		return r.db.classify(err, ErrExecutingStatement)
	}
	return nil
}

// Get returns the stored bytes or [keystore.ErrKeyNotFound].
func (r *keyRepository) Get(ctx context.Context, id string) ([]byte, error) {
	query, args, err := r.db.builder.
		Select("data").
		From(keyHandlesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Join(ErrBuildingSQLQuery, err)
	}

	var data []byte
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, keystore.ErrKeyNotFound
	case err != nil:
		r.logger.Err(err).Str("func", "*keyRepository.Get").Str("handle", id).Msg("error reading key handle")
		return nil, r.db.classify(err, ErrExecutingQuery)
	}

	return data, nil
}

// Delete removes the handle. Missing ids are not an error.
func (r *keyRepository) Delete(ctx context.Context, id string) error {
	query, args, err := r.db.builder.
		Delete(keyHandlesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Join(ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "*keyRepository.Delete").Str("handle", id).Msg("error deleting key handle")
		return r.db.classify(err, ErrExecutingStatement)
	}
	return nil
}
