package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/models"
)

const (
	attemptsTable = "vault_attempts"
	attemptsRowID = 1
)

// AttemptRepository persists the vault's failed-attempt counter in the
// single-row "vault_attempts" table. It satisfies vault.AttemptStore.
type AttemptRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewAttemptRepository constructs an [AttemptRepository] backed by db.
func NewAttemptRepository(db *DB, log *logger.Logger) *AttemptRepository {
	return &AttemptRepository{db: db, logger: log}
}

// Load returns the stored state, or the zero state if none was saved.
func (r *AttemptRepository) Load(ctx context.Context) (models.AttemptState, error) {
	query, args, err := r.db.builder.
		Select("failures", "last_failure_ms", "retry_after_ms").
		From(attemptsTable).
		Where(sq.Eq{"id": attemptsRowID}).
		ToSql()
	if err != nil {
		return models.AttemptState{}, errors.Join(ErrBuildingSQLQuery, err)
	}

	var (
		failures             int64
		lastFailure, retryAt int64
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&failures, &lastFailure, &retryAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.AttemptState{}, nil
	case err != nil:
		r.logger.Err(err).Str("func", "*AttemptRepository.Load").Msg("error reading attempt state")
		return models.AttemptState{}, r.db.classify(err, ErrExecutingQuery)
	}

	return models.AttemptState{
		Failures:    uint32(failures),
		LastFailure: fromMillis(lastFailure),
		RetryAfter:  fromMillis(retryAt),
	}, nil
}

// Save upserts the state row.
func (r *AttemptRepository) Save(ctx context.Context, state models.AttemptState) error {
	query, args, err := r.db.builder.
		Insert(attemptsTable).
		Columns("id", "failures", "last_failure_ms", "retry_after_ms").
		Values(attemptsRowID, int64(state.Failures), toMillis(state.LastFailure), toMillis(state.RetryAfter)).
		Suffix("ON CONFLICT (id) DO UPDATE SET failures = excluded.failures, " +
			"last_failure_ms = excluded.last_failure_ms, retry_after_ms = excluded.retry_after_ms").
		ToSql()
	if err != nil {
		return errors.Join(ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "*AttemptRepository.Save").Msg("error saving attempt state")
		return r.db.classify(err, ErrExecutingStatement)
	}
	return nil
}

// toMillis stores the zero time as 0.
func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
