// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-secure-vault/internal/logger"
)

func newTestBlobRepo(t *testing.T) (*blobRepository, sqlmock.Sqlmock) {
	db, mock := newTestDB(t, DriverPostgres)
	repo := NewBlobRepository(db, logger.Nop()).(*blobRepository)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

// ── PutBlob ───────────────────────────────────────────────────────────────────

func TestBlobRepository_PutBlob(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectExec(`INSERT INTO relay_blobs \(owner,record_id,payload,updated_at\) VALUES \(\$1,\$2,\$3,\$4\) ON CONFLICT \(owner, record_id\)`).
		WithArgs("alice", "r1", []byte("{}"), fixedNow.UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.PutBlob(context.Background(), "alice", "r1", []byte("{}")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlobRepository_PutBlob_Deadlock(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectExec("INSERT INTO relay_blobs").
		WillReturnError(pgError(pgerrcode.DeadlockDetected))

	err := repo.PutBlob(context.Background(), "alice", "r1", []byte("{}"))
	assert.ErrorIs(t, err, ErrTransient)
}

// ── GetBlob ───────────────────────────────────────────────────────────────────

func TestBlobRepository_GetBlob(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectQuery(`SELECT payload FROM relay_blobs WHERE owner = \$1 AND record_id = \$2`).
		WithArgs("alice", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte("blob")))

	got, err := repo.GetBlob(context.Background(), "alice", "r1")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), got)
}

func TestBlobRepository_GetBlob_NotFound(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectQuery("SELECT payload FROM relay_blobs").
		WithArgs("bob", "r1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBlob(context.Background(), "bob", "r1")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

// ── ListBlobIDs ───────────────────────────────────────────────────────────────

func TestBlobRepository_ListBlobIDs(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectQuery(`SELECT record_id FROM relay_blobs WHERE owner = \$1 ORDER BY record_id`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"record_id"}).AddRow("a").AddRow("b"))

	ids, err := repo.ListBlobIDs(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestBlobRepository_ListBlobIDs_Empty(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectQuery("SELECT record_id FROM relay_blobs").
		WillReturnRows(sqlmock.NewRows([]string{"record_id"}))

	ids, err := repo.ListBlobIDs(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestBlobRepository_ListBlobIDs_RowError(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectQuery("SELECT record_id FROM relay_blobs").
		WillReturnRows(sqlmock.NewRows([]string{"record_id"}).
			AddRow("a").
			RowError(0, errors.New("broken row")))

	_, err := repo.ListBlobIDs(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrScanningRows)
}

func TestBlobRepository_ListBlobIDs_QueryError(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectQuery("SELECT record_id FROM relay_blobs").
		WillReturnError(pgError(pgerrcode.CannotConnectNow))

	_, err := repo.ListBlobIDs(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.ErrorIs(t, err, ErrTransient)
}

// ── DeleteBlob ────────────────────────────────────────────────────────────────

func TestBlobRepository_DeleteBlob(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectExec(`DELETE FROM relay_blobs WHERE owner = \$1 AND record_id = \$2`).
		WithArgs("alice", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteBlob(context.Background(), "alice", "r1"))
}

func TestBlobRepository_DeleteBlob_Missing(t *testing.T) {
	repo, mock := newTestBlobRepo(t)

	mock.ExpectExec("DELETE FROM relay_blobs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteBlob(context.Background(), "alice", "r1"), ErrBlobNotFound)
}
