package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/MKhiriev/go-secure-vault/internal/logger"
	"github.com/MKhiriev/go-secure-vault/internal/vault"
	"github.com/MKhiriev/go-secure-vault/models"
)

var _ vault.AttemptStore = (*AttemptRepository)(nil)

func TestAttemptRepository_Load_Empty(t *testing.T) {
	db, mock := newTestDB(t, DriverSQLite)
	repo := NewAttemptRepository(db, logger.Nop())

	mock.ExpectQuery(`SELECT failures, last_failure_ms, retry_after_ms FROM vault_attempts WHERE id = \?`).
		WithArgs(attemptsRowID).
		WillReturnError(sql.ErrNoRows)

	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != (models.AttemptState{}) {
		t.Errorf("expected zero state, got %+v", state)
	}
}

func TestAttemptRepository_Load_Stored(t *testing.T) {
	db, mock := newTestDB(t, DriverSQLite)
	repo := NewAttemptRepository(db, logger.Nop())

	last := fixedNow
	retry := fixedNow.Add(4 * time.Second)
	mock.ExpectQuery("SELECT failures").
		WillReturnRows(sqlmock.NewRows([]string{"failures", "last_failure_ms", "retry_after_ms"}).
			AddRow(5, last.UnixMilli(), retry.UnixMilli()))

	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Failures != 5 {
		t.Errorf("expected 5 failures, got %d", state.Failures)
	}
	if !state.LastFailure.Equal(last) || !state.RetryAfter.Equal(retry) {
		t.Errorf("times not restored: %+v", state)
	}
}

func TestAttemptRepository_Load_Error(t *testing.T) {
	db, mock := newTestDB(t, DriverSQLite)
	repo := NewAttemptRepository(db, logger.Nop())

	mock.ExpectQuery("SELECT failures").WillReturnError(errors.New("boom"))

	if _, err := repo.Load(context.Background()); !errors.Is(err, ErrExecutingQuery) {
		t.Fatalf("expected ErrExecutingQuery, got %v", err)
	}
}

func TestAttemptRepository_Save(t *testing.T) {
	db, mock := newTestDB(t, DriverPostgres)
	repo := NewAttemptRepository(db, logger.Nop())

	state := models.AttemptState{Failures: 3, LastFailure: fixedNow, RetryAfter: fixedNow.Add(time.Second)}
	mock.ExpectExec(`INSERT INTO vault_attempts \(id,failures,last_failure_ms,retry_after_ms\) VALUES \(\$1,\$2,\$3,\$4\) ON CONFLICT \(id\)`).
		WithArgs(attemptsRowID, int64(3), fixedNow.UnixMilli(), fixedNow.Add(time.Second).UnixMilli()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttemptRepository_Save_ZeroTimes(t *testing.T) {
	db, mock := newTestDB(t, DriverSQLite)
	repo := NewAttemptRepository(db, logger.Nop())

	mock.ExpectExec("INSERT INTO vault_attempts").
		WithArgs(attemptsRowID, int64(0), int64(0), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), models.AttemptState{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAttemptRepository_Save_Error(t *testing.T) {
	db, mock := newTestDB(t, DriverSQLite)
	repo := NewAttemptRepository(db, logger.Nop())

	mock.ExpectExec("INSERT INTO vault_attempts").WillReturnError(errors.New("full"))

	if err := repo.Save(context.Background(), models.AttemptState{Failures: 1}); !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
}
