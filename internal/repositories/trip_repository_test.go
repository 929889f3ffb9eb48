package repositories

import (
	"testing"
	"time"

	"campusbus/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCompleteIfActiveGuardsTerminalStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := TripRepository{DB: db}
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)

	mock.ExpectExec("UPDATE trips SET status=").
		WithArgs(string(models.TripCompleted), now, int64(3), string(models.TripCompleted), string(models.TripCancelled)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.CompleteIfActive(3, now)
	if err != nil {
		t.Fatalf("complete error: %v", err)
	}
	if !changed {
		t.Fatal("expected the active trip to flip to completed")
	}

	// Terminal row: the guard matches nothing, so the sweep reports no change.
	mock.ExpectExec("UPDATE trips SET status=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err = repo.CompleteIfActive(3, now)
	if err != nil {
		t.Fatalf("complete error: %v", err)
	}
	if changed {
		t.Fatal("terminal trip must not report a change")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelIfActiveGuardsTerminalStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := TripRepository{DB: db}
	now := time.Now()

	mock.ExpectExec("UPDATE trips SET status=").
		WithArgs(string(models.TripCancelled), now, int64(8), string(models.TripCompleted), string(models.TripCancelled)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.CancelIfActive(8, now)
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if changed {
		t.Fatal("cancelling a terminal trip must not report a change")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
