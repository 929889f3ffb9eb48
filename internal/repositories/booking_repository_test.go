package repositories

import (
	"testing"
	"time"

	"campusbus/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestBookingCancelIfActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := BookingRepository{DB: db}
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)

	mock.ExpectExec("UPDATE bookings SET status=").
		WithArgs(string(models.BookingCancelled), now, int64(7), string(models.BookingCancelled)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed, err := repo.CancelIfActive(7, now)
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if !changed {
		t.Fatal("expected the confirmed booking to be cancelled")
	}

	// Second cancel: the status <> cancelled guard matches no row.
	mock.ExpectExec("UPDATE bookings SET status=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err = repo.CancelIfActive(7, now)
	if err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if changed {
		t.Fatal("repeat cancel must be a no-op")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByTripStudentReturnsLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()
	repo := BookingRepository{DB: db}
	now := time.Now()

	mock.ExpectQuery("FROM bookings").WithArgs(int64(3), int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "student_id", "stop_id", "status", "created_at", "updated_at"}).
			AddRow(12, 3, 21, 0, string(models.BookingConfirmed), now, now))

	b, err := repo.GetByTripStudent(3, 21)
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if b.ID != 12 || b.Status != models.BookingConfirmed {
		t.Fatalf("unexpected booking: %+v", b)
	}
}
