package repositories

import (
	"database/sql"
	"time"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, trip_id, student_id, COALESCE(stop_id,0), status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.TripID, &b.StudentID, &b.StopID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r BookingRepository) GetByID(id int64) (models.Booking, error) {
	return scanBooking(r.db().QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=?`, id))
}

// GetByTripStudent returns the latest booking for a (trip, student) pair.
func (r BookingRepository) GetByTripStudent(tripID, studentID int64) (models.Booking, error) {
	return scanBooking(r.db().QueryRow(`
		SELECT `+bookingColumns+` FROM bookings
		WHERE trip_id=? AND student_id=?
		ORDER BY id DESC LIMIT 1
	`, tripID, studentID))
}

func (r BookingRepository) ListByTrip(tripID int64) ([]models.Booking, error) {
	rows, err := r.db().Query(`SELECT `+bookingColumns+` FROM bookings WHERE trip_id=? ORDER BY id ASC`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CancelIfActive transitions a booking to cancelled only when it is not
// cancelled already. The guard is what keeps a duplicate absence mark from
// double-cancelling or double-notifying.
func (r BookingRepository) CancelIfActive(id int64, now time.Time) (bool, error) {
	res, err := r.db().Exec(`
		UPDATE bookings SET status=?, updated_at=?
		WHERE id=? AND status <> ?
	`, models.BookingCancelled, now, id, models.BookingCancelled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
