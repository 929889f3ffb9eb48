package repositories

import (
	"database/sql"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
)

// AttendanceRepository is append-only: rows are inserted, never updated or
// deleted, so a retried insert is always safe.
type AttendanceRepository struct {
	DB *sql.DB
}

func (r AttendanceRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r AttendanceRepository) Insert(a models.Attendance) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO attendance (student_id, trip_id, status, recorded_at)
		VALUES (?, ?, ?, ?)
	`, a.StudentID, a.TripID, a.Status, a.RecordedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListByTrip returns the full log for a trip ordered oldest first, so a later
// row for the same student always supersedes an earlier one.
func (r AttendanceRepository) ListByTrip(tripID int64) ([]models.Attendance, error) {
	rows, err := r.db().Query(`
		SELECT id, student_id, trip_id, status, recorded_at
		FROM attendance
		WHERE trip_id=?
		ORDER BY recorded_at ASC, id ASC
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Attendance{}
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(&a.ID, &a.StudentID, &a.TripID, &a.Status, &a.RecordedAt); err != nil {
			return out, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
