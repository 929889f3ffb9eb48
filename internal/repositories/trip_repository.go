package repositories

import (
	"database/sql"
	"time"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
)

// TripRepository wraps DB access for trips. Status writes go through guarded
// compare-and-set updates so terminal statuses are never overwritten.
type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripColumns = `id, trip_date, departure_time, arrival_time,
       COALESCE(route_id,0), COALESCE(bus_id,0), COALESCE(driver_id,0), COALESCE(supervisor_id,0),
       status, created_at, updated_at`

func scanTrip(row interface{ Scan(...any) error }) (models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID, &t.TripDate, &t.DepartureTime, &t.ArrivalTime,
		&t.RouteID, &t.BusID, &t.DriverID, &t.SupervisorID,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// ListAll returns every trip, newest first. The status sweep runs over the
// full collection, so no filter is applied at the SQL level.
func (r TripRepository) ListAll() ([]models.Trip, error) {
	rows, err := r.db().Query(`SELECT ` + tripColumns + ` FROM trips ORDER BY trip_date DESC, departure_time DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TripRepository) GetByID(id int64) (models.Trip, error) {
	return scanTrip(r.db().QueryRow(`SELECT `+tripColumns+` FROM trips WHERE id=?`, id))
}

func (r TripRepository) Create(t models.Trip) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO trips (trip_date, departure_time, arrival_time, route_id, bus_id, driver_id, supervisor_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, t.TripDate, t.DepartureTime, t.ArrivalTime, t.RouteID, t.BusID, t.DriverID, t.SupervisorID, t.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CompleteIfActive flips a trip to completed unless it already reached a
// terminal status. Returns whether a row actually changed.
func (r TripRepository) CompleteIfActive(id int64, now time.Time) (bool, error) {
	res, err := r.db().Exec(`
		UPDATE trips SET status=?, updated_at=?
		WHERE id=? AND status NOT IN (?, ?)
	`, models.TripCompleted, now, id, models.TripCompleted, models.TripCancelled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CancelIfActive marks a trip cancelled unless it already reached a terminal
// status. Returns whether a row actually changed.
func (r TripRepository) CancelIfActive(id int64, now time.Time) (bool, error) {
	res, err := r.db().Exec(`
		UPDATE trips SET status=?, updated_at=?
		WHERE id=? AND status NOT IN (?, ?)
	`, models.TripCancelled, now, id, models.TripCompleted, models.TripCancelled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
