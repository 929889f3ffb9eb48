package repositories

import (
	"database/sql"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
)

type NotificationRepository struct {
	DB *sql.DB
}

func (r NotificationRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r NotificationRepository) Insert(n models.Notification) (int64, error) {
	res, err := r.db().Exec(`
		INSERT INTO notifications (user_id, title, message, type, is_read, trip_id, bus_id, created_at)
		VALUES (?, ?, ?, ?, ?, NULLIF(?,0), NULLIF(?,0), ?)
	`, n.UserID, n.Title, n.Message, n.Type, n.Read, n.TripID, n.BusID, n.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r NotificationRepository) GetByID(id int64) (models.Notification, error) {
	var n models.Notification
	err := r.db().QueryRow(`
		SELECT id, user_id, title, message, type, is_read, COALESCE(trip_id,0), COALESCE(bus_id,0), created_at
		FROM notifications
		WHERE id=?
	`, id).Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.TripID, &n.BusID, &n.CreatedAt)
	return n, err
}

func (r NotificationRepository) ListByUser(userID int64) ([]models.Notification, error) {
	rows, err := r.db().Query(`
		SELECT id, user_id, title, message, type, is_read, COALESCE(trip_id,0), COALESCE(bus_id,0), created_at
		FROM notifications
		WHERE user_id=?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.TripID, &n.BusID, &n.CreatedAt); err != nil {
			return out, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r NotificationRepository) CountUnread(userID int64) (int64, error) {
	var n int64
	err := r.db().QueryRow(`SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0`, userID).Scan(&n)
	return n, err
}

// MarkAllRead flips every unread notification of the user and returns how many
// rows changed.
func (r NotificationRepository) MarkAllRead(userID int64) (int64, error) {
	res, err := r.db().Exec(`UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetRead writes the read flag. MySQL reports zero affected rows when the
// flag already holds the value, so the result carries no existence signal;
// callers establish existence with GetByID first.
func (r NotificationRepository) SetRead(id int64, read bool) error {
	_, err := r.db().Exec(`UPDATE notifications SET is_read=? WHERE id=?`, read, id)
	return err
}

func (r NotificationRepository) Delete(id int64) error {
	_, err := r.db().Exec(`DELETE FROM notifications WHERE id=?`, id)
	return err
}
