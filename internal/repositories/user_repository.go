package repositories

import (
	"database/sql"
	"strings"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const userColumns = `id, name, username, email, COALESCE(phone,''), role, status`

func (r UserRepository) GetByID(id int64) (models.User, error) {
	var u models.User
	err := r.db().QueryRow(`SELECT `+userColumns+` FROM users WHERE id=?`, id).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.Status)
	return u, err
}

// List returns active users, optionally narrowed to one role.
func (r UserRepository) List(role string) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE status='active'`
	args := []any{}
	if role = strings.TrimSpace(role); role != "" {
		query += ` AND role=?`
		args = append(args, role)
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Phone, &u.Role, &u.Status); err != nil {
			return out, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ListIDs returns ids of all active users.
func (r UserRepository) ListIDs() ([]int64, error) {
	return r.queryIDs(`SELECT id FROM users WHERE status='active' ORDER BY id ASC`)
}

// ListIDsByRole returns ids of active users holding the role.
func (r UserRepository) ListIDsByRole(role string) ([]int64, error) {
	return r.queryIDs(`SELECT id FROM users WHERE status='active' AND role=? ORDER BY id ASC`, strings.TrimSpace(role))
}

// FilterExistingIDs keeps only ids that refer to an existing active user, so an
// explicit broadcast target cannot fan out to phantom recipients.
func (r UserRepository) FilterExistingIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.queryIDs(`SELECT id FROM users WHERE status='active' AND id IN (`+placeholders+`) ORDER BY id ASC`, args...)
}

func (r UserRepository) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := r.db().Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
