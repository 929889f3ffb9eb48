package repositories

import (
	"database/sql"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
)

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r BusRepository) GetByID(id int64) (models.Bus, error) {
	var b models.Bus
	err := r.db().QueryRow(`
		SELECT id, code, COALESCE(plate_number,''), COALESCE(capacity,0) FROM buses WHERE id=?
	`, id).Scan(&b.ID, &b.Code, &b.PlateNumber, &b.Capacity)
	return b, err
}

func (r BusRepository) List() ([]models.Bus, error) {
	rows, err := r.db().Query(`SELECT id, code, COALESCE(plate_number,''), COALESCE(capacity,0) FROM buses ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		var b models.Bus
		if err := rows.Scan(&b.ID, &b.Code, &b.PlateNumber, &b.Capacity); err != nil {
			return out, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
