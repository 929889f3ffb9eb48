package repositories

import (
	"database/sql"

	intconfig "campusbus/internal/config"
	"campusbus/internal/domain/models"
)

// RouteRepository serves read-only enrichment lookups; the engine never writes
// routes or stops.
type RouteRepository struct {
	DB *sql.DB
}

func (r RouteRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r RouteRepository) GetByID(id int64) (models.Route, error) {
	var rt models.Route
	err := r.db().QueryRow(`
		SELECT id, name, COALESCE(origin,''), COALESCE(destination,'') FROM routes WHERE id=?
	`, id).Scan(&rt.ID, &rt.Name, &rt.Origin, &rt.Destination)
	return rt, err
}

func (r RouteRepository) List() ([]models.Route, error) {
	rows, err := r.db().Query(`SELECT id, name, COALESCE(origin,''), COALESCE(destination,'') FROM routes ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Route{}
	for rows.Next() {
		var rt models.Route
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Origin, &rt.Destination); err != nil {
			return out, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r RouteRepository) GetStop(id int64) (models.Stop, error) {
	var s models.Stop
	err := r.db().QueryRow(`
		SELECT id, route_id, name, COALESCE(seq,0) FROM stops WHERE id=?
	`, id).Scan(&s.ID, &s.RouteID, &s.Name, &s.Seq)
	return s, err
}
