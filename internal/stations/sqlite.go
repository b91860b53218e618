package stations

import (
	"context"
	"fmt"

	"github.com/ngmaloney/swellwatch/internal/database"
	"github.com/ngmaloney/swellwatch/internal/models"
)

// SQLiteCatalog reads the reference_stations table.
type SQLiteCatalog struct {
	Path string
}

// Load returns every station in the catalog. Rows with an unknown kind
// or invalid coordinates are skipped.
func (c SQLiteCatalog) Load(ctx context.Context) ([]models.ReferenceStation, error) {
	db, err := database.Open(c.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	has, err := database.HasTable(db, database.CatalogTable)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%s has no station catalog; run provisioning first", c.Path)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT kind, id, name, COALESCE(region, ''), COALESCE(exposure, ''), latitude, longitude
		FROM reference_stations
		ORDER BY kind, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying stations: %w", err)
	}
	defer rows.Close()

	var result []models.ReferenceStation
	for rows.Next() {
		var kind, id, name, region, exposure string
		var lat, lon float64

		if err := rows.Scan(&kind, &id, &name, &region, &exposure, &lat, &lon); err != nil {
			continue
		}

		station, ok := newStation(kind, id, name, region, exposure, lat, lon)
		if !ok {
			continue
		}
		result = append(result, station)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stations: %w", err)
	}
	return result, nil
}

// newStation validates raw catalog fields.
func newStation(kind, id, name, region, exposure string, lat, lon float64) (models.ReferenceStation, bool) {
	k, ok := models.ParseStationKind(kind)
	if !ok || k == models.KindAny || id == "" {
		return models.ReferenceStation{}, false
	}
	point, err := models.NewGeoPoint(lat, lon)
	if err != nil {
		return models.ReferenceStation{}, false
	}
	exp, _ := models.ParseExposure(exposure)
	return models.ReferenceStation{
		ID:       id,
		Name:     name,
		Location: point,
		Kind:     k,
		Region:   region,
		Exposure: exp,
	}, true
}
