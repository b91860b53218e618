// Package stations loads the reference station catalog from SQLite or a
// point shapefile, and provisions the SQLite catalog from NOAA.
package stations

import (
	"context"
	"fmt"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// Loader supplies the station catalog at startup.
type Loader interface {
	Load(ctx context.Context) ([]models.ReferenceStation, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]models.ReferenceStation, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) ([]models.ReferenceStation, error) {
	return f(ctx)
}

// Static is a fixed in-memory catalog.
type Static []models.ReferenceStation

// Load returns a copy of the catalog.
func (s Static) Load(context.Context) ([]models.ReferenceStation, error) {
	return append([]models.ReferenceStation(nil), s...), nil
}

type combined []Loader

// Combined merges several catalogs. When two loaders return the same
// (kind, id) the later one wins, keeping the position of the first.
func Combined(loaders ...Loader) Loader {
	return combined(loaders)
}

func (c combined) Load(ctx context.Context) ([]models.ReferenceStation, error) {
	type key struct {
		kind models.StationKind
		id   string
	}

	var merged []models.ReferenceStation
	positions := make(map[key]int)

	for i, l := range c {
		list, err := l.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading catalog %d: %w", i, err)
		}
		for _, s := range list {
			k := key{kind: s.Kind, id: s.ID}
			if pos, ok := positions[k]; ok {
				merged[pos] = s
				continue
			}
			positions[k] = len(merged)
			merged = append(merged, s)
		}
	}
	return merged, nil
}
