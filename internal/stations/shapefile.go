package stations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/ngmaloney/swellwatch/internal/models"
)

// Attribute columns of a station shapefile.
const (
	fieldID       = "ID"
	fieldName     = "NAME"
	fieldKind     = "KIND"
	fieldRegion   = "REGION"
	fieldExposure = "EXPOSURE"
)

var shapefileFields = []shp.Field{
	shp.StringField(fieldID, 16),
	shp.StringField(fieldName, 80),
	shp.StringField(fieldKind, 8),
	shp.StringField(fieldRegion, 32),
	shp.StringField(fieldExposure, 12),
}

// ShapefileCatalog reads stations from a point shapefile. Geometry X is
// longitude and Y latitude; attributes are ID, NAME, KIND, REGION and
// EXPOSURE (REGION and EXPOSURE may be absent).
type ShapefileCatalog struct {
	Path string
}

// Load reads every point record. Non-point records and rows with a bad
// kind or coordinates are skipped.
func (c ShapefileCatalog) Load(ctx context.Context) ([]models.ReferenceStation, error) {
	path := c.Path
	if !strings.HasSuffix(strings.ToLower(path), ".shp") {
		path += ".shp"
	}

	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	columns := make(map[string]int)
	for i, f := range shape.Fields() {
		columns[strings.ToUpper(f.String())] = i
	}
	for _, required := range []string{fieldID, fieldKind} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("shapefile %s has no %s field", c.Path, required)
		}
	}

	attr := func(row int, name string) string {
		i, ok := columns[name]
		if !ok {
			return ""
		}
		return strings.Trim(shape.ReadAttribute(row, i), "\x00 ")
	}

	var result []models.ReferenceStation
	for shape.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, p := shape.Shape()
		point, ok := p.(*shp.Point)
		if !ok {
			continue
		}

		station, ok := newStation(
			attr(n, fieldKind),
			attr(n, fieldID),
			attr(n, fieldName),
			attr(n, fieldRegion),
			attr(n, fieldExposure),
			point.Y, point.X,
		)
		if ok {
			result = append(result, station)
		}
	}
	if err := shape.Err(); err != nil {
		return nil, fmt.Errorf("reading shapefile: %w", err)
	}
	return result, nil
}

// ExportShapefile writes stations as a point shapefile readable by
// ShapefileCatalog. Attribute values longer than their column are cut.
func ExportShapefile(path string, stations []models.ReferenceStation) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return fmt.Errorf("creating shapefile: %w", err)
	}
	defer w.Close()

	if err := w.SetFields(shapefileFields); err != nil {
		return fmt.Errorf("setting shapefile fields: %w", err)
	}

	for _, s := range stations {
		row := int(w.Write(&shp.Point{X: s.Location.Lon, Y: s.Location.Lat}))
		values := []string{s.ID, s.Name, string(s.Kind), s.Region, string(s.Exposure)}
		for i, v := range values {
			if size := int(shapefileFields[i].Size); len(v) > size {
				v = v[:size]
			}
			if err := w.WriteAttribute(row, i, v); err != nil {
				return fmt.Errorf("writing %s of station %s: %w", shapefileFields[i].String(), s.ID, err)
			}
		}
	}
	return nil
}
