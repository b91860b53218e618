package spots

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/swellwatch/internal/circular"
	"github.com/ngmaloney/swellwatch/internal/engine"
	"github.com/ngmaloney/swellwatch/internal/models"
	"github.com/ngmaloney/swellwatch/internal/trigger"
)

func TestLoadFileAndResolve(t *testing.T) {
	defs, err := LoadFile(filepath.Join("testdata", "spots.json"))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	resolved, err := Resolve(defs)
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	nauset := resolved[0]
	assert.Equal(t, "nauset", nauset.Spot.ID)
	assert.Equal(t, "44018", nauset.Spot.BuoyID)
	require.NotNil(t, nauset.Spot.Exposure)
	assert.Equal(t, circular.Range{Start: 0, End: 180}, *nauset.Spot.Exposure)
	require.Len(t, nauset.Windows, 2)

	w := nauset.Windows[0]
	assert.Equal(t, "nauset-fall", w.ID)
	assert.Equal(t, "nauset", w.SpotID)
	assert.Equal(t, "u-1", w.UserID)
	assert.Equal(t, 9.0, w.PeriodSec.Min)
	assert.Equal(t, models.TideRising, w.TideDirection)

	generated := nauset.Windows[1]
	assert.NotEmpty(t, generated.ID)
	assert.Equal(t, "nauset", generated.SpotID)
	assert.True(t, generated.SwellDirection.Unconstrained)

	assert.Empty(t, resolved[1].Windows)
	assert.Equal(t, "9414290", resolved[1].Spot.TideStationID)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, writeFile(bad, `{"spot": {}}`))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestResolve_Rejects(t *testing.T) {
	valid := engine.Spot{ID: "a", Lat: 41, Lon: -70}

	tests := []struct {
		name string
		defs []Definition
	}{
		{"missing spot id", []Definition{{Spot: engine.Spot{Lat: 41, Lon: -70}}}},
		{"bad latitude", []Definition{{Spot: engine.Spot{ID: "a", Lat: 91, Lon: -70}}}},
		{"duplicate spot", []Definition{{Spot: valid}, {Spot: valid}}},
		{"foreign trigger", []Definition{{Spot: valid, Triggers: []trigger.Draft{{ID: "t", SpotID: "b"}}}}},
		{"inverted bounds", []Definition{{Spot: valid, Triggers: []trigger.Draft{{
			HeightFt: trigger.Bounds{Min: trigger.Float(6), Max: trigger.Float(2)},
		}}}}},
		{"bad tide direction", []Definition{{Spot: valid, Triggers: []trigger.Draft{{TideDirection: "sideways"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.defs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidRange), "got %v", err)
		})
	}
}

func TestNormalize_WrapsExposure(t *testing.T) {
	def := Definition{Spot: engine.Spot{ID: "a", Lat: 41, Lon: -70, Exposure: &circular.Range{Start: -30, End: 390}}}
	require.NoError(t, def.Normalize())
	assert.Equal(t, circular.Range{Start: 330, End: 30}, *def.Spot.Exposure)
}
