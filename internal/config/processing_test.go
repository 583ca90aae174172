package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robna/gepard-BlindCorr/domain/particle"
)

func TestDefaultProcessingConfig(t *testing.T) {
	cfg := DefaultProcessingConfig()
	assert.Equal(t, particle.DimSize1, cfg.SizeFilterDimension)
	assert.Equal(t, 50.0, cfg.SizeFilterHighpass)
	assert.Equal(t, 5000.0, cfg.SizeFilterLowpass)
	assert.Equal(t, particle.DimGeomMean, cfg.SizeMatchingDimension)
	assert.True(t, cfg.MatchOnSample)
	assert.Contains(t, cfg.ExcludedPolymers, "Poly (tetrafluoro ethylene)")
	assert.Equal(t, "unspecific", cfg.ColorStandardization["transparent"])
	assert.Equal(t, "irregular", cfg.ShapeStandardization["spherule"])
}

func TestLoadProcessingConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
size_filter_highpass: 100
size_matching_dimension: size_1
`), 0o644))

	cfg, err := LoadProcessingConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cfg.SizeFilterHighpass)
	assert.Equal(t, 5000.0, cfg.SizeFilterLowpass, "unset fields keep defaults")
	assert.Equal(t, particle.DimSize1, cfg.SizeMatchingDimension)
}

func TestLoadProcessingConfig_RejectsUnknownDimension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("size_matching_dimension: diameter\n"), 0o644))

	_, err := LoadProcessingConfig(path)
	require.Error(t, err)
}

func TestProcessingConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.yaml")
	cfg := DefaultProcessingConfig()
	cfg.SizeFilterLowpass = 1000

	require.NoError(t, cfg.Save(path))
	loaded, err := LoadProcessingConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, loaded.SizeFilterLowpass)
	assert.Equal(t, cfg.ExcludedPolymers, loaded.ExcludedPolymers)
}
