package excel

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/internal/config"
	"github.com/robna/gepard-BlindCorr/internal/errors"
)

func writeCSVFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fixtureHeader = "Spectrum ID,Sample,Polymer Type,Color,Shape,Long Size (µm),Short Size (µm)\n"

func TestLoad_CSV(t *testing.T) {
	path := writeCSVFixture(t, "station4.csv", fixtureHeader+
		"SP001,station4,PE,blue,fragment,120.5,60.2\n"+
		"SP002,station4,PP,red,fiber,340,12\n")

	loader := NewLoader(config.ExcelColumnMapping(), nil)
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	p := table.Particles[0]
	assert.Equal(t, core.ParticleID("SP001"), p.ID)
	assert.Equal(t, "station4", p.SampleName)
	assert.Equal(t, "PE", p.Polymer)
	assert.Equal(t, 120.5, p.Size1)
	assert.Equal(t, 60.2, p.Size2)
	assert.True(t, math.IsNaN(p.Size3), "absent size_3 column loads as NaN")
	assert.True(t, math.IsNaN(p.FractionAnalysed))
}

func TestLoad_SampleNameFallsBackToFilename(t *testing.T) {
	path := writeCSVFixture(t, "station7.csv",
		"Spectrum ID,Polymer Type,Color,Shape,Long Size (µm),Short Size (µm)\n"+
			"SP001,PE,blue,fragment,100,50\n")

	loader := NewLoader(config.ExcelColumnMapping(), nil)
	table, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "station7", table.Particles[0].SampleName)
}

func TestLoad_MissingColumnsReportedByName(t *testing.T) {
	path := writeCSVFixture(t, "bad.csv",
		"Spectrum ID,Color,Shape,Long Size (µm)\n"+
			"SP001,blue,fragment,100\n")

	loader := NewLoader(config.ExcelColumnMapping(), nil)
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
	assert.Contains(t, err.Error(), "Polymer Type")
	assert.Contains(t, err.Error(), "Short Size (µm)")
}

func TestLoad_DuplicateParticleID(t *testing.T) {
	path := writeCSVFixture(t, "dup.csv", fixtureHeader+
		"SP001,s,PE,blue,fragment,100,50\n"+
		"SP001,s,PE,blue,fragment,110,55\n")

	loader := NewLoader(config.ExcelColumnMapping(), nil)
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataInvalid, errors.GetCode(err))
}

func TestLoad_MalformedSizeIncludesRowNumber(t *testing.T) {
	path := writeCSVFixture(t, "bad_size.csv", fixtureHeader+
		"SP001,s,PE,blue,fragment,100,50\n"+
		"SP002,s,PE,blue,fragment,abc,50\n")

	loader := NewLoader(config.ExcelColumnMapping(), nil)
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestLoad_NegativeSizeRejected(t *testing.T) {
	path := writeCSVFixture(t, "neg.csv", fixtureHeader+
		"SP001,s,PE,blue,fragment,-5,50\n")

	loader := NewLoader(config.ExcelColumnMapping(), nil)
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	loader := NewLoader(config.ExcelColumnMapping(), nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
