package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal/matching"
)

type stubLoader struct {
	tables map[string]*particle.Table
}

func (s *stubLoader) Load(_ context.Context, path string) (*particle.Table, error) {
	t, ok := s.tables[path]
	if !ok {
		return nil, core.ErrFileNotFound
	}
	return t.Clone(), nil
}

type stubProcessor struct{}

func (stubProcessor) Process(raw *particle.Table) (*particle.Table, error) {
	out := raw.Clone()
	for i := range out.Particles {
		out.Particles[i].SizeGeomMean = particle.GeomMean(out.Particles[i].Size1, out.Particles[i].Size2)
	}
	return out, nil
}

func svcParticle(id, sample string, size float64) particle.Particle {
	return particle.Particle{
		ID: core.ParticleID(id), SampleName: sample,
		Polymer: "PE", Color: "blue", Shape: "fragment",
		Size1: size, Size2: size, Size3: math.NaN(), FractionAnalysed: math.NaN(),
	}
}

func TestCorrect_SingleControlPass(t *testing.T) {
	loader := &stubLoader{tables: map[string]*particle.Table{
		"samples.xlsx": particle.NewTable("samples.xlsx", []particle.Particle{
			svcParticle("P1", "s1", 100),
			svcParticle("P2", "s1", 180),
		}),
		"blank.xlsx": particle.NewTable("blank.xlsx", []particle.Particle{
			svcParticle("C1", "s1", 110),
		}),
	}}

	service := NewCorrectionService(loader, stubProcessor{}, nil)
	result, err := service.Correct(context.Background(), "samples.xlsx", "blank.xlsx",
		matching.Options{Dimension: particle.DimGeomMean, MatchOnSample: true})
	require.NoError(t, err)

	assert.Equal(t, []core.ParticleID{"P2"}, result.Corrected.IDs())
	require.Equal(t, 1, result.Log.Len())
	assert.Equal(t, core.ParticleID("P1"), result.Log.Eliminations[0].EliminatedID)
}

func TestCorrect_MissingTarget(t *testing.T) {
	service := NewCorrectionService(&stubLoader{tables: map[string]*particle.Table{}}, stubProcessor{}, nil)
	_, err := service.Correct(context.Background(), "absent.xlsx", "blank.xlsx", matching.DefaultOptions())
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}
