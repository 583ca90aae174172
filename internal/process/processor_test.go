package process

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal/config"
)

func rawParticle(id, sample string) particle.Particle {
	return particle.Particle{
		ID:               core.ParticleID(id),
		SampleName:       sample,
		Polymer:          "PE",
		Color:            "blue",
		Shape:            "fragment",
		Size1:            100,
		Size2:            80,
		Size3:            math.NaN(),
		FractionAnalysed: math.NaN(),
	}
}

func testConfig() *config.ProcessingConfig {
	cfg := config.DefaultProcessingConfig()
	cfg.SizeFilterHighpass = 50
	cfg.SizeFilterLowpass = 5000
	return cfg
}

func TestProcess_ComputesGeomMean(t *testing.T) {
	pr := NewProcessor(testConfig(), nil)

	out, err := pr.Process(particle.NewTable("t", []particle.Particle{rawParticle("P1", "s1")}))
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.InDelta(t, math.Sqrt(100*80), out.Particles[0].SizeGeomMean, 1e-9)
}

func TestProcess_ExcludesPolymersAndLibraryEntries(t *testing.T) {
	ptfe := rawParticle("P1", "s1")
	ptfe.Polymer = "Poly (tetrafluoro ethylene)"

	dyed := rawParticle("P2", "s1")
	dyed.LibraryEntry = "PV23"

	keep := rawParticle("P3", "s1")

	pr := NewProcessor(testConfig(), nil)
	out, err := pr.Process(particle.NewTable("t", []particle.Particle{ptfe, dyed, keep}))
	require.NoError(t, err)
	assert.Equal(t, []core.ParticleID{"P3"}, out.IDs())
}

func TestProcess_AmplifiesByAnalysedFraction(t *testing.T) {
	half := rawParticle("P1", "s1")
	half.FractionAnalysed = 0.5

	third := rawParticle("P2", "s1")
	third.FractionAnalysed = 0.33

	pr := NewProcessor(testConfig(), nil)
	out, err := pr.Process(particle.NewTable("t", []particle.Particle{half, third}))
	require.NoError(t, err)

	assert.Equal(t, []core.ParticleID{"P1", "P1_1", "P2", "P2_1", "P2_2"}, out.IDs())
}

func TestProcess_AmplifyTreatsMissingFractionAsWhole(t *testing.T) {
	pr := NewProcessor(testConfig(), nil)
	out, err := pr.Process(particle.NewTable("t", []particle.Particle{rawParticle("P1", "s1")}))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestProcess_SizeFilterHalfOpen(t *testing.T) {
	atLow := rawParticle("P1", "s1")
	atLow.Size1 = 50 // inclusive lower bound
	below := rawParticle("P2", "s1")
	below.Size1 = 49.9
	atHigh := rawParticle("P3", "s1")
	atHigh.Size1 = 5000 // exclusive upper bound
	inside := rawParticle("P4", "s1")
	inside.Size1 = 4999.9

	pr := NewProcessor(testConfig(), nil)
	out, err := pr.Process(particle.NewTable("t", []particle.Particle{atLow, below, atHigh, inside}))
	require.NoError(t, err)
	assert.Equal(t, []core.ParticleID{"P1", "P4"}, out.IDs())
}

func TestProcess_SizeFilterKeepsParticlesLackingDimension(t *testing.T) {
	cfg := testConfig()
	cfg.SizeFilterDimension = particle.DimSize3

	tiny := rawParticle("P1", "s1") // size_3 is NaN, filter cannot apply
	tiny.Size1 = 1

	pr := NewProcessor(cfg, nil)
	out, err := pr.Process(particle.NewTable("t", []particle.Particle{tiny}))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestProcess_StandardizesCategories(t *testing.T) {
	p := rawParticle("P1", "s1")
	p.Color = "violet"
	p.Shape = "flake"

	pr := NewProcessor(testConfig(), nil)
	out, err := pr.Process(particle.NewTable("t", []particle.Particle{p}))
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "blue", out.Particles[0].Color)
	assert.Equal(t, "irregular", out.Particles[0].Shape)
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	p := rawParticle("P1", "s1")
	p.Color = "violet"
	in := particle.NewTable("t", []particle.Particle{p})

	pr := NewProcessor(testConfig(), nil)
	_, err := pr.Process(in)
	require.NoError(t, err)
	assert.Equal(t, "violet", in.Particles[0].Color)
}

func TestDetectSampleTypes(t *testing.T) {
	table := particle.NewTable("t", []particle.Particle{
		rawParticle("P1", "station4"),
		rawParticle("P2", "lab_blank_01"),
		rawParticle("P3", "blind_run_2"),
	})

	pr := NewProcessor(testConfig(), nil).(*Processor)
	types := pr.DetectSampleTypes(table)
	assert.Equal(t, SampleEnvironmental, types["station4"])
	assert.Equal(t, SampleBlank, types["lab_blank_01"])
	assert.Equal(t, SampleBlind, types["blind_run_2"])
}

func TestSeparateSampleTypes(t *testing.T) {
	env := rawParticle("P1", "station4")
	env.SizeGeomMean = particle.GeomMean(env.Size1, env.Size2)
	blank := rawParticle("P2", "blank_A")
	blank.SizeGeomMean = particle.GeomMean(blank.Size1, blank.Size2)
	blind := rawParticle("P3", "blind_A")
	blind.SizeGeomMean = particle.GeomMean(blind.Size1, blind.Size2)

	pr := NewProcessor(testConfig(), nil).(*Processor)
	envTable, blanks, blinds := pr.SeparateSampleTypes(
		particle.NewTable("t", []particle.Particle{env, blank, blind}))

	assert.Equal(t, []core.ParticleID{"P1"}, envTable.IDs())
	require.Equal(t, 1, blanks.Len())
	require.Equal(t, 1, blinds.Len())
	assert.InDelta(t, blank.SizeGeomMean, blanks.Particles[0].ControlSize, 1e-9)
}
