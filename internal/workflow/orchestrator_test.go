package workflow

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/correction"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/ports"
)

type fakeLoader struct {
	tables map[string]*particle.Table
	loads  map[string]int
}

func (f *fakeLoader) Load(_ context.Context, path string) (*particle.Table, error) {
	f.loads[path]++
	t, ok := f.tables[path]
	if !ok {
		return nil, core.ErrFileNotFound
	}
	return t.Clone(), nil
}

type passthroughProcessor struct {
	calls int
}

func (p *passthroughProcessor) Process(raw *particle.Table) (*particle.Table, error) {
	p.calls++
	out := raw.Clone()
	for i := range out.Particles {
		out.Particles[i].SizeGeomMean = particle.GeomMean(out.Particles[i].Size1, out.Particles[i].Size2)
	}
	return out, nil
}

type memoryExporter struct {
	tables map[string]*particle.Table
	logs   map[string]*correction.Log
}

func (m *memoryExporter) ExportTable(_ context.Context, t *particle.Table, path string, _ ports.OutputFormat) error {
	m.tables[path] = t
	return nil
}

func (m *memoryExporter) ExportLog(_ context.Context, log *correction.Log, path string, _ ports.OutputFormat) error {
	m.logs[path] = log
	return nil
}

func wfParticle(id, sample string, size float64) particle.Particle {
	return particle.Particle{
		ID:               core.ParticleID(id),
		SampleName:       sample,
		Polymer:          "PE",
		Color:            "blue",
		Shape:            "fragment",
		Size1:            size,
		Size2:            size,
		Size3:            math.NaN(),
		FractionAnalysed: math.NaN(),
	}
}

func newHarness(tables map[string]*particle.Table, cfg *CorrectionConfig) (*Orchestrator, *fakeLoader, *passthroughProcessor, *memoryExporter) {
	cfg.applyDefaults()
	loader := &fakeLoader{tables: tables, loads: make(map[string]int)}
	proc := &passthroughProcessor{}
	exporter := &memoryExporter{tables: make(map[string]*particle.Table), logs: make(map[string]*correction.Log)}
	return NewOrchestrator(cfg, loader, proc, exporter, nil), loader, proc, exporter
}

func TestRun_SingleControlCorrection(t *testing.T) {
	tables := map[string]*particle.Table{
		"samples.xlsx": particle.NewTable("samples.xlsx", []particle.Particle{
			wfParticle("P1", "s1", 100),
			wfParticle("P2", "s1", 180),
		}),
		"blank.xlsx": particle.NewTable("blank.xlsx", []particle.Particle{
			wfParticle("C1", "s1", 110),
		}),
	}
	cfg := &CorrectionConfig{
		Corrections: map[string]ControlList{"samples.xlsx": {"blank.xlsx"}},
		Output:      Output{Directory: "out", Format: ports.FormatCSV},
	}

	orch, _, _, exporter := newHarness(tables, cfg)
	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.Equal(t, correction.KindBlank, step.Kind)
	assert.Equal(t, 2, step.OriginalParticles)
	assert.Equal(t, 1, step.FinalParticles)
	assert.Equal(t, 1, step.Eliminated)
	assert.Equal(t, 1, result.TotalEliminated)
	assert.NotEmpty(t, result.RunID)

	out, ok := exporter.tables["out/samples_corrected.csv"]
	require.True(t, ok, "corrected table written under the suffixed name")
	assert.Equal(t, []core.ParticleID{"P2"}, out.IDs())

	log, ok := exporter.logs["out/samples_corrected_log.csv"]
	require.True(t, ok)
	assert.Equal(t, 1, log.Len())
}

func TestRun_MultiControlUsesGroupedPass(t *testing.T) {
	tables := map[string]*particle.Table{
		"samples.xlsx": particle.NewTable("samples.xlsx", []particle.Particle{
			wfParticle("A1", "sampleA", 100),
			wfParticle("B1", "sampleB", 100),
		}),
		"blind1.xlsx": particle.NewTable("blind1.xlsx", []particle.Particle{
			wfParticle("C1", "blind1", 100),
		}),
		"blind2.xlsx": particle.NewTable("blind2.xlsx", []particle.Particle{
			wfParticle("C2", "blind2", 105),
		}),
	}
	cfg := &CorrectionConfig{
		Corrections: map[string]ControlList{"samples.xlsx": {"blind1.xlsx", "blind2.xlsx"}},
		Output:      Output{Directory: ".", Format: ports.FormatCSV},
	}

	orch, _, _, _ := newHarness(tables, cfg)
	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Steps, 1)
	assert.Equal(t, correction.KindBlind, result.Steps[0].Kind)
	// Two distinct blind samples with one particle each in the shared
	// phenotype group: the synthetic control keeps one.
	assert.Equal(t, 2, result.Steps[0].Eliminated, "one elimination per sample group")
}

func TestRun_EachFileLoadedAndProcessedOnce(t *testing.T) {
	tables := map[string]*particle.Table{
		"a.xlsx":     particle.NewTable("a.xlsx", []particle.Particle{wfParticle("A1", "a", 100)}),
		"b.xlsx":     particle.NewTable("b.xlsx", []particle.Particle{wfParticle("B1", "b", 100)}),
		"blank.xlsx": particle.NewTable("blank.xlsx", []particle.Particle{wfParticle("C1", "blank", 100)}),
	}
	cfg := &CorrectionConfig{
		Corrections: map[string]ControlList{
			"a.xlsx": {"blank.xlsx"},
			"b.xlsx": {"blank.xlsx"},
		},
		Output: Output{Directory: ".", Format: ports.FormatCSV},
	}

	orch, loader, proc, _ := newHarness(tables, cfg)
	_, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loader.loads["blank.xlsx"], "shared control loaded once")
	assert.Equal(t, 3, proc.calls, "three files, three processing passes")
}

func TestRun_ChainedCorrectionSeesCorrectedControl(t *testing.T) {
	// blank corrects the blind; the corrected blind then corrects the
	// samples. The blind's contaminated particle must be gone before the
	// blind is used as a control.
	tables := map[string]*particle.Table{
		"samples.xlsx": particle.NewTable("samples.xlsx", []particle.Particle{
			wfParticle("P1", "s1", 200),
		}),
		"blind.xlsx": particle.NewTable("blind.xlsx", []particle.Particle{
			wfParticle("D1", "blind", 100), // eliminated by the blank
			wfParticle("D2", "blind", 200),
		}),
		"blank.xlsx": particle.NewTable("blank.xlsx", []particle.Particle{
			wfParticle("C1", "blank", 100),
		}),
	}
	falseVal := false
	cfg := &CorrectionConfig{
		Corrections: map[string]ControlList{
			"samples.xlsx": {"blind.xlsx"},
			"blind.xlsx":   {"blank.xlsx"},
		},
		Settings: Settings{MatchOnSample: &falseVal},
		Output:   Output{Directory: ".", Format: ports.FormatCSV},
	}

	orch, _, _, exporter := newHarness(tables, cfg)
	result, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Steps, 2)

	assert.Equal(t, "blind.xlsx", result.Steps[0].TargetFile)
	assert.Equal(t, "samples.xlsx", result.Steps[1].TargetFile)

	// The blank removed D1; the surviving D2 (size 200) then removed P1.
	sampleLog := exporter.logs["samples_corrected_log.csv"]
	require.NotNil(t, sampleLog)
	require.Equal(t, 1, sampleLog.Len())
	assert.Equal(t, core.ParticleID("D2"), sampleLog.Eliminations[0].ControlID)
	assert.InDelta(t, 0, sampleLog.Eliminations[0].SizeDiff, 1e-9)
}

func TestRun_CycleFailsBeforeAnyIO(t *testing.T) {
	cfg := &CorrectionConfig{
		Corrections: map[string]ControlList{
			"a.xlsx": {"b.xlsx"},
			"b.xlsx": {"a.xlsx"},
		},
		Output: Output{Directory: ".", Format: ports.FormatCSV},
	}

	orch, loader, _, _ := newHarness(map[string]*particle.Table{}, cfg)
	_, err := orch.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, loader.loads, "no file may be touched when the graph is invalid")
}

func TestRun_MissingFileAbortsRun(t *testing.T) {
	cfg := &CorrectionConfig{
		Corrections: map[string]ControlList{"a.xlsx": {"blank.xlsx"}},
		Output:      Output{Directory: ".", Format: ports.FormatCSV},
	}

	orch, _, _, exporter := newHarness(map[string]*particle.Table{}, cfg)
	_, err := orch.Run(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
	assert.Empty(t, exporter.tables)
}
