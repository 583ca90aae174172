package workflow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robna/gepard-BlindCorr/domain/correction"
	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
	apperrors "github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/internal/matching"
	"github.com/robna/gepard-BlindCorr/ports"
)

// Orchestrator executes a validated workflow declaration. Each dataset is
// loaded and preprocessed at most once per run; corrected tables replace
// their processed originals in the cache so later steps see corrected
// controls.
type Orchestrator struct {
	cfg      *CorrectionConfig
	loader   ports.TableLoader
	pre      ports.Preprocessor
	exporter ports.TableExporter
	log      *internal.Logger

	loaded    map[string]*particle.Table
	processed map[string]*particle.Table
}

// NewOrchestrator wires a workflow executor from its collaborators.
func NewOrchestrator(
	cfg *CorrectionConfig,
	loader ports.TableLoader,
	pre ports.Preprocessor,
	exporter ports.TableExporter,
	logger *internal.Logger,
) *Orchestrator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Orchestrator{
		cfg:       cfg,
		loader:    loader,
		pre:       pre,
		exporter:  exporter,
		log:       logger.WithPrefix("Workflow"),
		loaded:    make(map[string]*particle.Table),
		processed: make(map[string]*particle.Table),
	}
}

// Run resolves the correction graph and executes every step in dependency
// order. The first failing step aborts the run; files written by earlier
// steps are left in place.
func (o *Orchestrator) Run(ctx context.Context) (*correction.RunResult, error) {
	steps, err := Resolve(o.cfg.Corrections)
	if err != nil {
		return nil, err
	}

	result := &correction.RunResult{
		RunID:     core.NewRunID(),
		StartedAt: time.Now().UTC(),
	}
	o.log.Info("run %s: %d corrections resolved", result.RunID, len(steps))

	for _, step := range steps {
		stepResult, err := o.runStep(ctx, step)
		if err != nil {
			return nil, apperrors.Wrapf(err, "correction of %s failed", step.Target)
		}
		result.Steps = append(result.Steps, stepResult)
		result.TotalEliminated += stepResult.Eliminated
	}

	result.TotalCorrections = len(result.Steps)
	result.FinishedAt = time.Now().UTC()
	o.log.Info("run %s complete: %d particles eliminated across %d corrections",
		result.RunID, result.TotalEliminated, result.TotalCorrections)
	return result, nil
}

func (o *Orchestrator) runStep(ctx context.Context, step Step) (correction.StepResult, error) {
	target, err := o.processedTable(ctx, step.Target)
	if err != nil {
		return correction.StepResult{}, err
	}

	var (
		corrected *particle.Table
		elimLog   *correction.Log
	)
	if len(step.Controls) == 1 {
		corrected, elimLog, err = o.singleControl(ctx, target, step.Controls[0])
	} else {
		corrected, elimLog, err = o.multiControl(ctx, target, step.Controls)
	}
	if err != nil {
		return correction.StepResult{}, err
	}

	// Later steps that use this dataset as a control must see the
	// corrected version.
	o.processed[step.Target] = corrected

	outPath, logPath, err := o.export(ctx, step.Target, corrected, elimLog)
	if err != nil {
		return correction.StepResult{}, err
	}

	return correction.StepResult{
		TargetFile:        step.Target,
		ControlFiles:      step.Controls,
		Kind:              elimLog.Kind,
		OriginalParticles: target.Len(),
		FinalParticles:    corrected.Len(),
		Eliminated:        elimLog.Len(),
		OutputFile:        outPath,
		LogFile:           logPath,
		Log:               elimLog,
		LogHash:           elimLog.Fingerprint(),
	}, nil
}

// singleControl applies one control dataset directly, with sample identity
// in the match key unless the declaration opts out.
func (o *Orchestrator) singleControl(ctx context.Context, target *particle.Table, control string) (*particle.Table, *correction.Log, error) {
	pool, err := o.controlPool(ctx, control)
	if err != nil {
		return nil, nil, err
	}
	engine := matching.NewEngine(matching.Options{
		Dimension:     o.cfg.Settings.SizeMatchingDimension,
		MatchOnSample: o.cfg.MatchOnSample(),
	}, o.log)
	return engine.SinglePass(target, pool)
}

// multiControl pools every control dataset, condenses the pool to a
// synthetic control, and applies it per sample group of the target.
func (o *Orchestrator) multiControl(ctx context.Context, target *particle.Table, controls []string) (*particle.Table, *correction.Log, error) {
	pools := make([]*particle.ControlPool, 0, len(controls))
	for _, control := range controls {
		pool, err := o.controlPool(ctx, control)
		if err != nil {
			return nil, nil, err
		}
		pools = append(pools, pool)
	}

	combined := particle.Concat("combined controls", pools...)
	synthetic := matching.BuildSynthetic(combined, o.log)
	o.log.Info("synthetic control holds %d of %d pooled particles",
		synthetic.Len(), combined.Len())

	engine := matching.NewEngine(matching.Options{
		Dimension: o.cfg.Settings.SizeMatchingDimension,
	}, o.log)
	return engine.GroupedPass(target, synthetic)
}

// processedTable returns the preprocessed table for a path, loading and
// processing it on first use.
func (o *Orchestrator) processedTable(ctx context.Context, path string) (*particle.Table, error) {
	if t, ok := o.processed[path]; ok {
		return t, nil
	}
	raw, err := o.loadedTable(ctx, path)
	if err != nil {
		return nil, err
	}
	t, err := o.pre.Process(raw)
	if err != nil {
		return nil, err
	}
	o.processed[path] = t
	return t, nil
}

func (o *Orchestrator) loadedTable(ctx context.Context, path string) (*particle.Table, error) {
	if t, ok := o.loaded[path]; ok {
		return t, nil
	}
	t, err := o.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	o.loaded[path] = t
	return t, nil
}

func (o *Orchestrator) controlPool(ctx context.Context, path string) (*particle.ControlPool, error) {
	t, err := o.processedTable(ctx, path)
	if err != nil {
		return nil, err
	}
	pool, fallbacks := particle.Relabel(t, o.cfg.Settings.SizeMatchingDimension)
	if fallbacks > 0 {
		o.log.Warn("%d control particles in %s lack %s, using geometric mean size",
			fallbacks, path, o.cfg.Settings.SizeMatchingDimension)
	}
	return pool, nil
}

// export writes the corrected table and its elimination log side by side.
func (o *Orchestrator) export(ctx context.Context, target string, corrected *particle.Table, elimLog *correction.Log) (string, string, error) {
	stem := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
	ext := o.cfg.Output.Format.Extension()
	outPath := filepath.Join(o.cfg.Output.Directory,
		fmt.Sprintf("%s%s.%s", stem, o.cfg.Output.Suffix, ext))
	logPath := filepath.Join(o.cfg.Output.Directory,
		fmt.Sprintf("%s%s_log.%s", stem, o.cfg.Output.Suffix, ext))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.exporter.ExportTable(gctx, corrected, outPath, o.cfg.Output.Format)
	})
	g.Go(func() error {
		return o.exporter.ExportLog(gctx, elimLog, logPath, o.cfg.Output.Format)
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	o.log.Info("wrote %s and %s", outPath, logPath)
	return outPath, logPath, nil
}
