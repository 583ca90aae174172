package app

import (
	"context"

	"github.com/robna/gepard-BlindCorr/domain/correction"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/matching"
	"github.com/robna/gepard-BlindCorr/ports"
)

// CorrectionService runs a single ad-hoc correction between one target file
// and one control file, outside of a workflow declaration.
type CorrectionService struct {
	loader ports.TableLoader
	pre    ports.Preprocessor
	log    *internal.Logger
}

func NewCorrectionService(loader ports.TableLoader, pre ports.Preprocessor, logger *internal.Logger) *CorrectionService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CorrectionService{loader: loader, pre: pre, log: logger.WithPrefix("Correction")}
}

// CorrectionResult bundles the corrected table with its elimination log.
type CorrectionResult struct {
	Corrected *particle.Table
	Log       *correction.Log
}

// Correct loads and preprocesses both files, relabels the control, and runs
// a single matched-elimination pass.
func (s *CorrectionService) Correct(ctx context.Context, targetPath, controlPath string, opts matching.Options) (*CorrectionResult, error) {
	target, err := s.load(ctx, targetPath)
	if err != nil {
		return nil, err
	}
	control, err := s.load(ctx, controlPath)
	if err != nil {
		return nil, err
	}

	pool, fallbacks := particle.Relabel(control, opts.Dimension)
	if fallbacks > 0 {
		s.log.Warn("%d control particles lack %s, using geometric mean size", fallbacks, opts.Dimension)
	}

	engine := matching.NewEngine(opts, s.log)
	corrected, elimLog, err := engine.SinglePass(target, pool)
	if err != nil {
		return nil, err
	}
	return &CorrectionResult{Corrected: corrected, Log: elimLog}, nil
}

func (s *CorrectionService) load(ctx context.Context, path string) (*particle.Table, error) {
	raw, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.pre.Process(raw)
}
