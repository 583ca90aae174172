package matching

import (
	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/correction"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
)

// Engine applies one pass of greedy matched elimination between a target
// pool and a control pool. Each control record eliminates at most one
// particle: among phenotype-matching candidates, the one with the smallest
// size difference. The target pool shrinks monotonically, so an eliminated
// particle can never be chosen again.
type Engine struct {
	opts Options
	log  *internal.Logger
}

// NewEngine creates an engine for the given matching options.
func NewEngine(opts Options, logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{opts: opts, log: logger.WithPrefix("CorrectionEngine")}
}

// SinglePass runs the blank-style correction: control records are processed
// one at a time in pool order against the current, already-shrunk target
// pool. Returns the corrected pool and the elimination log; the input table
// is not mutated.
func (e *Engine) SinglePass(target *particle.Table, controls *particle.ControlPool) (*particle.Table, *correction.Log, error) {
	e.log.Info("starting blank correction with %d environmental and %d control particles",
		target.Len(), controls.Len())

	corrected := target.Clone()
	elimLog := correction.NewLog(correction.KindBlank)

	matcher := NewMatcher(e.opts, e.log)
	for _, ctrl := range controls.Particles {
		matches := matcher.FindMatches(ctrl, corrected.Particles)
		if len(matches) == 0 {
			e.log.Debug("no matching particles for control %s", ctrl.ID)
			continue
		}

		best, err := Closest(matches)
		if err != nil {
			return nil, nil, err
		}

		corrected.RemoveID(best.Particle.ID)
		elimLog.Append(correction.Elimination{
			ControlID:    ctrl.ID,
			EliminatedID: best.Particle.ID,
			SampleName:   best.Particle.SampleName,
			Polymer:      best.Particle.Polymer,
			Color:        best.Particle.Color,
			Shape:        best.Particle.Shape,
			SizeDiff:     best.SizeDiff,
		})
		e.log.Debug("eliminated particle %s matching control %s (size diff %.2f)",
			best.Particle.ID, ctrl.ID, best.SizeDiff)
	}

	e.log.Info("blank correction complete, eliminated %d particles", elimLog.Len())
	return corrected, elimLog, nil
}

// GroupedPass runs the blind-style correction: the target pool is
// partitioned by sample name and each sample group independently repeats the
// single-pass logic against the synthetic control. Eliminations are
// reflected in the shared pool so a particle removed for one sample group is
// unreachable from every other view of it.
func (e *Engine) GroupedPass(target *particle.Table, controls *particle.ControlPool) (*particle.Table, *correction.Log, error) {
	e.log.Info("starting blind correction with %d environmental and %d synthetic control particles",
		target.Len(), controls.Len())

	corrected := target.Clone()
	elimLog := correction.NewLog(correction.KindBlind)

	// Grouping by sample already scopes candidates, so the matcher keys on
	// the phenotype triple alone inside a group.
	groupOpts := e.opts
	groupOpts.MatchOnSample = false
	matcher := NewMatcher(groupOpts, e.log)

	for _, group := range target.GroupBySample() {
		working := make([]particle.Particle, len(group.Particles))
		copy(working, group.Particles)
		eliminatedInSample := 0

		for _, ctrl := range controls.Particles {
			matches := matcher.FindMatches(ctrl, working)
			if len(matches) == 0 {
				continue
			}

			best, err := Closest(matches)
			if err != nil {
				return nil, nil, err
			}

			// A particle already eliminated for another view of the pool must
			// not be eliminated twice.
			if !corrected.ContainsID(best.Particle.ID) {
				continue
			}

			corrected.RemoveID(best.Particle.ID)
			working = removeByID(working, best.Particle.ID)
			elimLog.Append(correction.Elimination{
				ControlID:     ctrl.ID,
				ControlSample: ctrl.SampleName,
				EliminatedID:  best.Particle.ID,
				SampleName:    group.SampleName,
				Polymer:       best.Particle.Polymer,
				Color:         best.Particle.Color,
				Shape:         best.Particle.Shape,
				SizeDiff:      best.SizeDiff,
			})
			eliminatedInSample++
			e.log.Debug("eliminated particle %s from %s matching control %s (size diff %.2f)",
				best.Particle.ID, group.SampleName, ctrl.ID, best.SizeDiff)
		}

		e.log.Info("eliminated %d particles in sample %s", eliminatedInSample, group.SampleName)
	}

	e.log.Info("blind correction complete, eliminated %d particles", elimLog.Len())
	return corrected, elimLog, nil
}

func removeByID(particles []particle.Particle, id core.ParticleID) []particle.Particle {
	for i, p := range particles {
		if p.ID == id {
			return append(particles[:i], particles[i+1:]...)
		}
	}
	return particles
}
