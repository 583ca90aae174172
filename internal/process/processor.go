// Package process implements the per-particle preprocessing pipeline that
// turns a raw loaded table into the processed pool the correction engine
// operates on.
package process

import (
	"fmt"
	"math"
	"strings"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/config"
	"github.com/robna/gepard-BlindCorr/ports"
)

// Processor applies polymer exclusion, replica amplification, geometric-mean
// computation, size-range filtering and categorical standardization, in that
// order.
type Processor struct {
	cfg *config.ProcessingConfig
	log *internal.Logger
}

// NewProcessor creates a preprocessing pipeline.
func NewProcessor(cfg *config.ProcessingConfig, logger *internal.Logger) ports.Preprocessor {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Processor{cfg: cfg, log: logger.WithPrefix("Processor")}
}

// Process runs the complete pipeline on a raw table. The input is not
// mutated.
func (pr *Processor) Process(raw *particle.Table) (*particle.Table, error) {
	pr.log.Info("starting particle processing for %d particles", raw.Len())

	t := raw.Clone()
	t.Particles = pr.excludePolymers(t.Particles)
	t.Particles = pr.amplify(t.Particles)
	t.Particles = computeGeomMean(t.Particles)
	t.Particles = pr.sizeFilter(t.Particles)
	t.Particles = pr.standardize(t.Particles)

	pr.log.Info("processing complete, %d particles remaining", t.Len())
	return t, nil
}

// excludePolymers removes particles whose polymer type or library entry is
// on the exclusion list (contamination and dyes).
func (pr *Processor) excludePolymers(particles []particle.Particle) []particle.Particle {
	excluded := make(map[string]struct{}, len(pr.cfg.ExcludedPolymers))
	for _, p := range pr.cfg.ExcludedPolymers {
		excluded[p] = struct{}{}
	}

	kept := particles[:0:0]
	for _, p := range particles {
		if _, hit := excluded[p.Polymer]; hit {
			continue
		}
		if p.LibraryEntry != "" {
			if _, hit := excluded[p.LibraryEntry]; hit {
				continue
			}
		}
		kept = append(kept, p)
	}

	if removed := len(particles) - len(kept); removed > 0 {
		pr.log.Info("excluded %d particles due to polymer type filtering", removed)
	}
	return kept
}

// amplify extrapolates each particle to the whole sample by replicating it
// round(1/fraction) times. Replicas after the first get a disambiguating id
// suffix so particle identity stays unique within the pool.
func (pr *Processor) amplify(particles []particle.Particle) []particle.Particle {
	var amplified []particle.Particle
	grew := false
	for _, p := range particles {
		fraction := p.FractionAnalysed
		if math.IsNaN(fraction) || fraction <= 0 {
			fraction = 1.0
		}
		factor := int(math.Round(1.0 / fraction))
		if factor < 1 {
			factor = 1
		}

		amplified = append(amplified, p)
		for rep := 1; rep < factor; rep++ {
			replica := p
			replica.ID = core.ParticleID(fmt.Sprintf("%s_%d", p.ID, rep))
			amplified = append(amplified, replica)
			grew = true
		}
	}

	if grew {
		pr.log.Info("amplified %d particles to %d particles", len(particles), len(amplified))
	}
	return amplified
}

// computeGeomMean derives the geometric-mean size for every particle.
func computeGeomMean(particles []particle.Particle) []particle.Particle {
	for i := range particles {
		particles[i].SizeGeomMean = particle.GeomMean(particles[i].Size1, particles[i].Size2)
	}
	return particles
}

// sizeFilter keeps particles inside [highpass, lowpass) on the configured
// filter dimension. Particles lacking that dimension are kept with a
// warning, matching the permissive behavior of the source pipeline.
func (pr *Processor) sizeFilter(particles []particle.Particle) []particle.Particle {
	dim := pr.cfg.SizeFilterDimension
	warned := false

	kept := particles[:0:0]
	for _, p := range particles {
		size, ok := p.SizeValue(dim)
		if !ok {
			if !warned {
				pr.log.Warn("size filter dimension %s absent, keeping unfiltered particles", dim)
				warned = true
			}
			kept = append(kept, p)
			continue
		}
		if size >= pr.cfg.SizeFilterHighpass && size < pr.cfg.SizeFilterLowpass {
			kept = append(kept, p)
		}
	}

	if removed := len(particles) - len(kept); removed > 0 {
		pr.log.Info("size filtering removed %d particles (kept %.0f-%.0f um)",
			removed, pr.cfg.SizeFilterHighpass, pr.cfg.SizeFilterLowpass)
	}
	return kept
}

// standardize folds color and shape synonyms into their canonical
// categories.
func (pr *Processor) standardize(particles []particle.Particle) []particle.Particle {
	for i := range particles {
		if canonical, ok := pr.cfg.ColorStandardization[particles[i].Color]; ok {
			particles[i].Color = canonical
		}
		if canonical, ok := pr.cfg.ShapeStandardization[particles[i].Shape]; ok {
			particles[i].Shape = canonical
		}
	}
	return particles
}

// SampleType classifies a sample by its name.
type SampleType string

const (
	SampleEnvironmental SampleType = "environmental"
	SampleBlank         SampleType = "blank"
	SampleBlind         SampleType = "blind"
)

// DetectSampleTypes classifies each distinct sample name in the table by the
// configured blank/blind name patterns; blind takes precedence over blank.
func (pr *Processor) DetectSampleTypes(t *particle.Table) map[string]SampleType {
	types := make(map[string]SampleType)
	for _, group := range t.GroupBySample() {
		st := SampleEnvironmental
		for _, pattern := range pr.cfg.BlankSamplePatterns {
			if strings.Contains(group.SampleName, pattern) {
				st = SampleBlank
				break
			}
		}
		for _, pattern := range pr.cfg.BlindSamplePatterns {
			if strings.Contains(group.SampleName, pattern) {
				st = SampleBlind
				break
			}
		}
		types[group.SampleName] = st
	}
	return types
}

// SeparateSampleTypes splits a processed table into environmental, blank and
// blind pools. Control pools get their matching size relabeled into the
// control size field so self-matches are structurally impossible.
func (pr *Processor) SeparateSampleTypes(t *particle.Table) (*particle.Table, *particle.ControlPool, *particle.ControlPool) {
	types := pr.DetectSampleTypes(t)

	env := particle.NewTable(t.Name, nil)
	blankTable := particle.NewTable(t.Name+" blanks", nil)
	blindTable := particle.NewTable(t.Name+" blinds", nil)
	for _, p := range t.Particles {
		switch types[p.SampleName] {
		case SampleBlank:
			blankTable.Append(p)
		case SampleBlind:
			blindTable.Append(p)
		default:
			env.Append(p)
		}
	}

	blanks, _ := particle.Relabel(blankTable, pr.cfg.SizeMatchingDimension)
	blinds, _ := particle.Relabel(blindTable, pr.cfg.SizeMatchingDimension)

	pr.log.Info("separated particles: %d environmental, %d blank, %d blind",
		env.Len(), blanks.Len(), blinds.Len())
	return env, blanks, blinds
}
