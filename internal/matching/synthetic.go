package matching

import (
	"sort"

	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
)

// BuildSynthetic collapses control particles from N distinct control samples
// into one representative pool. Within each phenotype group the particles are
// sorted descending by control size and every Nth is kept starting at offset
// zero, so the synthetic control's size distribution stays representative of
// a single control sample's contribution instead of inflating it N-fold.
func BuildSynthetic(controls *particle.ControlPool, logger *internal.Logger) *particle.ControlPool {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	log := logger.WithPrefix("SyntheticControl")

	synthetic := &particle.ControlPool{Name: controls.Name}
	if controls.IsEmpty() {
		log.Warn("no control particles provided")
		return synthetic
	}

	stride := controls.DistinctSamples()
	if stride == 0 {
		return synthetic
	}
	log.Info("creating synthetic control from %d control samples", stride)

	// Phenotype groups in first-encountered order; deterministic, the order
	// across groups carries no matching semantics.
	var order []particle.Phenotype
	groups := make(map[particle.Phenotype][]particle.ControlParticle)
	for _, p := range controls.Particles {
		ph := p.Phenotype()
		if _, seen := groups[ph]; !seen {
			order = append(order, ph)
		}
		groups[ph] = append(groups[ph], p)
	}

	for _, ph := range order {
		group := groups[ph]
		// Stable sort keeps the original relative order for equal sizes.
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ControlSize > group[j].ControlSize
		})
		for i := 0; i < len(group); i += stride {
			synthetic.Particles = append(synthetic.Particles, group[i])
		}
	}

	log.Info("synthetic control holds %d of %d particles", synthetic.Len(), controls.Len())
	return synthetic
}
