// Package matching implements the phenotype matcher, the greedy correction
// engine and the synthetic control builder. Matching is intentionally greedy
// and order-sensitive: downstream audit logs are expected to match historical
// outputs, so the tie-break and iteration order here must never be "upgraded"
// to a globally optimal assignment.
package matching

import (
	"math"

	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/errors"
)

// Options configures one correction pass.
type Options struct {
	// Dimension is the size field used for difference computation.
	Dimension particle.SizeDimension
	// MatchOnSample additionally keys blank-style matching on sample name.
	MatchOnSample bool
}

// DefaultOptions matches on the geometric mean with sample-scoped blanks.
func DefaultOptions() Options {
	return Options{Dimension: particle.DimGeomMean, MatchOnSample: true}
}

// Match annotates a phenotype-matching candidate with its absolute size
// difference to the reference control particle.
type Match struct {
	Particle particle.Particle
	SizeDiff float64
}

// Matcher finds candidates matching a control particle on categorical
// identity. It only reads; elimination is the engine's job.
type Matcher struct {
	opts   Options
	log    *internal.Logger
	warned bool
}

// NewMatcher creates a matcher for one correction pass.
func NewMatcher(opts Options, logger *internal.Logger) *Matcher {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Matcher{opts: opts, log: logger.WithPrefix("Matcher")}
}

// FindMatches returns the subset of pool whose phenotype triple equals the
// reference's, each annotated with its size difference, in pool order. An
// empty result means "no match" and is not an error.
func (m *Matcher) FindMatches(ref particle.ControlParticle, pool []particle.Particle) []Match {
	refPh := ref.Phenotype()

	var matches []Match
	for _, cand := range pool {
		if cand.Phenotype() != refPh {
			continue
		}
		if m.opts.MatchOnSample && cand.SampleName != ref.SampleName {
			continue
		}
		matches = append(matches, Match{
			Particle: cand,
			SizeDiff: math.Abs(m.candidateSize(cand) - ref.ControlSize),
		})
	}
	return matches
}

// candidateSize resolves the configured dimension on the candidate, falling
// back to the geometric mean when that dimension is absent.
func (m *Matcher) candidateSize(cand particle.Particle) float64 {
	size, ok := cand.SizeValue(m.opts.Dimension)
	if ok {
		return size
	}
	if !m.warned {
		m.log.Warn("dimension %s absent on particle %s, falling back to geometric mean",
			m.opts.Dimension, cand.ID)
		m.warned = true
	}
	return cand.SizeGeomMean
}

// Closest returns the match with the smallest size difference; ties go to the
// candidate appearing first in pool order. Calling it on an empty match set
// is a programming-contract violation and fails loudly.
func Closest(matches []Match) (Match, error) {
	if len(matches) == 0 {
		return Match{}, errors.MatchContract("closest-candidate query on empty match set")
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.SizeDiff < best.SizeDiff {
			best = m
		}
	}
	return best, nil
}
