// Package report computes dataset statistics and renders run reports.
package report

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/robna/gepard-BlindCorr/domain/particle"
)

// SampleStats summarizes the size distribution of one sample.
type SampleStats struct {
	SampleName string
	Count      int
	Mean       float64
	Median     float64
	StdDev     float64
	Min        float64
	Max        float64
	Q25        float64
	Q75        float64
	Outliers   int
}

// SizeBin is one interval of a size histogram.
type SizeBin struct {
	Lower float64
	Upper float64
	Count int
}

// Analyzer computes per-sample statistics over a chosen size dimension.
type Analyzer struct {
	dim particle.SizeDimension
}

// NewAnalyzer creates a statistics analyzer for the given size dimension.
func NewAnalyzer(dim particle.SizeDimension) *Analyzer {
	return &Analyzer{dim: dim}
}

// AnalyzeTable produces statistics for every sample group of a table, in
// first-encountered sample order. Samples without any usable size values
// are reported with a zero count.
func (a *Analyzer) AnalyzeTable(t *particle.Table) []SampleStats {
	var results []SampleStats
	for _, group := range t.GroupBySample() {
		results = append(results, a.analyzeGroup(group))
	}
	return results
}

func (a *Analyzer) analyzeGroup(group particle.SampleGroup) SampleStats {
	sizes := a.sizes(group.Particles)
	result := SampleStats{SampleName: group.SampleName, Count: len(sizes)}
	if len(sizes) == 0 {
		return result
	}

	result.Mean, _ = stats.Mean(sizes)
	result.Median, _ = stats.Median(sizes)
	result.Min, _ = stats.Min(sizes)
	result.Max, _ = stats.Max(sizes)
	if len(sizes) > 1 {
		result.StdDev, _ = stats.StandardDeviation(sizes)
	}

	sorted := append([]float64(nil), sizes...)
	sort.Float64s(sorted)
	result.Q25 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	result.Q75 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	result.Outliers = countOutliers(sizes, result)
	return result
}

func (a *Analyzer) sizes(particles []particle.Particle) []float64 {
	var sizes []float64
	for _, p := range particles {
		if v, ok := p.SizeValue(a.dim); ok {
			sizes = append(sizes, v)
		}
	}
	return sizes
}

// countOutliers flags values outside both the IQR fences and three standard
// deviations. Requiring both keeps small samples from over-reporting.
func countOutliers(sizes []float64, s SampleStats) int {
	iqr := s.Q75 - s.Q25
	lowFence := s.Q25 - 1.5*iqr
	highFence := s.Q75 + 1.5*iqr

	outliers := 0
	for _, v := range sizes {
		iqrHit := v < lowFence || v > highFence
		zHit := s.StdDev > 0 && math.Abs(v-s.Mean)/s.StdDev > 3
		if iqrHit && zHit {
			outliers++
		}
	}
	return outliers
}

// SizeHistogram bins the usable size values of a table into equal-width
// intervals across [lower, upper).
func (a *Analyzer) SizeHistogram(t *particle.Table, lower, upper float64, bins int) []SizeBin {
	if bins <= 0 || upper <= lower {
		return nil
	}
	width := (upper - lower) / float64(bins)

	result := make([]SizeBin, bins)
	for i := range result {
		result[i].Lower = lower + float64(i)*width
		result[i].Upper = lower + float64(i+1)*width
	}
	for _, v := range a.sizes(t.Particles) {
		if v < lower || v >= upper {
			continue
		}
		idx := int((v - lower) / width)
		if idx >= bins {
			idx = bins - 1
		}
		result[idx].Count++
	}
	return result
}
