package matching

import (
	"github.com/montanaflynn/stats"

	"github.com/robna/gepard-BlindCorr/domain/correction"
)

// Summarize aggregates an elimination log into per-category counts and size
// difference statistics. Pure aggregation over the log; no re-matching.
func Summarize(log *correction.Log) correction.Summary {
	summary := correction.Summary{
		TotalEliminated: log.Len(),
		BySample:        make(map[string]int),
		ByControlSample: make(map[string]int),
		ByPolymer:       make(map[string]int),
		ByColor:         make(map[string]int),
		ByShape:         make(map[string]int),
	}

	diffs := make([]float64, 0, log.Len())
	for _, e := range log.Eliminations {
		summary.BySample[e.SampleName]++
		if e.ControlSample != "" {
			summary.ByControlSample[e.ControlSample]++
		}
		summary.ByPolymer[e.Polymer]++
		summary.ByColor[e.Color]++
		summary.ByShape[e.Shape]++
		diffs = append(diffs, e.SizeDiff)
	}

	if len(diffs) > 0 {
		// stats errors only on empty input, which is excluded here.
		summary.MeanSizeDiff, _ = stats.Mean(diffs)
		summary.MedianSizeDiff, _ = stats.Median(diffs)
	}

	return summary
}
