package frametimeline

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HistorySummary is the percentile/rate summary dump.go prints above
// the per-frame listing.
type HistorySummary struct {
	Count            int
	JankCount        int
	JankRate         float64
	P50PresentDeltaNs float64
	P95PresentDeltaNs float64
	P99PresentDeltaNs float64
}

// summarizeHistory computes percentile present-time deviation and jank
// rate over a slice of resolved DisplayFrames, the way the teacher
// layers stat.Quantile over a raw per-object series for an operator
// summary rather than hand-rolling percentile math.
func summarizeHistory(frames []*DisplayFrame) HistorySummary {
	if len(frames) == 0 {
		return HistorySummary{}
	}

	deltas := make([]float64, 0, len(frames))
	jankCount := 0
	for _, f := range frames {
		snap := f.snapshot()
		if snap.JankType.IsJanky() {
			jankCount++
		}
		if snap.PredictionState == PredictionValid {
			d := snap.Actuals.PresentTime - snap.Predictions.PresentTime
			deltas = append(deltas, float64(absInt64(d)))
		}
	}

	summary := HistorySummary{
		Count:     len(frames),
		JankCount: jankCount,
		JankRate:  float64(jankCount) / float64(len(frames)),
	}

	if len(deltas) == 0 {
		return summary
	}

	sorted := append([]float64(nil), deltas...)
	sort.Float64s(sorted)
	summary.P50PresentDeltaNs = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	summary.P95PresentDeltaNs = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	summary.P99PresentDeltaNs = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	return summary
}
