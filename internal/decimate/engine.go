package decimate

import (
	"math"
	"sort"

	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// Decimate reduces records to summary points using the configured strategy.
// A nil return is the "no decimated output" sentinel: it covers empty input,
// a non-positive interval or bin count, and any other configuration the
// engine cannot act on. The engine never errors and keeps no state between
// invocations. EnableSmoothing and OutlierRemoval are ignored.
func Decimate(records []domain.DrillingRecord, cfg domain.DecimationConfig) []domain.DecimatedPoint {
	if len(records) == 0 {
		return nil
	}
	switch cfg.Strategy {
	case domain.StrategyDepthInterval:
		return decimateByInterval(records, cfg.DepthInterval)
	case domain.StrategyBinCount:
		return decimateByBinCount(records, cfg.BinCount)
	default:
		return nil
	}
}

// decimateByInterval sorts records by depth, walks fixed-width depth bins
// from floor(min depth) to ceil(max depth), and emits one point per occupied
// bin: the bin-center depth with per-field medians. Empty bins are skipped,
// never interpolated. Bins are half-open [start, start+interval): when the
// walked span is an exact multiple of the interval, a record sitting on the
// final boundary falls past the last bin and is not summarized.
func decimateByInterval(records []domain.DrillingRecord, interval float64) []domain.DecimatedPoint {
	if interval <= 0 {
		return nil
	}

	sorted := make([]domain.DrillingRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Depth < sorted[j].Depth
	})

	minDepth := math.Floor(sorted[0].Depth)
	maxDepth := math.Ceil(sorted[len(sorted)-1].Depth)

	points := make([]domain.DecimatedPoint, 0, int((maxDepth-minDepth)/interval)+1)
	next := 0
	for b := minDepth; b < maxDepth; b += interval {
		end := b + interval
		start := next
		for next < len(sorted) && sorted[next].Depth < end {
			next++
		}
		bin := sorted[start:next]
		if len(bin) == 0 {
			continue
		}

		wob := make([]float64, len(bin))
		rpm := make([]float64, len(bin))
		rop := make([]float64, len(bin))
		for i, rec := range bin {
			wob[i] = rec.WOB
			rpm[i] = rec.RPM
			rop[i] = rec.ROP
		}

		points = append(points, domain.DecimatedPoint{
			Depth: b + interval/2,
			WOB:   median(wob),
			RPM:   median(rpm),
			ROP:   median(rop),
		})
	}
	if len(points) == 0 {
		return nil
	}
	return points
}

// decimateByBinCount partitions records, in their existing order, into
// contiguous chunks of ceil(n/binCount) rows and emits the arithmetic mean
// of every field — depth included — per chunk. The last chunk may be short.
func decimateByBinCount(records []domain.DrillingRecord, binCount int) []domain.DecimatedPoint {
	if binCount <= 0 {
		return nil
	}

	binSize := (len(records) + binCount - 1) / binCount
	points := make([]domain.DecimatedPoint, 0, binCount)
	for start := 0; start < len(records); start += binSize {
		end := start + binSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		var p domain.DecimatedPoint
		for _, rec := range chunk {
			p.Depth += rec.Depth
			p.WOB += rec.WOB
			p.RPM += rec.RPM
			p.ROP += rec.ROP
		}
		n := float64(len(chunk))
		p.Depth /= n
		p.WOB /= n
		p.RPM /= n
		p.ROP /= n
		points = append(points, p)
	}
	return points
}

// median sorts a copy of values and returns the central element, or the
// average of the two central elements for even counts.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
