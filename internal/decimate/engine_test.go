package decimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

func intervalConfig(interval float64) domain.DecimationConfig {
	return domain.DecimationConfig{
		Strategy:      domain.StrategyDepthInterval,
		DepthInterval: interval,
	}
}

func binConfig(bins int) domain.DecimationConfig {
	return domain.DecimationConfig{
		Strategy: domain.StrategyBinCount,
		BinCount: bins,
	}
}

func rampRecords(n int, startDepth float64) []domain.DrillingRecord {
	records := make([]domain.DrillingRecord, n)
	for i := range records {
		records[i] = domain.DrillingRecord{
			Depth: startDepth + float64(i),
			WOB:   float64(i),
			RPM:   100 + float64(i),
			ROP:   10 + float64(i),
		}
	}
	return records
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd count", []float64{1, 2, 3}, 2},
		{"even count", []float64{1, 2, 3, 4}, 2.5},
		{"unsorted", []float64{3, 1, 2}, 2},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, median(tt.values))
		})
	}
}

func TestDecimateIntervalMedians(t *testing.T) {
	// Three records in one 10-unit bin: medians of each field.
	records := []domain.DrillingRecord{
		{Depth: 1001, WOB: 3, RPM: 110, ROP: 12},
		{Depth: 1002, WOB: 1, RPM: 130, ROP: 10},
		{Depth: 1003, WOB: 2, RPM: 120, ROP: 11},
	}

	points := Decimate(records, intervalConfig(10))
	require.Len(t, points, 1)

	assert.Equal(t, 1006.0, points[0].Depth, "bin center of [1001, 1011)")
	assert.Equal(t, 2.0, points[0].WOB)
	assert.Equal(t, 120.0, points[0].RPM)
	assert.Equal(t, 11.0, points[0].ROP)
}

func TestDecimateIntervalEvenCountMedian(t *testing.T) {
	records := []domain.DrillingRecord{
		{Depth: 1001, WOB: 1},
		{Depth: 1002, WOB: 2},
		{Depth: 1003, WOB: 3},
		{Depth: 1004, WOB: 4},
	}

	points := Decimate(records, intervalConfig(10))
	require.Len(t, points, 1)
	assert.Equal(t, 2.5, points[0].WOB)
}

func TestDecimateIntervalBounds(t *testing.T) {
	records := rampRecords(200, 1000.3)
	interval := 15.0

	points := Decimate(records, intervalConfig(interval))
	require.NotEmpty(t, points)

	minDepth := math.Floor(records[0].Depth)
	maxDepth := math.Ceil(records[len(records)-1].Depth)
	maxPoints := int(math.Ceil((maxDepth - minDepth) / interval))

	assert.LessOrEqual(t, len(points), maxPoints)
	for i, p := range points {
		assert.GreaterOrEqual(t, p.Depth, minDepth)
		assert.Less(t, p.Depth, maxDepth)
		if i > 0 {
			assert.Greater(t, p.Depth, points[i-1].Depth, "ascending depth")
		}
	}
}

func TestDecimateIntervalSkipsEmptyBins(t *testing.T) {
	// Two clusters separated by a gap; the empty bins in between emit
	// nothing.
	records := []domain.DrillingRecord{
		{Depth: 1000.5, WOB: 1},
		{Depth: 1001.5, WOB: 2},
		{Depth: 1100.5, WOB: 3},
	}

	points := Decimate(records, intervalConfig(10))
	require.Len(t, points, 2)
	assert.Equal(t, 1005.0, points[0].Depth)
	assert.Equal(t, 1105.0, points[1].Depth)
}

func TestDecimateIntervalExcludesFinalBoundary(t *testing.T) {
	// Span 1000..1100 is an exact multiple of the 50-unit interval, so the
	// bins are [1000,1050) and [1050,1100): the record at depth 1100 sits on
	// the final boundary and belongs to no bin.
	records := []domain.DrillingRecord{
		{Depth: 1000, WOB: 1},
		{Depth: 1050, WOB: 2},
		{Depth: 1100, WOB: 9},
	}

	points := Decimate(records, intervalConfig(50))
	require.Len(t, points, 2)
	assert.Equal(t, 1025.0, points[0].Depth)
	assert.Equal(t, 1.0, points[0].WOB)
	assert.Equal(t, 1075.0, points[1].Depth)
	assert.Equal(t, 2.0, points[1].WOB, "boundary record contributes to no median")

	// A fractional maximum rounds the ceiling past the boundary and keeps
	// the deepest record.
	records[2].Depth = 1100.5
	points = Decimate(records, intervalConfig(50))
	require.Len(t, points, 3)
	assert.Equal(t, 9.0, points[2].WOB)
}

func TestDecimateIntervalUnsortedInput(t *testing.T) {
	records := []domain.DrillingRecord{
		{Depth: 1100.5, WOB: 3},
		{Depth: 1000.5, WOB: 1},
		{Depth: 1001.5, WOB: 2},
	}

	points := Decimate(records, intervalConfig(10))
	require.Len(t, points, 2)
	assert.Equal(t, 1005.0, points[0].Depth)
}

func TestDecimateIntervalSentinel(t *testing.T) {
	records := rampRecords(10, 1000)

	assert.Nil(t, Decimate(records, intervalConfig(0)))
	assert.Nil(t, Decimate(records, intervalConfig(-5)))
	assert.Nil(t, Decimate(nil, intervalConfig(10)))
}

func TestDecimateBinCountMeans(t *testing.T) {
	records := rampRecords(100, 1000)

	points := Decimate(records, binConfig(10))
	require.Len(t, points, 10)

	// First chunk covers indices 0..9: depth mean 1004.5, wob mean 4.5.
	assert.InDelta(t, 1004.5, points[0].Depth, 1e-9)
	assert.InDelta(t, 4.5, points[0].WOB, 1e-9)
	assert.InDelta(t, 104.5, points[0].RPM, 1e-9)
	assert.InDelta(t, 14.5, points[0].ROP, 1e-9)

	// Last chunk covers indices 90..99.
	assert.InDelta(t, 1094.5, points[9].Depth, 1e-9)
}

func TestDecimateBinCountShortLastChunk(t *testing.T) {
	records := rampRecords(7, 1000)

	// bin_size = ceil(7/3) = 3 -> chunks of 3, 3, 1.
	points := Decimate(records, binConfig(3))
	require.Len(t, points, 3)
	assert.InDelta(t, 1006.0, points[2].Depth, 1e-9)
}

func TestDecimateBinCountPreservesOrder(t *testing.T) {
	// Input deliberately not depth-sorted; the mean strategy keeps row
	// order.
	records := []domain.DrillingRecord{
		{Depth: 2000, WOB: 1},
		{Depth: 1000, WOB: 2},
	}

	points := Decimate(records, binConfig(2))
	require.Len(t, points, 2)
	assert.Equal(t, 2000.0, points[0].Depth)
	assert.Equal(t, 1000.0, points[1].Depth)
}

func TestDecimateBinCountSentinel(t *testing.T) {
	records := rampRecords(10, 1000)

	assert.Nil(t, Decimate(records, binConfig(0)))
	assert.Nil(t, Decimate(records, binConfig(-1)))
}

func TestDecimateUnknownStrategy(t *testing.T) {
	records := rampRecords(10, 1000)
	assert.Nil(t, Decimate(records, domain.DecimationConfig{Strategy: "unknown"}))
}

func TestDecimateIdempotent(t *testing.T) {
	records := rampRecords(137, 1200.7)

	for _, cfg := range []domain.DecimationConfig{intervalConfig(12.5), binConfig(9)} {
		first := Decimate(records, cfg)
		second := Decimate(records, cfg)
		assert.Equal(t, first, second, "strategy %s", cfg.Strategy)
	}
}
