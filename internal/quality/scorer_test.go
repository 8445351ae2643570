package quality

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

func fullHeaders() []string {
	return []string{"Timestamp", "Depth", "WOB", "RPM", "ROP", "Pump Output"}
}

// steadyRows builds n rows with tight, fully populated values so the
// statistics score stays at 100.
func steadyRows(n int) []domain.RawRecord {
	rows := make([]domain.RawRecord, n)
	for i := range rows {
		rows[i] = domain.RawRecord{
			"Timestamp":   fmt.Sprintf("2024-03-01T00:%02d:00Z", i%60),
			"Depth":       fmt.Sprintf("%.1f", 1000.0+float64(i)),
			"WOB":         "8.5",
			"RPM":         "120",
			"ROP":         "15",
			"Pump Output": "950",
		}
	}
	return rows
}

func TestScoreEmptyInput(t *testing.T) {
	assert.Equal(t, domain.QualityReport{}, Score(nil, nil))
	assert.Equal(t, domain.QualityReport{}, Score(fullHeaders(), nil))
}

func TestScoreCleanTable(t *testing.T) {
	report := Score(fullHeaders(), steadyRows(20))

	assert.Equal(t, 100, report.Completeness)
	assert.Equal(t, 100, report.Conformity)
	assert.Equal(t, 100, report.Statistics)
	assert.Equal(t, 100, report.Overall)
}

func TestScoreBounds(t *testing.T) {
	tables := [][]domain.RawRecord{
		steadyRows(5),
		{{"Depth": "10"}, {"Depth": ""}},
		{{"junk": "x"}, {"junk": "y"}},
	}
	headers := [][]string{fullHeaders(), {"Depth"}, {"junk"}}

	for i, rows := range tables {
		report := Score(headers[i], rows)
		assert.True(t, report.IsValid(), "table %d: %+v", i, report)
		assert.GreaterOrEqual(t, report.Statistics, 75, "statistics floor")
	}
}

func TestScoreCompletenessPartial(t *testing.T) {
	// Depth always filled, RPM filled in half the rows, WOB and pump output
	// never present: (50 + 100 + 0 + 0) / 4 = 37.5 -> 38.
	rows := make([]domain.RawRecord, 10)
	for i := range rows {
		rows[i] = domain.RawRecord{"Depth": fmt.Sprintf("%d", 100+i)}
		if i%2 == 0 {
			rows[i]["RPM"] = "120"
		}
	}

	report := Score([]string{"Depth", "RPM"}, rows)
	assert.Equal(t, 38, report.Completeness)
}

func TestScoreConformity(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    int
	}{
		{"all four names", fullHeaders(), 100},
		{"three of four", []string{"Depth", "WOB", "RPM"}, 75},
		{"substring match", []string{"Hole Depth (ft)", "wob_avg", "Surface RPM", "timestamp_utc"}, 100},
		{"none", []string{"alpha", "beta"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []domain.RawRecord{{tt.headers[0]: "1"}}
			assert.Equal(t, tt.want, Score(tt.headers, rows).Conformity)
		})
	}
}

func TestScoreStatisticsFloor(t *testing.T) {
	// Alternate zeros and large values in every field so the population
	// variance dwarfs the mean for wob, rpm and depth alike. Three penalties
	// would give 70; the floor keeps it at 75.
	rows := make([]domain.RawRecord, 40)
	for i := range rows {
		v := "0.1"
		if i%2 == 0 {
			v = "10000"
		}
		rows[i] = domain.RawRecord{"Depth": v, "WOB": v, "RPM": v}
	}

	report := Score([]string{"Depth", "WOB", "RPM"}, rows)
	assert.Equal(t, 75, report.Statistics)
}

func TestScoreOverallIsRoundedMean(t *testing.T) {
	headers := []string{"Depth", "RPM"}
	rows := make([]domain.RawRecord, 10)
	for i := range rows {
		rows[i] = domain.RawRecord{"Depth": fmt.Sprintf("%d", 100+i)}
		if i%2 == 0 {
			rows[i]["RPM"] = "120"
		}
	}

	report := Score(headers, rows)
	want := int(math.Round(float64(report.Completeness+report.Conformity+report.Statistics) / 3))
	assert.Equal(t, want, report.Overall)
}

func TestScoreDeterministic(t *testing.T) {
	headers := fullHeaders()
	rows := steadyRows(30)

	first := Score(headers, rows)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Score(headers, rows))
	}
}
