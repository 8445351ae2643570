package decimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

func sectionFixtures() []domain.DepthRange {
	return []domain.DepthRange{
		{ID: "surface", Label: "Surface", StartDepth: 0, EndDepth: 1000},
		{ID: "intermediate", Label: "Intermediate", StartDepth: 1000, EndDepth: 1100},
	}
}

func sectionConfig(mode domain.FilterMode, id string) domain.DecimationConfig {
	return domain.DecimationConfig{
		Strategy:        domain.StrategyDepthInterval,
		DepthInterval:   10,
		FilterMode:      mode,
		SelectedRangeID: id,
	}
}

func TestSelectNoFilter(t *testing.T) {
	records := rampRecords(50, 900)

	got := Select(records, sectionConfig(domain.FilterSection, ""), sectionFixtures(), nil)
	assert.Equal(t, records, got)

	got = Select(records, sectionConfig(domain.FilterNone, "intermediate"), sectionFixtures(), nil)
	assert.Equal(t, records, got)
}

func TestSelectInclusiveBounds(t *testing.T) {
	records := []domain.DrillingRecord{
		{Depth: 999.9},
		{Depth: 1000},
		{Depth: 1050},
		{Depth: 1100},
		{Depth: 1100.1},
	}

	got := Select(records, sectionConfig(domain.FilterSection, "intermediate"), sectionFixtures(), nil)
	require.Len(t, got, 3)
	assert.Equal(t, 1000.0, got[0].Depth, "start boundary is included")
	assert.Equal(t, 1100.0, got[2].Depth, "end boundary is included")
}

func TestSelectUnknownRangeFailsOpen(t *testing.T) {
	records := rampRecords(20, 950)

	got := Select(records, sectionConfig(domain.FilterSection, "no-such-range"), sectionFixtures(), nil)
	assert.Equal(t, records, got, "unknown range id returns the full dataset")
}

func TestSelectFormationMode(t *testing.T) {
	records := []domain.DrillingRecord{
		{Depth: 500},
		{Depth: 1050},
	}
	formations := []domain.DepthRange{
		{ID: "shale", Label: "Shale", StartDepth: 1000, EndDepth: 1100},
	}

	got := Select(records, sectionConfig(domain.FilterFormation, "shale"), nil, formations)
	require.Len(t, got, 1)
	assert.Equal(t, 1050.0, got[0].Depth)

	// Formation mode never consults the section collection.
	got = Select(records, sectionConfig(domain.FilterFormation, "surface"), sectionFixtures(), formations)
	assert.Equal(t, records, got)
}

func TestSelectEmptyRanges(t *testing.T) {
	records := rampRecords(20, 950)

	got := Select(records, sectionConfig(domain.FilterFormation, "anything"), nil, nil)
	assert.Equal(t, records, got)
}

func TestSelectEmptyResult(t *testing.T) {
	records := []domain.DrillingRecord{{Depth: 500}}

	got := Select(records, sectionConfig(domain.FilterSection, "intermediate"), sectionFixtures(), nil)
	assert.Empty(t, got)
}

func TestSelectInvertedRangeMatchesNothing(t *testing.T) {
	records := rampRecords(10, 1000)
	inverted := []domain.DepthRange{
		{ID: "inverted", StartDepth: 1100, EndDepth: 1000},
	}

	got := Select(records, sectionConfig(domain.FilterSection, "inverted"), inverted, nil)
	assert.Empty(t, got)
}

func TestActiveRange(t *testing.T) {
	sections := sectionFixtures()

	r, ok := ActiveRange(sectionConfig(domain.FilterSection, "intermediate"), sections, nil)
	require.True(t, ok)
	assert.Equal(t, "intermediate", r.ID)

	_, ok = ActiveRange(sectionConfig(domain.FilterNone, "intermediate"), sections, nil)
	assert.False(t, ok)

	_, ok = ActiveRange(sectionConfig(domain.FilterSection, "missing"), sections, nil)
	assert.False(t, ok)

	_, ok = ActiveRange(sectionConfig(domain.FilterSection, ""), sections, nil)
	assert.False(t, ok)

	r, ok = ActiveRange(sectionConfig(domain.FilterFormation, "shale"), sections,
		[]domain.DepthRange{{ID: "shale", StartDepth: 1000, EndDepth: 1100}})
	require.True(t, ok)
	assert.Equal(t, "shale", r.ID)
}
