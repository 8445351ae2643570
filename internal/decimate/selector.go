package decimate

import (
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// Select narrows records to the depth range named by the configuration.
// Filter mode none is the identity, as is an unknown range id: selection
// fails open so a stale id never blanks the operator's view. Boundary depths
// are inclusive at both ends. A range with start > end matches nothing,
// which is a valid empty result.
func Select(records []domain.DrillingRecord, cfg domain.DecimationConfig, sections, formations []domain.DepthRange) []domain.DrillingRecord {
	var ranges []domain.DepthRange
	switch cfg.FilterMode {
	case domain.FilterSection:
		ranges = sections
	case domain.FilterFormation:
		ranges = formations
	default:
		return records
	}

	r, ok := domain.FindRange(ranges, cfg.SelectedRangeID)
	if !ok {
		return records
	}

	filtered := make([]domain.DrillingRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Depth) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// ActiveRange returns the depth range selection would apply, or false when
// filtering is off or the id is unknown. Callers use it to build cache keys
// that change when the effective range changes.
func ActiveRange(cfg domain.DecimationConfig, sections, formations []domain.DepthRange) (domain.DepthRange, bool) {
	switch cfg.FilterMode {
	case domain.FilterSection:
		return domain.FindRange(sections, cfg.SelectedRangeID)
	case domain.FilterFormation:
		return domain.FindRange(formations, cfg.SelectedRangeID)
	default:
		return domain.DepthRange{}, false
	}
}
