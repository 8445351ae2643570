package domain

// DepthRange is an operator-defined depth interval: a drilling section or a
// geological formation. StartDepth <= EndDepth is assumed, not enforced; a
// violating range simply matches no records.
type DepthRange struct {
	ID         string  `json:"id" validate:"required"`
	Label      string  `json:"label"`
	StartDepth float64 `json:"start_depth"`
	EndDepth   float64 `json:"end_depth"`
}

// Contains reports whether depth lies inside the range, inclusive at both
// ends.
func (r DepthRange) Contains(depth float64) bool {
	return depth >= r.StartDepth && depth <= r.EndDepth
}

// FilterMode selects which range collection, if any, narrows the record set.
type FilterMode string

const (
	FilterNone      FilterMode = "none"
	FilterSection   FilterMode = "section"
	FilterFormation FilterMode = "formation"
)

// FindRange returns the range with the given id, or false when absent.
func FindRange(ranges []DepthRange, id string) (DepthRange, bool) {
	for _, r := range ranges {
		if r.ID == id {
			return r, true
		}
	}
	return DepthRange{}, false
}
