package domain

// QualityReport carries the four 0-100 data reliability scores computed over
// an ingested record set. Overall is the rounded arithmetic mean of the
// other three. Reports are recomputed on every ingestion and never
// persisted.
type QualityReport struct {
	Completeness int `json:"completeness"`
	Conformity   int `json:"conformity"`
	Statistics   int `json:"statistics"`
	Overall      int `json:"overall"`
}

// IsValid reports whether every score is inside [0, 100].
func (q QualityReport) IsValid() bool {
	for _, v := range []int{q.Completeness, q.Conformity, q.Statistics, q.Overall} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}
