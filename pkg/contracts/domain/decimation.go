package domain

// Strategy names one of the two decimation behaviors. The two strategies are
// deliberately kept distinct behind a tagged dispatch rather than merged:
// they differ in ordering guarantees, configuration shape, and aggregation
// statistic.
type Strategy string

const (
	// StrategyDepthInterval bins sorted records into fixed depth intervals
	// and aggregates each bin with a per-field median.
	StrategyDepthInterval Strategy = "depth_interval"
	// StrategyBinCount partitions records, in their existing order, into a
	// fixed number of contiguous chunks and aggregates each with a mean.
	StrategyBinCount Strategy = "bin_count"
)

// DecimationConfig drives the range selector and the decimation engine.
// EnableSmoothing and OutlierRemoval are accepted but currently inert; they
// are reserved for future aggregation variants and no computation consumes
// them.
type DecimationConfig struct {
	Strategy        Strategy   `json:"strategy" validate:"required,oneof=depth_interval bin_count"`
	DepthInterval   float64    `json:"depth_interval" validate:"required_if=Strategy depth_interval"`
	BinCount        int        `json:"bin_count" validate:"required_if=Strategy bin_count"`
	FilterMode      FilterMode `json:"filter_mode" validate:"omitempty,oneof=none section formation"`
	SelectedRangeID string     `json:"selected_range_id"`
	EnableSmoothing bool       `json:"enable_smoothing"`
	OutlierRemoval  bool       `json:"outlier_removal"`
}

// DefaultDecimationConfig returns the configuration applied to a fresh
// session before the operator has chosen anything.
func DefaultDecimationConfig() DecimationConfig {
	return DecimationConfig{
		Strategy:      StrategyDepthInterval,
		DepthInterval: 10,
		BinCount:      50,
		FilterMode:    FilterNone,
	}
}

// DecimatedPoint is one summary point emitted by the decimation engine. It
// has the same shape as a canonical record.
type DecimatedPoint struct {
	Depth float64 `json:"depth"`
	WOB   float64 `json:"wob"`
	RPM   float64 `json:"rpm"`
	ROP   float64 `json:"rop"`
}
