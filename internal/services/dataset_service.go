package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zahidhamidi/well-data-refine-62/internal/decimate"
	apperrors "github.com/zahidhamidi/well-data-refine-62/internal/errors"
	"github.com/zahidhamidi/well-data-refine-62/internal/exporter"
	"github.com/zahidhamidi/well-data-refine-62/internal/infrastructure"
	"github.com/zahidhamidi/well-data-refine-62/internal/ingest"
	"github.com/zahidhamidi/well-data-refine-62/internal/quality"
	ws "github.com/zahidhamidi/well-data-refine-62/internal/websocket"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// Notifier pushes recompute events to connected clients. *websocket.Hub
// satisfies it; tests substitute a recorder.
type Notifier interface {
	Broadcast(messageType string, data interface{})
}

// LoadResult summarizes one dataset upload.
type LoadResult struct {
	Format   string               `json:"format"`
	Records  int                  `json:"records"`
	Dropped  int                  `json:"dropped"`
	Fallback bool                 `json:"fallback"`
	Quality  domain.QualityReport `json:"quality"`
	Revision string               `json:"revision"`
}

// DatasetService holds the state of one refinement session: the ingested
// table, the operator's ranges and decimation configuration, and the derived
// quality report and decimated points. Every mutation recomputes the derived
// state and notifies the hub. All access is serialized behind a single
// mutex; reads hand out copies.
type DatasetService struct {
	logger   *slog.Logger
	validate *validator.Validate
	ingestor *ingest.Ingestor
	cache    *decimate.Cache
	hub      Notifier
	metrics  *infrastructure.PipelineMetrics

	fallbackRows int

	mu         sync.Mutex
	loaded     bool
	fallback   bool
	headers    []string
	rows       []domain.RawRecord
	records    []domain.DrillingRecord
	sections   []domain.DepthRange
	formations []domain.DepthRange
	cfg        domain.DecimationConfig
	quality    domain.QualityReport
	points     []domain.DecimatedPoint
	revision   string
}

// Option configures optional service collaborators.
type Option func(*DatasetService)

// WithNotifier attaches a recompute event sink.
func WithNotifier(hub Notifier) Option {
	return func(s *DatasetService) { s.hub = hub }
}

// WithMetrics attaches pipeline instrumentation.
func WithMetrics(m *infrastructure.PipelineMetrics) Option {
	return func(s *DatasetService) { s.metrics = m }
}

// NewDatasetService creates a session service with the default decimation
// configuration and an empty memoization cache.
func NewDatasetService(delimiter rune, fallbackRows int, logger *slog.Logger, opts ...Option) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset_service"))

	s := &DatasetService{
		logger:       logger,
		validate:     validator.New(),
		ingestor:     ingest.NewIngestor(logger, delimiter),
		cache:        decimate.NewCache(),
		fallbackRows: fallbackRows,
		cfg:          domain.DefaultDecimationConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadDataset ingests raw bytes, replacing any previously loaded data. A
// decoder failure or a table with no valid records does not fail the load:
// the service degrades to the deterministic fallback set so the session
// stays usable.
func (s *DatasetService) LoadDataset(ctx context.Context, data []byte, hint string) (*LoadResult, error) {
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyDataset
	}

	format := ingest.DetectFormat(hint)
	start := time.Now()

	res, err := s.ingestor.Ingest(ctx, data, format)
	fallback := err != nil || len(res.Records) == 0
	if err != nil {
		s.logger.WarnContext(ctx, "ingest failed, using fallback records",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if fallback {
		s.headers = nil
		s.rows = nil
		s.records = ingest.FallbackRecords(s.fallbackRows)
	} else {
		s.headers = res.Headers
		s.rows = res.Rows
		s.records = res.Records
	}
	s.fallback = fallback
	s.loaded = true

	dropped := 0
	if !fallback {
		dropped = len(res.Rows) - len(res.Records)
	}
	infrastructure.RecordIngestMetrics(ctx, s.metrics, string(format), len(s.records), dropped, fallback, time.Since(start))
	infrastructure.AddSpanEvent(ctx, "dataset.loaded", map[string]interface{}{
		"format":   string(format),
		"records":  len(s.records),
		"dropped":  dropped,
		"fallback": fallback,
	})

	if err := s.recomputeLocked(ctx); err != nil {
		return nil, err
	}

	out := &LoadResult{
		Format:   string(format),
		Records:  len(s.records),
		Dropped:  dropped,
		Fallback: fallback,
		Quality:  s.quality,
		Revision: s.revision,
	}
	s.notify(ws.TypeDatasetLoaded, out)

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("format", string(format)),
		slog.Int("records", out.Records),
		slog.Int("dropped", out.Dropped),
		slog.Bool("fallback", fallback),
		slog.String("revision", out.Revision))
	return out, nil
}

// SetConfig validates and applies a new decimation configuration. Invalid
// configurations are rejected without touching the session; the previous
// points remain served. Setting configuration before a dataset is loaded is
// allowed and takes effect on the next load.
func (s *DatasetService) SetConfig(ctx context.Context, cfg domain.DecimationConfig) error {
	if err := s.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}
	switch cfg.Strategy {
	case domain.StrategyDepthInterval:
		if cfg.DepthInterval <= 0 {
			return fmt.Errorf("%w: depth interval must be positive, got %v", apperrors.ErrInvalidConfig, cfg.DepthInterval)
		}
	case domain.StrategyBinCount:
		if cfg.BinCount <= 0 {
			return fmt.Errorf("%w: bin count must be positive, got %d", apperrors.ErrInvalidConfig, cfg.BinCount)
		}
	}
	if cfg.FilterMode == "" {
		cfg.FilterMode = domain.FilterNone
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Unknown range ids are accepted: selection fails open to the full
	// dataset rather than blocking the operator.
	if cfg.FilterMode != domain.FilterNone && cfg.SelectedRangeID != "" {
		if _, ok := decimate.ActiveRange(cfg, s.sections, s.formations); !ok {
			s.logger.WarnContext(ctx, "selected range not found, filter falls open",
				slog.String("filter_mode", string(cfg.FilterMode)),
				slog.String("range_id", cfg.SelectedRangeID))
		}
	}

	s.cfg = cfg
	if !s.loaded {
		return nil
	}
	return s.recomputeLocked(ctx)
}

// SetSections replaces the drilling section collection.
func (s *DatasetService) SetSections(ctx context.Context, ranges []domain.DepthRange) error {
	return s.setRanges(ctx, ranges, &s.sections, "sections")
}

// SetFormations replaces the geological formation collection.
func (s *DatasetService) SetFormations(ctx context.Context, ranges []domain.DepthRange) error {
	return s.setRanges(ctx, ranges, &s.formations, "formations")
}

func (s *DatasetService) setRanges(ctx context.Context, ranges []domain.DepthRange, dst *[]domain.DepthRange, kind string) error {
	for i, r := range ranges {
		if err := s.validate.Struct(r); err != nil {
			return fmt.Errorf("%w: %s[%d]: %v", apperrors.ErrInvalidConfig, kind, i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	*dst = append([]domain.DepthRange(nil), ranges...)
	s.logger.InfoContext(ctx, "ranges replaced",
		slog.String("kind", kind),
		slog.Int("count", len(ranges)))

	if !s.loaded {
		return nil
	}
	return s.recomputeLocked(ctx)
}

// Quality returns the current quality report.
func (s *DatasetService) Quality(ctx context.Context) (domain.QualityReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return domain.QualityReport{}, apperrors.ErrNoDataset
	}
	return s.quality, nil
}

// Points returns a copy of the current decimated points.
func (s *DatasetService) Points(ctx context.Context) ([]domain.DecimatedPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, apperrors.ErrNoDataset
	}
	return append([]domain.DecimatedPoint(nil), s.points...), nil
}

// Config returns the active decimation configuration.
func (s *DatasetService) Config(ctx context.Context) domain.DecimationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Export renders the current decimated points as CSV.
func (s *DatasetService) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil, apperrors.ErrNoDataset
	}
	points := append([]domain.DecimatedPoint(nil), s.points...)
	s.mu.Unlock()

	data, err := exporter.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	infrastructure.RecordExportMetrics(ctx, s.metrics, len(data))
	return data, nil
}

// Status describes the session for readiness and diagnostics endpoints.
type Status struct {
	Loaded      bool   `json:"loaded"`
	Fallback    bool   `json:"fallback"`
	Records     int    `json:"records"`
	Points      int    `json:"points"`
	Revision    string `json:"revision,omitempty"`
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`
}

// Status reports the current session state.
func (s *DatasetService) Status(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	hits, misses := s.cache.Stats()
	return Status{
		Loaded:      s.loaded,
		Fallback:    s.fallback,
		Records:     len(s.records),
		Points:      len(s.points),
		Revision:    s.revision,
		CacheHits:   hits,
		CacheMisses: misses,
	}
}

// recomputeLocked rebuilds the derived state from the current records,
// ranges and configuration. Quality scoring and decimation are independent
// consumers of the record set, so they run concurrently. Callers must hold
// s.mu.
func (s *DatasetService) recomputeLocked(ctx context.Context) error {
	start := time.Now()

	var (
		report   domain.QualityReport
		points   []domain.DecimatedPoint
		cacheHit bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.fallback {
			report = ingest.FallbackQuality()
			return nil
		}
		report = quality.Score(s.headers, s.rows)
		return nil
	})
	g.Go(func() error {
		var active *domain.DepthRange
		if r, ok := decimate.ActiveRange(s.cfg, s.sections, s.formations); ok {
			active = &r
		}
		key := decimate.Key(s.records, s.cfg, active)
		if cached, ok := s.cache.Get(key); ok {
			points = cached
			cacheHit = true
			return nil
		}
		selected := decimate.Select(s.records, s.cfg, s.sections, s.formations)
		points = decimate.Decimate(selected, s.cfg)
		s.cache.Put(key, points)
		return nil
	})
	if err := g.Wait(); err != nil {
		infrastructure.RecordRecomputeMetrics(gctx, s.metrics, string(s.cfg.Strategy), 0, false, time.Since(start), err)
		return err
	}

	s.quality = report
	s.points = points
	s.revision = uuid.New().String()

	infrastructure.RecordRecomputeMetrics(ctx, s.metrics, string(s.cfg.Strategy), len(points), cacheHit, time.Since(start), nil)

	s.notify(ws.TypeQualityUpdate, map[string]interface{}{
		"quality":  s.quality,
		"revision": s.revision,
	})
	s.notify(ws.TypeDecimationUpdate, map[string]interface{}{
		"points":   len(s.points),
		"strategy": string(s.cfg.Strategy),
		"revision": s.revision,
	})

	s.logger.DebugContext(ctx, "session recomputed",
		slog.Int("points", len(points)),
		slog.Bool("cache_hit", cacheHit),
		slog.String("revision", s.revision))
	return nil
}

func (s *DatasetService) notify(messageType string, data interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(messageType, data)
}
