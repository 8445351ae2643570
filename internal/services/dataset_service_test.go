package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zahidhamidi/well-data-refine-62/internal/errors"
	ws "github.com/zahidhamidi/well-data-refine-62/internal/websocket"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

const sampleCSV = `Depth (m),WOB (klbs),RPM,ROP (m/hr)
1000.0,8.5,120,15.2
1010.0,9.0,118,14.8
1020.0,9.5,122,15.9
1030.0,8.8,119,15.1
1040.0,9.2,121,16.0
`

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Broadcast(messageType string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, messageType)
}

func (n *recordingNotifier) seen(messageType string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == messageType {
			return true
		}
	}
	return false
}

func testService(t *testing.T, opts ...Option) *DatasetService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDatasetService(',', 120, logger, opts...)
}

func TestLoadDataset(t *testing.T) {
	svc := testService(t)

	res, err := svc.LoadDataset(context.Background(), []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	assert.Equal(t, "delimited", res.Format)
	assert.Equal(t, 5, res.Records)
	assert.Zero(t, res.Dropped)
	assert.False(t, res.Fallback)
	assert.True(t, res.Quality.IsValid())
	assert.NotEmpty(t, res.Revision)

	points, err := svc.Points(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, points)
}

func TestLoadDatasetEmptyBody(t *testing.T) {
	svc := testService(t)

	_, err := svc.LoadDataset(context.Background(), nil, "run.csv")
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestLoadDatasetFallbackOnDecoderFailure(t *testing.T) {
	svc := testService(t)

	// Not a real workbook; the decoder fails and the session degrades to
	// the placeholder set instead of erroring.
	res, err := svc.LoadDataset(context.Background(), []byte("definitely not a zip"), "run.xlsx")
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, 120, res.Records)
	assert.Equal(t, 62, res.Quality.Overall)

	status := svc.Status(context.Background())
	assert.True(t, status.Fallback)
	assert.Equal(t, 120, status.Records)
}

func TestQueriesBeforeLoad(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.Quality(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoDataset)

	_, err = svc.Points(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoDataset)

	_, err = svc.Export(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoDataset)
}

func TestSetConfigValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  domain.DecimationConfig
	}{
		{
			name: "unknown strategy",
			cfg:  domain.DecimationConfig{Strategy: "nearest", DepthInterval: 10},
		},
		{
			name: "zero interval",
			cfg:  domain.DecimationConfig{Strategy: domain.StrategyDepthInterval},
		},
		{
			name: "negative interval",
			cfg:  domain.DecimationConfig{Strategy: domain.StrategyDepthInterval, DepthInterval: -5},
		},
		{
			name: "zero bin count",
			cfg:  domain.DecimationConfig{Strategy: domain.StrategyBinCount},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetConfig(ctx, tt.cfg)
			assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
		})
	}
}

func TestSetConfigRecomputes(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	first, err := svc.LoadDataset(ctx, []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	err = svc.SetConfig(ctx, domain.DecimationConfig{
		Strategy: domain.StrategyBinCount,
		BinCount: 2,
	})
	require.NoError(t, err)

	points, err := svc.Points(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 2)

	status := svc.Status(ctx)
	assert.NotEqual(t, first.Revision, status.Revision)
}

func TestSetConfigBeforeLoad(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	err := svc.SetConfig(ctx, domain.DecimationConfig{
		Strategy: domain.StrategyBinCount,
		BinCount: 3,
	})
	require.NoError(t, err)

	_, err = svc.LoadDataset(ctx, []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	points, err := svc.Points(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestSectionFiltering(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.LoadDataset(ctx, []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	err = svc.SetSections(ctx, []domain.DepthRange{
		{ID: "surface", Label: "Surface", StartDepth: 0, EndDepth: 1015},
	})
	require.NoError(t, err)

	err = svc.SetConfig(ctx, domain.DecimationConfig{
		Strategy:        domain.StrategyBinCount,
		BinCount:        10,
		FilterMode:      domain.FilterSection,
		SelectedRangeID: "surface",
	})
	require.NoError(t, err)

	points, err := svc.Points(ctx)
	require.NoError(t, err)
	// Only the 1000 and 1010 records fall inside the section.
	require.Len(t, points, 2)
	for _, p := range points {
		assert.LessOrEqual(t, p.Depth, 1015.0)
	}
}

func TestUnknownRangeFailsOpen(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.LoadDataset(ctx, []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	err = svc.SetConfig(ctx, domain.DecimationConfig{
		Strategy:        domain.StrategyBinCount,
		BinCount:        5,
		FilterMode:      domain.FilterSection,
		SelectedRangeID: "no-such-section",
	})
	require.NoError(t, err)

	points, err := svc.Points(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 5)
}

func TestSetRangesValidation(t *testing.T) {
	svc := testService(t)

	err := svc.SetSections(context.Background(), []domain.DepthRange{
		{Label: "missing id", StartDepth: 0, EndDepth: 100},
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestExport(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.LoadDataset(ctx, []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	data, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Depth,WOB,RPM,ROP\n"))
}

func TestNotifierReceivesEvents(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := testService(t, WithNotifier(notifier))

	_, err := svc.LoadDataset(context.Background(), []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	assert.True(t, notifier.seen(ws.TypeDatasetLoaded))
	assert.True(t, notifier.seen(ws.TypeQualityUpdate))
	assert.True(t, notifier.seen(ws.TypeDecimationUpdate))
}

func TestRecomputeMemoization(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.LoadDataset(ctx, []byte(sampleCSV), "run.csv")
	require.NoError(t, err)

	alt := domain.DecimationConfig{Strategy: domain.StrategyBinCount, BinCount: 2}
	require.NoError(t, svc.SetConfig(ctx, alt))
	require.NoError(t, svc.SetConfig(ctx, domain.DefaultDecimationConfig()))
	require.NoError(t, svc.SetConfig(ctx, alt))

	status := svc.Status(ctx)
	assert.GreaterOrEqual(t, status.CacheHits, uint64(2))
}
