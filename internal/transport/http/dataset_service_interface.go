package http

import (
	"context"

	"github.com/zahidhamidi/well-data-refine-62/internal/services"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// DatasetServiceInterface defines the session operations the transport
// needs. *services.DatasetService satisfies it.
type DatasetServiceInterface interface {
	LoadDataset(ctx context.Context, data []byte, hint string) (*services.LoadResult, error)
	SetConfig(ctx context.Context, cfg domain.DecimationConfig) error
	SetSections(ctx context.Context, ranges []domain.DepthRange) error
	SetFormations(ctx context.Context, ranges []domain.DepthRange) error
	Quality(ctx context.Context) (domain.QualityReport, error)
	Points(ctx context.Context) ([]domain.DecimatedPoint, error)
	Config(ctx context.Context) domain.DecimationConfig
	Export(ctx context.Context) ([]byte, error)
	Status(ctx context.Context) services.Status
}
