package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/zahidhamidi/well-data-refine-62/internal/errors"
	"github.com/zahidhamidi/well-data-refine-62/internal/infrastructure"
	"github.com/zahidhamidi/well-data-refine-62/internal/middleware"
	"github.com/zahidhamidi/well-data-refine-62/internal/validation"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// DatasetHandler exposes the dataset session over HTTP with RFC 7807 errors.
type DatasetHandler struct {
	service        DatasetServiceInterface
	logger         *slog.Logger
	validator      *validation.UploadValidator
	bodyValidator  *middleware.ValidationMiddleware
	queryValidator *middleware.QueryParamValidator
	maxUploadBytes int64
}

// NewDatasetHandler creates a dataset handler. maxUploadBytes caps upload
// bodies; zero means 32 MiB.
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger, maxUploadBytes int64) *DatasetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	errorHandler := apierrors.NewErrorHandler(logger, false)
	return &DatasetHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "dataset_handler")),
		validator:      validation.NewUploadValidator(logger, maxUploadBytes),
		bodyValidator:  middleware.NewValidationMiddleware(logger, errorHandler),
		queryValidator: middleware.NewQueryParamValidator(logger, errorHandler),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/quality", h.GetQuality)
	r.Get("/decimated", h.GetDecimated)
	r.Get("/config", h.GetConfig)
	r.Get("/export", h.Export)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator("application/json"))
		r.Use(h.bodyValidator.ValidateRequest)
		r.Put("/config", h.SetConfig)
		r.Put("/sections", h.SetSections)
		r.Put("/formations", h.SetFormations)
	})

	return r
}

// Upload handles POST /api/dataset. The body is either a multipart form
// with a "file" field or the raw table bytes; the decoder hint comes from
// the filename, the "format" query parameter, or the Content-Type.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	data, hint, err := h.readUpload(r)
	if err != nil {
		h.renderError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateUpload(hint, int64(len(data))); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: %v", apierrors.ErrUnsupportedInput, err))
		return
	}

	result, err := h.service.LoadDataset(ctx, data, hint)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

func (h *DatasetHandler) readUpload(r *http.Request) ([]byte, string, error) {
	contentType := r.Header.Get("Content-Type")

	var (
		data []byte
		hint string
		err  error
	)
	if mediaTypeIsMultipart(contentType) {
		var file multipart.File
		var header *multipart.FileHeader
		if err = r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, "", fmt.Errorf("parse multipart form: %w", err)
		}
		file, header, err = r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("missing file field: %w", err)
		}
		defer file.Close()
		data, err = io.ReadAll(file)
		hint = header.Filename
	} else {
		data, err = io.ReadAll(r.Body)
		hint = contentType
	}
	if err != nil {
		return nil, "", err
	}

	// An explicit format hint overrides the filename or content type.
	if q := r.URL.Query().Get("format"); q != "" {
		hint = q
	}
	return data, hint, nil
}

func mediaTypeIsMultipart(contentType string) bool {
	return len(contentType) >= 19 && contentType[:19] == "multipart/form-data"
}

// GetQuality handles GET /api/dataset/quality.
func (h *DatasetHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Quality(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// GetDecimated handles GET /api/dataset/decimated. An optional limit query
// parameter truncates the response for preview rendering.
func (h *DatasetHandler) GetDecimated(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryValidator.ValidateInt(w, r, "limit", 1, 100000, 0)
	if !ok {
		return
	}

	points, err := h.service.Points(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	total := len(points)
	if limit > 0 && limit < len(points) {
		points = points[:limit]
	}
	render.JSON(w, r, map[string]interface{}{
		"points": points,
		"count":  len(points),
		"total":  total,
	})
}

// GetConfig handles GET /api/dataset/config.
func (h *DatasetHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Config(r.Context()))
}

// SetConfig handles PUT /api/dataset/config.
func (h *DatasetHandler) SetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.DecimationConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: malformed request body: %v", apierrors.ErrInvalidConfig, err))
		return
	}
	if err := h.service.SetConfig(r.Context(), cfg); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, h.service.Config(r.Context()))
}

// SetSections handles PUT /api/dataset/sections.
func (h *DatasetHandler) SetSections(w http.ResponseWriter, r *http.Request) {
	h.setRanges(w, r, h.service.SetSections)
}

// SetFormations handles PUT /api/dataset/formations.
func (h *DatasetHandler) SetFormations(w http.ResponseWriter, r *http.Request) {
	h.setRanges(w, r, h.service.SetFormations)
}

func (h *DatasetHandler) setRanges(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, ranges []domain.DepthRange) error) {
	var ranges []domain.DepthRange
	if err := json.NewDecoder(r.Body).Decode(&ranges); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: malformed request body: %v", apierrors.ErrInvalidConfig, err))
		return
	}
	if err := apply(r.Context(), ranges); err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "accepted",
		"count":  len(ranges),
	})
}

// Export handles GET /api/dataset/export with a text/csv download.
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	filename := fmt.Sprintf("decimated_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write export body",
			slog.String("error", err.Error()))
	}
}

func (h *DatasetHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := infrastructure.GetTraceID(r.Context())

	var apiErr *apierrors.APIError
	status := http.StatusInternalServerError
	if errors.As(err, &apiErr) {
		status = apiErr.StatusCode
	}
	if status >= http.StatusInternalServerError && !isDatasetError(err) {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("trace_id", traceID))
	}

	if rerr := render.Render(w, r, apierrors.MapDatasetError(err, traceID)); rerr != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func isDatasetError(err error) bool {
	for _, sentinel := range []error{
		apierrors.ErrNoDataset,
		apierrors.ErrEmptyDataset,
		apierrors.ErrUnsupportedInput,
		apierrors.ErrInvalidConfig,
		apierrors.ErrUnknownRange,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
