package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Dataset pipeline sentinel errors
var (
	ErrNoDataset        = errors.New("no dataset loaded")
	ErrEmptyDataset     = errors.New("dataset contains no valid records")
	ErrUnsupportedInput = errors.New("unsupported input format")
	ErrInvalidConfig    = errors.New("invalid decimation configuration")
	ErrUnknownRange     = errors.New("unknown depth range")
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapDatasetError maps dataset pipeline errors to HTTP problem details
func MapDatasetError(err error, traceID string) render.Renderer {
	instance := fmt.Sprintf("/api/dataset#trace-%s", traceID)

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return NewProblemDetails(
			apiErr.StatusCode,
			"/errors/"+apiErr.ErrorCode,
			http.StatusText(apiErr.StatusCode),
			apiErr.Message,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", apiErr.ErrorCode)
	}

	switch {
	case errors.Is(err, ErrNoDataset):
		return NewProblemDetails(
			http.StatusNotFound,
			"/errors/no-dataset",
			"No Dataset Loaded",
			"No dataset has been loaded. Upload one before requesting results.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "NO_DATASET")

	case errors.Is(err, ErrEmptyDataset):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			"/errors/empty-dataset",
			"Empty Dataset",
			"The uploaded data produced no valid drilling records.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "EMPTY_DATASET")

	case errors.Is(err, ErrUnsupportedInput):
		return NewProblemDetails(
			http.StatusUnsupportedMediaType,
			"/errors/unsupported-input",
			"Unsupported Input",
			"The uploaded data is not a supported delimited or workbook format.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "UNSUPPORTED_INPUT")

	case errors.Is(err, ErrInvalidConfig):
		return NewProblemDetails(
			http.StatusBadRequest,
			"/errors/invalid-config",
			"Invalid Decimation Configuration",
			err.Error(),
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INVALID_CONFIG")

	case errors.Is(err, ErrUnknownRange):
		return NewProblemDetails(
			http.StatusBadRequest,
			"/errors/unknown-range",
			"Unknown Depth Range",
			err.Error(),
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "UNKNOWN_RANGE")

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			"/errors/internal-error",
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}
