package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/zahidhamidi/well-data-refine-62/internal/errors"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// Header is the fixed export header row.
var Header = []string{"Depth", "WOB", "RPM", "ROP"}

// Write streams points as CSV to w: the fixed header followed by one row per
// point. Depth and RPM carry one decimal, WOB and ROP two.
func Write(w io.Writer, points []domain.DecimatedPoint) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for i, p := range points {
		if err := writer.Write(formatRow(p)); err != nil {
			return fmt.Errorf("write export row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Marshal renders points to an in-memory CSV document.
func Marshal(points []domain.DecimatedPoint) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, points); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVWriter exports decimated series to files.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a file exporter.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteFile writes points to path, creating parent directories as needed.
func (w *CSVWriter) WriteFile(path string, points []domain.DecimatedPoint) error {
	w.logger.Info("writing decimated CSV",
		slog.String("path", path),
		slog.Int("points", len(points)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("create export directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("create export file", err)
	}
	defer file.Close()

	return Write(file, points)
}

func formatRow(p domain.DecimatedPoint) []string {
	return []string{
		fmt.Sprintf("%.1f", p.Depth),
		fmt.Sprintf("%.2f", p.WOB),
		fmt.Sprintf("%.1f", p.RPM),
		fmt.Sprintf("%.2f", p.ROP),
	}
}
