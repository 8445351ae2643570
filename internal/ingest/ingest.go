package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// Format hints which decoder handles the raw bytes.
type Format string

const (
	FormatDelimited Format = "delimited"
	FormatWorkbook  Format = "workbook"
)

// DetectFormat picks a decoder from a file name or MIME type. Unrecognized
// hints default to delimited text, the lenient path.
func DetectFormat(hint string) Format {
	h := strings.ToLower(hint)
	switch {
	case strings.HasSuffix(h, ".xlsx"), strings.HasSuffix(h, ".xlsm"),
		strings.Contains(h, "spreadsheetml"), strings.Contains(h, "ms-excel"):
		return FormatWorkbook
	default:
		return FormatDelimited
	}
}

// Result is the output of one ingestion: the resolved table plus the
// canonical record set. Headers and Rows are retained for the quality
// scorer, which needs the raw table.
type Result struct {
	Headers []string
	Rows    []domain.RawRecord
	Records []domain.DrillingRecord
}

// Ingestor decodes and normalizes raw tabular input.
type Ingestor struct {
	logger    *slog.Logger
	delimiter rune
}

// NewIngestor creates an ingestor. A zero delimiter means comma.
func NewIngestor(logger *slog.Logger, delimiter rune) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &Ingestor{
		logger:    logger.With(slog.String("component", "ingestor")),
		delimiter: delimiter,
	}
}

// Ingest decodes data with the hinted decoder and normalizes the result.
// Decoder failures are returned to the caller, which is expected to fall
// back to the deterministic placeholder set rather than abort.
func (i *Ingestor) Ingest(ctx context.Context, data []byte, format Format) (*Result, error) {
	var (
		headers []string
		rows    []domain.RawRecord
		err     error
	)

	switch format {
	case FormatWorkbook:
		headers, rows, err = ParseWorkbook(data)
	case FormatDelimited, "":
		headers, rows, err = ParseDelimited(string(data), i.delimiter)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest %s input: %w", format, err)
	}

	records := Normalize(headers, rows)

	i.logger.InfoContext(ctx, "ingested raw table",
		slog.String("format", string(format)),
		slog.Int("raw_rows", len(rows)),
		slog.Int("records", len(records)),
		slog.Int("dropped", len(rows)-len(records)))

	return &Result{Headers: headers, Rows: rows, Records: records}, nil
}

// Normalize converts raw rows to canonical records: resolve columns once,
// coerce numerics leniently, and keep only records with depth > 0.
func Normalize(headers []string, rows []domain.RawRecord) []domain.DrillingRecord {
	cm := ResolveColumns(headers)

	records := make([]domain.DrillingRecord, 0, len(rows))
	for _, row := range rows {
		depth := cm.Measurement(row, FieldDepth)
		if depth.Value <= 0 {
			continue
		}
		records = append(records, domain.DrillingRecord{
			Depth: depth.Value,
			WOB:   cm.Measurement(row, FieldWOB).Value,
			RPM:   cm.Measurement(row, FieldRPM).Value,
			ROP:   cm.Measurement(row, FieldROP).Value,
		})
	}
	return records
}
