package ingest

import (
	"encoding/csv"
	"strings"

	apperrors "github.com/zahidhamidi/well-data-refine-62/internal/errors"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// ParseDelimited decodes delimited text into header names and raw records.
// The first line is the header; every following line is zipped to the
// headers positionally. Short rows leave trailing columns absent; rows whose
// cells are all blank are dropped.
func ParseDelimited(text string, delimiter rune) ([]string, []domain.RawRecord, error) {
	if delimiter == 0 {
		delimiter = ','
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, nil, apperrors.NewParsingError("decode delimited text", err)
	}
	if len(lines) == 0 {
		return nil, nil, apperrors.NewParsingError("delimited text has no header row", nil)
	}

	headers := make([]string, len(lines[0]))
	for i, h := range lines[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]domain.RawRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := make(domain.RawRecord, len(headers))
		for i, h := range headers {
			if i < len(line) {
				row[h] = line[i]
			}
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}

	return headers, rows, nil
}
