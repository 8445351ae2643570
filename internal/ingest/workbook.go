package ingest

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/zahidhamidi/well-data-refine-62/internal/errors"
	"github.com/zahidhamidi/well-data-refine-62/pkg/contracts/domain"
)

// ParseWorkbook decodes an xlsx workbook into header names and raw records.
// Sheets are scanned for the first one containing a recognizable header row:
// a row mentioning depth alongside at least one of the other drilling
// fields. Rows above the header (title blocks, unit rows merged into the
// title) are discarded; rows below it are zipped to the header positionally.
func ParseWorkbook(data []byte) ([]string, []domain.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, apperrors.NewParsingError("open workbook", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		headerIdx := findHeaderRow(rows)
		if headerIdx < 0 {
			continue
		}

		headers := make([]string, len(rows[headerIdx]))
		for i, h := range rows[headerIdx] {
			headers[i] = strings.TrimSpace(h)
		}

		records := make([]domain.RawRecord, 0, len(rows)-headerIdx-1)
		for _, line := range rows[headerIdx+1:] {
			row := make(domain.RawRecord, len(headers))
			for i, h := range headers {
				if i < len(line) {
					row[h] = line[i]
				}
			}
			if row.IsEmpty() {
				continue
			}
			records = append(records, row)
		}
		return headers, records, nil
	}

	return nil, nil, apperrors.NewParsingError("workbook has no sheet with a drilling data header", nil)
}

// findHeaderRow returns the index of the first row that looks like a header,
// or -1 when none qualifies.
func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		text := strings.ToLower(strings.Join(row, " "))
		if !strings.Contains(text, "depth") {
			continue
		}
		if strings.Contains(text, "wob") || strings.Contains(text, "weight on bit") ||
			strings.Contains(text, "rpm") || strings.Contains(text, "rop") ||
			strings.Contains(text, "rate of penetration") {
			return i
		}
	}
	return -1
}
