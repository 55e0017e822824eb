// Package ingest turns uploaded CSV and XLSX files into raw complaint records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

// TextColumn is the column holding complaint text. When a file has no such
// column its first column is used instead.
const TextColumn = "raw_text"

// Format is a supported upload format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a file name to its format by extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", domain.MalformedError("file must be a CSV or XLSX file")
	}
}

// Parse reads records from r according to the extension of filename.
func Parse(filename string, r io.Reader) ([]domain.RawRecord, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ParseXLSX(r)
	}
	return ParseCSV(r)
}

// ParseCSV reads a header row followed by data rows. Empty cells become
// records without text.
func ParseCSV(r io.Reader) ([]domain.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.MalformedError("CSV file is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, domain.MalformedError("invalid CSV format: line %d: %v", parseErr.Line, parseErr.Err)
		}
		return nil, domain.MalformedError("invalid CSV format: %v", err)
	}
	return fromRows(rows, "CSV")
}

// ParseXLSX reads the first worksheet of a workbook the same way as ParseCSV.
func ParseXLSX(r io.Reader) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.MalformedError("invalid XLSX format: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.MalformedError("XLSX file has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.MalformedError("invalid XLSX format: %v", err)
	}
	if len(rows) == 0 {
		return nil, domain.MalformedError("XLSX file is empty")
	}
	return fromRows(rows, "XLSX")
}

func fromRows(rows [][]string, kind string) ([]domain.RawRecord, error) {
	header := rows[0]
	if len(header) == 0 {
		return nil, domain.MalformedError("%s file has no columns", kind)
	}

	col := 0
	for i, name := range header {
		if strings.TrimSpace(name) == TextColumn {
			col = i
			break
		}
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, domain.MalformedError("invalid %s format: row %d has %d fields, expected %d",
				kind, i+2, len(row), len(header))
		}
		if isBlank(row) {
			continue
		}
		if col >= len(row) || strings.TrimSpace(row[col]) == "" {
			records = append(records, domain.RawRecord{})
			continue
		}
		records = append(records, domain.NewRawRecord(row[col]))
	}

	if len(records) == 0 {
		return nil, domain.MalformedError("no valid complaints found in %s", kind)
	}
	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
