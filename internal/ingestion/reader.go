package ingestion

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/listimport/internal/domain"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when an input file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrMissingColumn is returned when the key column is absent from the header row.
	ErrMissingColumn = errors.New("missing column")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	timeLayouts = []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006/01/02",
		"01/02/2006",
		"1/2/2006",
		"01/02/2006 15:04:05",
		"1/2/2006 3:04:05 PM",
	}
)

// RowError describes a source row that could not be turned into a Record.
type RowError struct {
	RowNumber int    `json:"rowNumber"`
	Column    string `json:"column,omitempty"`
	Message   string `json:"message"`
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.RowNumber, e.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", e.RowNumber, e.Column, e.Message)
}

type tableData struct {
	headers        []string
	rows           [][]string
	rowNumbers     []int
	headerRowIndex int
}

// ReadRecords parses a CSV or XLSX payload and binds its columns to layout.
// Columns are matched by header or by target field name, ignoring case.
// Rows whose cells cannot be parsed into the declared scalar type are
// reported as RowErrors and left out.
func ReadRecords(fileName string, payload []byte, layout domain.Layout) ([]domain.Record, []RowError, error) {
	if len(payload) == 0 {
		return nil, nil, errors.New("file is empty")
	}

	table, err := parseTable(fileName, payload)
	if err != nil {
		return nil, nil, err
	}

	positions, err := bindColumns(table.headers, layout)
	if err != nil {
		return nil, nil, err
	}

	records := make([]domain.Record, 0, len(table.rows))
	var rowErrors []RowError
	for idx, row := range table.rows {
		rowNumber := table.rowNumbers[idx]
		fields := make([]domain.RawField, 0, len(layout.Columns))
		var rowErr *RowError

		for colIdx, column := range layout.Columns {
			position := positions[colIdx]
			if position < 0 {
				continue
			}
			value, err := parseCell(column.Type, row[position])
			if err != nil {
				rowErr = &RowError{RowNumber: rowNumber, Column: column.Header, Message: err.Error()}
				break
			}
			fields = append(fields, domain.RawField{Name: column.Field, Value: value})
		}

		if rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}
		records = append(records, domain.NewRecord(rowNumber, layout.KeyField, fields))
	}

	return records, rowErrors, nil
}

// bindColumns returns, per layout column, the index of its source column or -1.
func bindColumns(headers []string, layout domain.Layout) ([]int, error) {
	index := make(map[string]int, len(headers))
	for i, header := range headers {
		key := strings.ToLower(header)
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	positions := make([]int, len(layout.Columns))
	keyBound := false
	for i, column := range layout.Columns {
		positions[i] = -1
		for _, candidate := range []string{column.Header, column.Field} {
			if pos, ok := index[strings.ToLower(strings.TrimSpace(candidate))]; ok {
				positions[i] = pos
				break
			}
		}
		if column.Field == layout.KeyField && positions[i] >= 0 {
			keyBound = true
		}
	}

	if !keyBound {
		return nil, fmt.Errorf("%w: key field %s", ErrMissingColumn, layout.KeyField)
	}
	return positions, nil
}

func parseTable(fileName string, payload []byte) (tableData, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv", ".txt":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return tableData{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return normalizeTable(records)
}

func parseExcel(payload []byte) (tableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return normalizeTable(rows)
}

// normalizeTable takes the first non-empty row as the header row and keeps
// the 1-based source row number of every non-empty data row.
func normalizeTable(records [][]string) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	table := tableData{headerRowIndex: -1}
	for idx, row := range records {
		if isEmptyRow(row) {
			continue
		}
		if table.headerRowIndex < 0 {
			table.headerRowIndex = idx
			table.headers = make([]string, len(row))
			for i, value := range row {
				table.headers[i] = strings.TrimSpace(value)
			}
			continue
		}
		table.rows = append(table.rows, padRow(row, len(table.headers)))
		table.rowNumbers = append(table.rowNumbers, idx+1)
	}

	if table.headerRowIndex < 0 {
		return tableData{}, errors.New("header row could not be detected")
	}
	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row[:length]
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

// parseCell converts a cell into its declared scalar type. Blank cells
// yield nil so the field is treated as absent.
func parseCell(scalarType domain.ScalarType, cell string) (any, error) {
	raw := strings.TrimSpace(cell)
	if raw == "" {
		return nil, nil
	}

	switch scalarType {
	case domain.ScalarNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %q as number", raw)
		}
		return f, nil
	case domain.ScalarInteger:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil && math.Mod(f, 1) == 0 {
			return int64(f), nil
		}
		return nil, fmt.Errorf("unable to parse %q as integer", raw)
	case domain.ScalarBoolean:
		switch strings.ToLower(raw) {
		case "1", "yes", "y":
			return true, nil
		case "0", "no", "n":
			return false, nil
		}
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Errorf("unable to parse %q as boolean", raw)
		}
		return b, nil
	case domain.ScalarDate:
		ts, err := parseTimestamp(raw)
		if err != nil {
			return nil, fmt.Errorf("unable to parse %q as date: %w", raw, err)
		}
		return ts, nil
	default:
		return raw, nil
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp format")
}
