package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"property-crm/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMalformedJSON     = errors.New("malformed JSON: expected an object or an array of objects")
	// ErrMalformedFile wraps CSV and XLSX read failures.
	ErrMalformedFile = errors.New("malformed file")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile turns an uploaded file into rows keyed by header. ext is the file
// extension with or without the leading dot.
func ParseFile(content []byte, ext string) ([]models.Row, error) {
	rows, _, err := ParseFileWithLines(content, ext)
	return rows, err
}

// ParseFileWithLines is ParseFile plus the 1-based source line of every row.
// Skipped blank lines make these differ from the row's position; JSON rows
// are numbered by position as if the array had a header line.
func ParseFileWithLines(content []byte, ext string) ([]models.Row, []int, error) {
	var (
		rows  []models.Row
		lines []int
		err   error
	)
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "csv":
		rows, lines, err = parseCSV(content)
	case "json":
		rows, err = parseJSON(content)
		if err != nil {
			return nil, nil, err
		}
		return rows, positionLines(len(rows)), nil
	case "xlsx":
		rows, lines, err = NewExcelService().ReadRows(content)
	default:
		return nil, nil, fmt.Errorf("%w: %q (expected .csv, .json or .xlsx)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	return rows, lines, nil
}

func positionLines(n int) []int {
	lines := make([]int, n)
	for i := range lines {
		lines[i] = i + 2
	}
	return lines
}

func parseCSV(content []byte) ([]models.Row, []int, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []models.Row{}, []int{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, lines := []models.Row{}, []int{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parse csv: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		line, _ := r.FieldPos(0)
		rows = append(rows, rowFromCells(header, record))
		lines = append(lines, line)
	}
	return rows, lines, nil
}

// rowFromCells zips a header with one record. Missing cells become "" and
// cells past the header are dropped.
func rowFromCells(header, cells []string) models.Row {
	row := make(models.Row, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if i < len(cells) {
			row[h] = cells[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseJSON(content []byte) ([]models.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	switch v := doc.(type) {
	case map[string]interface{}:
		return []models.Row{rowFromObject(v)}, nil
	case []interface{}:
		rows := make([]models.Row, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedJSON, i)
			}
			rows = append(rows, rowFromObject(obj))
		}
		return rows, nil
	default:
		return nil, ErrMalformedJSON
	}
}

func rowFromObject(obj map[string]interface{}) models.Row {
	row := make(models.Row, len(obj))
	for k, v := range obj {
		row[k] = stringify(v)
	}
	return row
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
