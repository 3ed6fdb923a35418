package service

import (
	"bytes"
	"fmt"
	"strings"

	"property-crm/internal/models"

	"github.com/xuri/excelize/v2"
)

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ReadRows reads the first sheet of an XLSX workbook. The first row is the
// header; blank rows are skipped. The second result holds each row's sheet
// row number.
func (s *ExcelService) ReadRows(content []byte) ([]models.Row, []int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(cells) == 0 {
		return []models.Row{}, []int{}, nil
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]models.Row, 0, len(cells)-1)
	lines := make([]int, 0, len(cells)-1)
	for i, record := range cells[1:] {
		if isBlankRecord(record) {
			continue
		}
		rows = append(rows, rowFromCells(header, record))
		// cells[0] is sheet row 1
		lines = append(lines, i+2)
	}
	return rows, lines, nil
}

// TemplateXLSX builds the XLSX import template for entity: the same header
// and sample row as the CSV template, plus a short instructions block.
func (s *ExcelService) TemplateXLSX(entity string) ([]byte, error) {
	tmpl, err := templateFor(entity)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Data"
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, err
	}

	for i, header := range tmpl.headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s1", getColumnName(i)), header)
		f.SetCellValue(sheetName, fmt.Sprintf("%s2", getColumnName(i)), tmpl.sample[i])
		f.SetColWidth(sheetName, getColumnName(i), getColumnName(i), 18)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(tmpl.headers)-1)), headerStyle)

	// Instructions go on their own sheet so the data sheet parses cleanly
	const helpSheet = "Instructions"
	if _, err := f.NewSheet(helpSheet); err != nil {
		return nil, err
	}
	instructions := []string{
		"Instructions:",
		"1. Do not modify the header row. Fill data starting from row 2.",
		"2. Dates use YYYY-MM-DD format.",
		"3. Numbers must be non-negative; currency symbols and thousand separators are ignored.",
		"4. Replace the sample row with your own data before uploading.",
	}
	for i, line := range instructions {
		f.SetCellValue(helpSheet, fmt.Sprintf("A%d", i+1), line)
	}
	f.SetColWidth(helpSheet, "A", "A", 90)

	f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex(sheetName); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateImportErrorReport writes every validation error of an import to an
// XLSX file with a summary block under the table.
func (s *ExcelService) GenerateImportErrorReport(summary *ImportSummary, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Errors"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	headers := []string{"Row Number", "Field", "Error Message"}
	for i, header := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s1", getColumnName(i)), header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	errorStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFFFCC"}, Pattern: 1},
	})
	for rowIdx, e := range summary.Errors {
		row := rowIdx + 2
		values := []interface{}{e.Row, e.Field, e.Message}
		for colIdx, value := range values {
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", getColumnName(colIdx), row), value)
		}
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", getColumnName(len(headers)-1), row), errorStyle)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 60)

	summaryStartRow := len(summary.Errors) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "Entity:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), summary.Entity)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Total Rows Processed:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), summary.TotalRecords)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Valid Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), summary.SuccessfulRecords)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+4), "Failed Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+4), summary.FailedRecords)
	if summary.TotalRecords > 0 {
		successRate := float64(summary.SuccessfulRecords) / float64(summary.TotalRecords) * 100
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+5), "Success Rate:")
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+5), fmt.Sprintf("%.1f%%", successRate))
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryStartRow), fmt.Sprintf("A%d", summaryStartRow), summaryStyle)

	f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex(sheetName); err == nil {
		f.SetActiveSheet(index)
	}

	return f.SaveAs(outputPath)
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
