package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"omr-eval/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the layout of a results download.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"

	exportSheet = "Results"
)

// ExportFile is a rendered results download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ParseExportFormat defaults to csv when raw is empty.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportCSV:
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	default:
		return "", domain.ValidationErrors{domain.NewInvalidFormatError("format", raw)}
	}
}

func (s *evaluationServiceImpl) ExportResults(ctx context.Context, collegeID, batchID string, format ExportFormat) (*ExportFile, error) {
	results, err := s.ListResults(ctx, collegeID, batchID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, exportHeader())
	for _, r := range results {
		rows = append(rows, exportRow(r))
	}

	var file *ExportFile
	switch format {
	case ExportXLSX:
		file, err = renderXLSX(rows)
	default:
		file, err = renderCSV(rows)
	}
	if err != nil {
		return nil, domain.NewInternalError("failed to render results", err)
	}
	file.Filename = fmt.Sprintf("batch_%s_results.%s", batchID, format)
	if format == "" {
		file.Filename = fmt.Sprintf("batch_%s_results.csv", batchID)
	}
	return file, nil
}

func exportHeader() []string {
	header := []string{"student_id", "name", "score", "total"}
	for q := 1; q <= domain.TotalQuestions; q++ {
		header = append(header, "q"+strconv.Itoa(q))
	}
	return header
}

// exportRow writes the student's answer for every question.
func exportRow(r *domain.EvaluationResult) []string {
	row := []string{r.StudentID, r.Name, strconv.Itoa(r.Outcome.Score), strconv.Itoa(r.Outcome.Total)}
	answers := make([]string, domain.TotalQuestions)
	for _, a := range r.Outcome.Answers {
		if a.Question >= 1 && a.Question <= domain.TotalQuestions {
			answers[a.Question-1] = a.StudentAnswer
		}
	}
	return append(row, answers...)
}

func renderCSV(rows [][]string) (*ExportFile, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return &ExportFile{ContentType: "text/csv; charset=utf-8", Content: buf.Bytes()}, nil
}

func renderXLSX(rows [][]string) (*ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		// Numeric columns stay numeric for spreadsheet users.
		if i > 0 {
			cells[2], _ = strconv.Atoi(row[2])
			cells[3], _ = strconv.Atoi(row[3])
		}
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}
