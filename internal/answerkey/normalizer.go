// Package answerkey turns uploaded answer key files into a normalized domain.AnswerKey.
package answerkey

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"omr-eval/internal/domain"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// Format is the declared layout of an uploaded answer key.
type Format string

const (
	FormatJSON        Format = "json"
	FormatSpreadsheet Format = "spreadsheet"
	FormatCSV         Format = "csv"
)

var cellSeparators = strings.NewReplacer(":", "-", ".", "-", " ", "-")

// FormatFromFilename derives the format from the file extension.
func FormatFromFilename(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, true
	case ".xlsx":
		return FormatSpreadsheet, true
	case ".csv":
		return FormatCSV, true
	default:
		return "", false
	}
}

// Normalize parses content into an answer key covering questions 1..100.
// A file that cannot be read at all yields a MalformedAnswerKey error; single
// entries or cells that do not describe a question are skipped.
func Normalize(content []byte, format Format) (domain.AnswerKey, error) {
	var key domain.AnswerKey
	var err error

	switch format {
	case FormatJSON:
		err = parseJSON(content, &key)
	case FormatSpreadsheet:
		err = parseWorkbook(content, &key)
	case FormatCSV:
		err = parseCSV(content, &key)
	default:
		err = fmt.Errorf("unknown answer key format %q", format)
	}
	if err != nil {
		return domain.AnswerKey{}, domain.NewMalformedAnswerKeyError(err)
	}
	return key, nil
}

func parseJSON(content []byte, key *domain.AnswerKey) error {
	if !utf8.Valid(content) {
		return errors.New("content is not valid UTF-8")
	}
	if !gjson.ValidBytes(content) {
		return errors.New("content is not valid JSON")
	}
	root := gjson.ParseBytes(content)
	if !root.IsObject() {
		return errors.New("answer key must be a JSON object")
	}

	root.ForEach(func(k, v gjson.Result) bool {
		q, err := strconv.Atoi(strings.TrimSpace(k.String()))
		if err != nil || !isAnswerValue(v) {
			return true
		}
		key.Set(q, strings.ToLower(strings.TrimSpace(jsonAnswer(v))))
		return true
	})
	return nil
}

// jsonAnswer renders a JSON value as an answer string. Arrays such as
// ["a","c"] become "a,c".
func jsonAnswer(v gjson.Result) string {
	if !v.IsArray() {
		return v.String()
	}
	var parts []string
	for _, item := range v.Array() {
		if !isAnswerValue(item) {
			continue
		}
		if s := strings.TrimSpace(item.String()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ",")
}

// isAnswerValue rejects nested objects and booleans, which cannot name options.
func isAnswerValue(v gjson.Result) bool {
	return !v.IsObject() && !v.IsBool()
}

func parseWorkbook(content []byte, key *domain.AnswerKey) error {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	applyRows(rows, key)
	return nil
}

func parseCSV(content []byte, key *domain.AnswerKey) error {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read csv: %w", err)
	}
	applyRows(rows, key)
	return nil
}

// applyRows scans every cell of every row. The column layout is not assumed.
func applyRows(rows [][]string, key *domain.AnswerKey) {
	for _, row := range rows {
		for _, cell := range row {
			if q, answer, ok := parseCell(cell); ok {
				key.Set(q, answer)
			}
		}
	}
}

// parseCell reads cells such as "5:a", "12.c", "20 b" or "3-a,c".
func parseCell(cell string) (int, string, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, "", false
	}
	var parts []string
	for _, p := range strings.Split(cellSeparators.Replace(cell), "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return 0, "", false
	}
	q, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return q, strings.ToLower(parts[1]), true
}
