// Package importer reads question banks from JSON, Excel or CSV files.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"civic-apps/internal/quiz"
)

// OptionSeparator splits the options cell of a spreadsheet row.
const OptionSeparator = "|"

// Spreadsheet columns, in order.
const (
	colID = iota
	colTopic
	colQuestion
	colOptions
	colCorrect
	colExplanation
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Result holds the valid questions read from a file and one message per
// rejected row. A bad row never fails the whole import.
type Result struct {
	Questions []quiz.Question
	Processed int
	Errors    []string
}

func (r *Result) reject(where string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", where, err))
}

func (r *Result) accept(question quiz.Question, where string, seen map[int]bool) {
	if err := question.Validate(); err != nil {
		r.reject(where, err)
		return
	}
	if seen[question.ID] {
		r.reject(where, fmt.Errorf("duplicate id %d", question.ID))
		return
	}
	seen[question.ID] = true
	r.Questions = append(r.Questions, question)
}

// Load picks the reader from the file extension: .json, .xlsx or .csv.
func Load(path string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return LoadJSON(file)
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, "")
	case ".csv":
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return LoadCSV(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadJSON reads an array of question objects.
func LoadJSON(r io.Reader) (*Result, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	result := &Result{Errors: make([]string, 0)}
	seen := make(map[int]bool, len(raw))
	for i, item := range raw {
		result.Processed++
		where := fmt.Sprintf("item %d", i)

		var question quiz.Question
		if err := json.Unmarshal(item, &question); err != nil {
			result.reject(where, err)
			continue
		}
		result.accept(question, where, seen)
	}
	return result, nil
}

// LoadXLSX reads rows from sheet, or the first sheet when sheet is empty.
func LoadXLSX(path, sheet string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows), nil
}

func LoadCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRows(rows), nil
}

func fromRows(rows [][]string) *Result {
	result := &Result{Errors: make([]string, 0)}
	seen := make(map[int]bool, len(rows))

	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if blank(row) {
			continue
		}

		result.Processed++
		where := fmt.Sprintf("row %d", i+1)
		question, err := parseRow(row)
		if err != nil {
			result.reject(where, err)
			continue
		}
		result.accept(question, where, seen)
	}
	return result
}

func parseRow(row []string) (quiz.Question, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	id, err := strconv.Atoi(cell(colID))
	if err != nil {
		return quiz.Question{}, fmt.Errorf("invalid id %q", cell(colID))
	}

	var options []string
	for _, option := range strings.Split(cell(colOptions), OptionSeparator) {
		if option = strings.TrimSpace(option); option != "" {
			options = append(options, option)
		}
	}

	return quiz.Question{
		ID:            id,
		Topic:         cell(colTopic),
		Question:      cell(colQuestion),
		Options:       options,
		CorrectAnswer: resolveAnswer(cell(colCorrect), options),
		Explanation:   cell(colExplanation),
	}, nil
}

// resolveAnswer accepts the option text itself or its letter (A, B, ...).
func resolveAnswer(answer string, options []string) string {
	for _, option := range options {
		if option == answer {
			return answer
		}
	}
	letter := strings.ToUpper(answer)
	if len(letter) == 1 && letter[0] >= 'A' && int(letter[0]-'A') < len(options) {
		return options[letter[0]-'A']
	}
	return answer
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(row[0]))
	return err != nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
