package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Import sheets carry a header row; columns are matched by name, so their
// order is free. Options are separated by "|", the answer lists the letters
// of the correct options ("a,c").
var importColumns = []string{
	"title", "content", "type", "category", "difficulty",
	"options", "answer", "explanation", "points", "tags",
}

type ImportResult struct {
	Total      int      `json:"total"`
	Created    int      `json:"created"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
	ArchiveURL string   `json:"archiveUrl,omitempty"`
}

type QuestionImportService struct {
	Repo  *repository.QuestionRepository
	Store ObjectStore
}

func NewQuestionImportService(repo *repository.QuestionRepository, store ObjectStore) *QuestionImportService {
	return &QuestionImportService{Repo: repo, Store: store}
}

// Import parses an .xlsx or .csv sheet and creates every valid row. Invalid
// rows are reported and skipped. The original file is archived to object
// storage.
func (s *QuestionImportService) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch ext {
	case ".xlsx":
		rows, err = readXLSX(data)
	case ".csv":
		rows, err = readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedImport, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUnsupportedImport, err)
	}

	result, qs := parseQuestionRows(rows)

	key := fmt.Sprintf("imports/questions/%s-%s%s", time.Now().Format("20060102150405"), uuid.NewString()[:8], ext)
	url, err := s.Store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), importContentType(ext))
	if err != nil {
		logger.Log.Warn("failed to archive question import", zap.String("file", filename), zap.Error(err))
	} else {
		result.ArchiveURL = url
	}

	if err := s.Repo.CreateBatch(qs); err != nil {
		if result.ArchiveURL != "" {
			if rmErr := s.Store.Remove(ctx, key); rmErr != nil {
				logger.Log.Warn("failed to remove import archive", zap.String("key", key), zap.Error(rmErr))
			}
		}
		return nil, err
	}
	result.Created = len(qs)

	logger.Log.Info("question import finished",
		zap.String("file", filename),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func importContentType(ext string) string {
	switch ext {
	case ".xlsx":
		return util.MimeXLSX
	case ".csv":
		return util.MimeCSV
	}
	return util.MimeOctetStream
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(data []byte) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func parseQuestionRows(rows [][]string) (*ImportResult, []*model.Question) {
	result := &ImportResult{Errors: []string{}}
	if len(rows) == 0 {
		return result, nil
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["title"]; !ok {
		result.Errors = append(result.Errors, "header row has no title column")
		return result, nil
	}

	var qs []*model.Question
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(name string) string {
			col, ok := index[name]
			if !ok || col >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[col])
		}
		if isBlankRow(row) {
			continue
		}
		result.Total++

		q, err := questionFromRow(cell)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		qs = append(qs, q)
	}
	return result, qs
}

func questionFromRow(cell func(string) string) (*model.Question, error) {
	q := &model.Question{
		Title:       cell("title"),
		Content:     cell("content"),
		Type:        cell("type"),
		Category:    cell("category"),
		Difficulty:  strings.ToLower(cell("difficulty")),
		Explanation: cell("explanation"),
		Tags:        splitList(cell("tags"), ","),
		IsActive:    true,
	}
	if q.Type == "" {
		q.Type = model.QuestionMultipleChoice
	}
	if p := cell("points"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad points %q", util.ErrInvalidQuestion, p)
		}
		q.Points = n
	}

	answer := make(map[string]bool)
	for _, a := range splitList(strings.ToLower(cell("answer")), ",") {
		answer[a] = true
	}
	for i, text := range splitList(cell("options"), "|") {
		id := optionLetter(i)
		q.Options = append(q.Options, model.QuestionOption{ID: id, Text: text, IsCorrect: answer[id]})
	}

	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func splitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Template returns an empty .xlsx workbook with the import header row and
// one example line.
func (s *QuestionImportService) Template() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	example := []string{
		"What does defer do?", "", model.QuestionMultipleChoice, "go", model.DifficultyBeginner,
		"Runs at function return|Runs immediately|Starts a goroutine", "a", "", "1", "basics",
	}
	for i, name := range importColumns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, col+"1", name); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, col+"2", example[i]); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
