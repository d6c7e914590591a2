package service

import (
	"context"
	"errors"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestValidateQuestion(t *testing.T) {
	opts := func(correct ...bool) []model.QuestionOption {
		var out []model.QuestionOption
		for i, c := range correct {
			out = append(out, model.QuestionOption{Text: "option " + optionLetter(i), IsCorrect: c})
		}
		return out
	}

	cases := []struct {
		name    string
		q       model.Question
		wantErr bool
	}{
		{"multiple choice", model.Question{Title: "t", Type: model.QuestionMultipleChoice, Options: opts(true, false)}, false},
		{"no correct option", model.Question{Title: "t", Type: model.QuestionMultipleChoice, Options: opts(false, false)}, true},
		{"single option", model.Question{Title: "t", Type: model.QuestionMultipleChoice, Options: opts(true)}, true},
		{"true false", model.Question{Title: "t", Type: model.QuestionTrueFalse, Options: opts(false, true)}, false},
		{"true false both correct", model.Question{Title: "t", Type: model.QuestionTrueFalse, Options: opts(true, true)}, true},
		{"open ended", model.Question{Title: "t", Type: model.QuestionOpenEnded}, false},
		{"missing title", model.Question{Type: model.QuestionOpenEnded}, true},
		{"unknown type", model.Question{Title: "t", Type: "essay"}, true},
		{"unknown difficulty", model.Question{Title: "t", Type: model.QuestionCode, Difficulty: "expert"}, true},
		{"duplicate option ids", model.Question{Title: "t", Type: model.QuestionMultipleChoice, Options: []model.QuestionOption{
			{ID: "x", Text: "1", IsCorrect: true}, {ID: "x", Text: "2"},
		}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.q
			err := validateQuestion(&q)
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
			if err != nil && !errors.Is(err, util.ErrInvalidQuestion) {
				t.Errorf("expected ErrInvalidQuestion, got %v", err)
			}
		})
	}
}

func TestValidateQuestionFillsDefaults(t *testing.T) {
	q := model.Question{Title: "t", Type: model.QuestionMultipleChoice, Options: []model.QuestionOption{
		{Text: "yes", IsCorrect: true}, {Text: "no"},
	}}
	if err := validateQuestion(&q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Difficulty != model.DifficultyIntermediate {
		t.Errorf("expected default difficulty, got %q", q.Difficulty)
	}
	if q.Options[0].ID != "a" || q.Options[1].ID != "b" {
		t.Errorf("expected generated option ids, got %+v", q.Options)
	}
}

func TestListPublicHidesAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionService(repository.NewQuestionRepository(db))

	active, err := svc.Create(QuestionRequest{
		Title:       "What is a goroutine?",
		Type:        model.QuestionMultipleChoice,
		Options:     []model.QuestionOption{{Text: "a lightweight thread", IsCorrect: true}, {Text: "a channel"}},
		Explanation: "runtime managed",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	inactive := false
	if _, err := svc.Create(QuestionRequest{Title: "hidden", Type: model.QuestionOpenEnded, IsActive: &inactive}); err != nil {
		t.Fatalf("create: %v", err)
	}

	qs, total, err := svc.ListPublic(repository.QuestionFilter{}, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(qs) != 1 || qs[0].ID != active.ID {
		t.Fatalf("expected only the active question, got %d %+v", total, qs)
	}
	if qs[0].Explanation != "" {
		t.Error("explanation should be hidden")
	}
	for _, o := range qs[0].Options {
		if o.IsCorrect {
			t.Error("answers should be hidden")
		}
	}
}

const sampleCSV = "\xef\xbb\xbfTitle,Type,Difficulty,Options,Answer,Points,Tags\n" +
	"What does defer do?,multiple-choice,beginner,Runs at return|Runs now,a,2,\"go,basics\"\n" +
	",,,,,,\n" +
	"Explain the GMP model,open-ended,advanced,,,5,runtime\n" +
	"Broken,multiple-choice,beginner,Only one,a,1,\n" +
	"Bad points,open-ended,beginner,,,many,\n"

func TestParseQuestionRows(t *testing.T) {
	rows, err := readCSV([]byte(sampleCSV))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	result, qs := parseQuestionRows(rows)
	if result.Total != 4 || result.Skipped != 2 || len(qs) != 2 {
		t.Fatalf("unexpected result %+v with %d questions", result, len(qs))
	}
	if len(result.Errors) != 2 || !strings.HasPrefix(result.Errors[0], "row 5:") {
		t.Errorf("unexpected errors %v", result.Errors)
	}

	first := qs[0]
	if first.Points != 2 || len(first.Tags) != 2 || len(first.Options) != 2 || !first.Options[0].IsCorrect || first.Options[1].IsCorrect {
		t.Errorf("unexpected first question %+v", first)
	}
	if qs[1].Type != model.QuestionOpenEnded || len(qs[1].Options) != 0 {
		t.Errorf("unexpected second question %+v", qs[1])
	}
}

func TestImportArchivesSheet(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	svc := NewQuestionImportService(repository.NewQuestionRepository(db), &LocalObjectStore{Root: root})

	result, err := svc.Import(context.Background(), "bank.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Created != 2 {
		t.Errorf("expected 2 created, got %+v", result)
	}
	if !strings.HasPrefix(result.ArchiveURL, "/uploads/imports/questions/") {
		t.Errorf("unexpected archive url %q", result.ArchiveURL)
	}
	key := strings.TrimPrefix(result.ArchiveURL, "/uploads/")
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(key))); err != nil {
		t.Errorf("archived file missing: %v", err)
	}

	var count int64
	db.Model(&model.Question{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 stored questions, got %d", count)
	}
}

func TestImportTemplateRoundTrips(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestionImportService(repository.NewQuestionRepository(db), &LocalObjectStore{Root: t.TempDir()})

	data, err := svc.Template()
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if _, err := excelize.OpenReader(strings.NewReader(string(data))); err != nil {
		t.Fatalf("template is not a workbook: %v", err)
	}

	result, err := svc.Import(context.Background(), "template.xlsx", strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("import template: %v", err)
	}
	if result.Created != 1 || result.Skipped != 0 {
		t.Errorf("expected the example row to import, got %+v", result)
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	svc := NewQuestionImportService(nil, &LocalObjectStore{Root: t.TempDir()})

	_, err := svc.Import(context.Background(), "bank.txt", strings.NewReader("x"))
	if !errors.Is(err, util.ErrUnsupportedImport) {
		t.Errorf("expected ErrUnsupportedImport, got %v", err)
	}
}

func TestImportRemovesArchiveWhenInsertFails(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	svc := NewQuestionImportService(repository.NewQuestionRepository(db), &LocalObjectStore{Root: root})

	sqlDB, _ := db.DB()
	sqlDB.Close()

	if _, err := svc.Import(context.Background(), "bank.csv", strings.NewReader(sampleCSV)); err == nil {
		t.Fatal("expected an error from a closed database")
	}
	entries, err := os.ReadDir(filepath.Join(root, "imports", "questions"))
	if err != nil {
		t.Fatalf("read archive dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected the archive to be removed, found %d files", len(entries))
	}
}
