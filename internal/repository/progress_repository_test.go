package repository

import (
	"context"
	"errors"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&model.Question{}, &model.Plan{}, &model.PlanCard{}, &model.PlanCategory{}, &model.PlanTopic{}, &model.PlanProgress{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestProgressLoadMissing(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t), nil, time.Minute)

	rec, err := repo.Load(context.Background(), 1, "plan-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected no record, got %+v", rec)
	}
}

func TestProgressSaveAndLoad(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t), nil, time.Minute)
	ctx := context.Background()

	rec := model.NewProgressRecord("plan-1")
	rec.CompletedQuestions = []string{"q1", "q2"}
	rec.CompletedTopics = []string{"t1"}
	rec.CurrentPosition = guided.Position{CardIndex: 1, TopicIndex: 2}
	if err := repo.Save(ctx, 7, "plan-1", rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx, 7, "plan-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected a record")
	}
	if len(got.CompletedQuestions) != 2 || got.CompletedQuestions[1] != "q2" {
		t.Errorf("unexpected completed questions %v", got.CompletedQuestions)
	}
	if got.CurrentPosition != rec.CurrentPosition {
		t.Errorf("expected position %+v, got %+v", rec.CurrentPosition, got.CurrentPosition)
	}
	if !got.LastUpdated.Equal(rec.LastUpdated) {
		t.Errorf("expected lastUpdated %v, got %v", rec.LastUpdated, got.LastUpdated)
	}

	other, err := repo.Load(ctx, 8, "plan-1")
	if err != nil || other != nil {
		t.Errorf("records must be per user, got %+v, %v", other, err)
	}
}

func TestProgressSaveIsLastWriteWins(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db, nil, time.Minute)
	ctx := context.Background()

	first := model.NewProgressRecord("plan-1")
	first.CompletedQuestions = []string{"q1"}
	second := model.NewProgressRecord("plan-1")
	second.CompletedQuestions = []string{"q9"}

	if err := repo.Save(ctx, 1, "plan-1", first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := repo.Save(ctx, 1, "plan-1", second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	var rows int64
	db.Model(&model.PlanProgress{}).Count(&rows)
	if rows != 1 {
		t.Errorf("expected a single row, got %d", rows)
	}
	got, _ := repo.Load(ctx, 1, "plan-1")
	if got == nil || len(got.CompletedQuestions) != 1 || got.CompletedQuestions[0] != "q9" {
		t.Errorf("expected the second write, got %+v", got)
	}
}

func TestProgressMalformedIsTreatedAsEmpty(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "{not json"},
		{"missing plan id", `{"completedQuestions":[],"lastUpdated":"2024-01-01T00:00:00Z"}`},
		{"negative index", `{"planId":"plan-1","completedQuestions":[],"currentPosition":{"cardIndex":-1},"lastUpdated":"2024-01-01T00:00:00Z"}`},
		{"empty question id", `{"planId":"plan-1","completedQuestions":[""],"lastUpdated":"2024-01-01T00:00:00Z"}`},
		{"other plan", `{"planId":"plan-2","completedQuestions":[],"lastUpdated":"2024-01-01T00:00:00Z"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			repo := NewProgressRepository(db, nil, time.Minute)
			if err := db.Create(&model.PlanProgress{UserID: 1, PlanID: "plan-1", Data: tc.data}).Error; err != nil {
				t.Fatalf("seed: %v", err)
			}

			rec, err := repo.Load(context.Background(), 1, "plan-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec != nil {
				t.Errorf("expected malformed record to read as none, got %+v", rec)
			}
		})
	}
}

func TestProgressSaveRejectsInvalidRecord(t *testing.T) {
	repo := NewProgressRepository(newTestDB(t), nil, time.Minute)
	rec := model.NewProgressRecord("plan-1")
	rec.CompletedQuestions = []string{"q1", ""}

	if err := repo.Save(context.Background(), 1, "plan-1", rec); err == nil {
		t.Error("expected validation error")
	}
}

func TestProgressListByUserSkipsMalformed(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db, nil, time.Minute)
	ctx := context.Background()

	if err := repo.Save(ctx, 1, "plan-1", model.NewProgressRecord("plan-1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	db.Create(&model.PlanProgress{UserID: 1, PlanID: "plan-2", Data: "garbage"})
	if err := repo.Save(ctx, 2, "plan-3", model.NewProgressRecord("plan-3")); err != nil {
		t.Fatalf("save: %v", err)
	}

	recs, err := repo.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].PlanID != "plan-1" {
		t.Errorf("expected only plan-1, got %+v", recs)
	}
}

func TestProgressStoreUnavailable(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db, nil, time.Minute)
	sqlDB, _ := db.DB()
	sqlDB.Close()

	_, err := repo.Load(context.Background(), 1, "plan-1")
	if !errors.Is(err, util.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	err = repo.Save(context.Background(), 1, "plan-1", model.NewProgressRecord("plan-1"))
	if !errors.Is(err, util.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable on save, got %v", err)
	}
}
