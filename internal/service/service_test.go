package service

import (
	"context"
	"interview_prep_backend/internal/event"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"sync"
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

	err = db.AutoMigrate(&model.User{}, &model.Question{}, &model.Plan{}, &model.PlanCard{},
		&model.PlanCategory{}, &model.PlanTopic{}, &model.PlanProgress{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fixture is a published plan with two cards:
//
//	card 1 / category 1 / topic A: q1, q2, free (no options)
//	card 1 / category 1 / topic B: q3
//	card 2 / category 2 / topic C: q4
type fixture struct {
	db        *gorm.DB
	plans     *PlanService
	questions *repository.QuestionRepository
	progress  *repository.ProgressRepository
	loader    *PlanTreeLoader
	guided    *GuidedLearningService
	events    *recordingPublisher
	planID    string
	ids       map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:        db,
		questions: repository.NewQuestionRepository(db),
		progress:  repository.NewProgressRepository(db, nil, time.Minute),
		events:    &recordingPublisher{},
		ids:       make(map[string]string),
	}
	planRepo := repository.NewPlanRepository(db)
	f.loader = NewPlanTreeLoader(planRepo, f.questions)
	f.plans = NewPlanService(planRepo, f.questions, f.progress, f.loader)
	f.guided = NewGuidedLearningService(f.loader, f.progress, f.events, guided.Policy{})

	for _, name := range []string{"q1", "q2", "q3", "q4"} {
		f.ids[name] = f.addQuestion(t, name, true)
	}
	f.ids["free"] = f.addQuestion(t, "free", false)

	p, err := f.plans.Create(1, PlanRequest{Name: "Go interview", Duration: 7, QuestionsPerDay: 3})
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	f.planID = p.ID

	_, err = f.plans.ReplaceStructure(context.Background(), p.ID, StructureRequest{Cards: []CardInput{
		{Title: "Basics", Categories: []CategoryInput{{Name: "Language", Topics: []TopicInput{
			{Name: "A", QuestionIDs: []string{f.ids["q1"], f.ids["q2"], f.ids["free"]}},
			{Name: "B", QuestionIDs: []string{f.ids["q3"]}},
		}}}},
		{Title: "Runtime", Categories: []CategoryInput{{Name: "Scheduler", Topics: []TopicInput{
			{Name: "C", QuestionIDs: []string{f.ids["q4"]}},
		}}}},
	}})
	if err != nil {
		t.Fatalf("replace structure: %v", err)
	}
	if _, err := f.plans.SetPublished(p.ID, true); err != nil {
		t.Fatalf("publish: %v", err)
	}
	return f
}

func (f *fixture) addQuestion(t *testing.T, title string, withOptions bool) string {
	t.Helper()
	q := &model.Question{Title: title, Type: model.QuestionOpenEnded, IsActive: true}
	if withOptions {
		q.Type = model.QuestionMultipleChoice
		q.Options = []model.QuestionOption{
			{ID: "a", Text: "right", IsCorrect: true},
			{ID: "b", Text: "wrong"},
		}
	}
	if err := f.questions.Create(q); err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q.ID
}

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, eventType)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.types {
		if t == eventType {
			n++
		}
	}
	return n
}

var _ event.Publisher = (*recordingPublisher)(nil)
