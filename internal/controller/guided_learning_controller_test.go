package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

type memLoader map[string]*guided.Plan

func (m memLoader) Load(_ context.Context, planID string) (*guided.Plan, error) {
	p, ok := m[planID]
	if !ok {
		return nil, util.ErrPlanNotFound
	}
	return p, nil
}

type memStore struct {
	mu   sync.Mutex
	recs map[string]*model.ProgressRecord
	err  error
}

func key(userID uint, planID string) string {
	return fmt.Sprintf("%d:%s", userID, planID)
}

func (s *memStore) Load(_ context.Context, userID uint, planID string) (*model.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.recs[key(userID, planID)], nil
}

func (s *memStore) Save(_ context.Context, userID uint, planID string, rec *model.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[key(userID, planID)] = rec
	return nil
}

func (s *memStore) ListByUser(context.Context, uint) ([]*model.ProgressRecord, error) {
	return nil, nil
}

func testPlan() *guided.Plan {
	opts := []guided.Option{{ID: "a", Text: "yes", IsCorrect: true}, {ID: "b", Text: "no"}}
	return &guided.Plan{
		ID:        "p1",
		Name:      "Go",
		Published: true,
		Cards: []guided.Card{{ID: "c1", Categories: []guided.Category{{ID: "g1", Topics: []guided.Topic{{
			ID:        "t1",
			Questions: []guided.Question{{ID: "q1", Options: opts}, {ID: "q2", Options: opts}},
		}}}}}},
	}
}

func newTestRouter(store *memStore, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewGuidedLearningService(memLoader{"p1": testPlan()}, store, nil, guided.Policy{})
	c := NewGuidedLearningController(svc)

	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		if userID != 0 {
			ctx.Set(util.ContextUserKey, &util.Claims{UserID: userID, Role: model.Learner})
		}
		ctx.Next()
	})
	r.GET("/plans/:id", c.GetPlan)
	r.POST("/plans/:id/answers", c.SubmitAnswer)
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) util.Response {
	t.Helper()
	resp := util.Response{Data: data}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestGetPlanStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		userID uint
		path   string
		err    error
		want   int
	}{
		{"ok", 1, "/plans/p1", nil, http.StatusOK},
		{"unknown plan", 1, "/plans/nope", nil, http.StatusNotFound},
		{"no token", 0, "/plans/p1", nil, http.StatusUnauthorized},
		{"store down still shows plan", 1, "/plans/p1", util.ErrStoreUnavailable, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{recs: map[string]*model.ProgressRecord{}, err: tc.err}
			r := newTestRouter(store, tc.userID)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	store := &memStore{recs: map[string]*model.ProgressRecord{}}
	r := newTestRouter(store, 1)

	body, _ := json.Marshal(service.SubmitAnswerRequest{QuestionID: "q1", SelectedOptionIDs: []string{"a"}})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/plans/p1/answers", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result service.SubmitResult
	decode(t, w, &result)
	if !result.Correct || result.Next == nil || result.Next.ID != "q2" {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Progress != (guided.Counts{CompletedCount: 1, TotalCount: 2}) {
		t.Errorf("expected 1/2, got %+v", result.Progress)
	}
	if rec := store.recs[key(1, "p1")]; rec == nil || len(rec.CompletedQuestions) != 1 {
		t.Errorf("expected stored progress, got %+v", rec)
	}
}

func TestSubmitAnswerBadRequests(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing question id", `{}`, http.StatusBadRequest},
		{"question not in plan", `{"questionId":"zzz"}`, http.StatusBadRequest},
		{"malformed json", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&memStore{recs: map[string]*model.ProgressRecord{}}, 1)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/plans/p1/answers", bytes.NewBufferString(tc.body)))
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestSubmitAnswerStoreUnavailable(t *testing.T) {
	store := &memStore{recs: map[string]*model.ProgressRecord{}, err: util.ErrStoreUnavailable}
	r := newTestRouter(store, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/plans/p1/answers", bytes.NewBufferString(`{"questionId":"q1","isCorrect":true}`)))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
