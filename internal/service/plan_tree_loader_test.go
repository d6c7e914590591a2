package service

import (
	"context"
	"errors"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"testing"
)

func TestLoaderBuildsOrderedTree(t *testing.T) {
	f := newFixture(t)

	tree, err := f.loader.Load(context.Background(), f.planID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !tree.Published || tree.Name != "Go interview" {
		t.Errorf("unexpected plan header %+v", tree)
	}
	if len(tree.Cards) != 2 || tree.Cards[0].Title != "Basics" || tree.Cards[1].Title != "Runtime" {
		t.Fatalf("unexpected cards %+v", tree.Cards)
	}

	topics := tree.Cards[0].Categories[0].Topics
	if len(topics) != 2 || topics[0].Name != "A" || topics[1].Name != "B" {
		t.Fatalf("unexpected topics %+v", topics)
	}
	want := []string{f.ids["q1"], f.ids["q2"], f.ids["free"]}
	for i, q := range topics[0].Questions {
		if q.ID != want[i] {
			t.Errorf("question %d: expected %s, got %s", i, want[i], q.ID)
		}
	}
}

func TestLoaderDropsMissingAndInactiveQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inactive := f.addQuestion(t, "retired", true)
	var q model.Question
	f.db.First(&q, "id = ?", inactive)
	q.IsActive = false
	f.db.Save(&q)

	// Insert the dangling reference behind the service's back.
	var topic model.PlanTopic
	f.db.Where("name = ?", "B").First(&topic)
	topic.QuestionIDs = []string{"ghost", f.ids["q3"], inactive, f.ids["q3"]}
	if err := f.db.Save(&topic).Error; err != nil {
		t.Fatalf("update topic: %v", err)
	}

	tree, err := f.loader.Load(ctx, f.planID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := tree.Cards[0].Categories[0].Topics[1].Questions
	if len(got) != 1 || got[0].ID != f.ids["q3"] {
		t.Errorf("expected only q3 to survive, got %+v", got)
	}
}

func TestLoaderUnknownPlan(t *testing.T) {
	f := newFixture(t)

	_, err := f.loader.Load(context.Background(), "missing")
	if !errors.Is(err, util.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestReplaceStructureRejectsUnknownQuestion(t *testing.T) {
	f := newFixture(t)

	_, err := f.plans.ReplaceStructure(context.Background(), f.planID, StructureRequest{Cards: []CardInput{
		{Title: "x", Categories: []CategoryInput{{Name: "y", Topics: []TopicInput{{Name: "z", QuestionIDs: []string{"nope"}}}}}},
	}})
	if !errors.Is(err, util.ErrInvalidStructure) {
		t.Errorf("expected ErrInvalidStructure, got %v", err)
	}

	// The old structure is untouched.
	tree, err := f.loader.Load(context.Background(), f.planID)
	if err != nil || len(tree.Cards) != 2 {
		t.Errorf("expected original structure, got %+v, %v", tree, err)
	}
}

func TestDeletePlanRemovesStructureAndProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, user := range []uint{1, 2} {
		if _, err := f.guided.StartPlan(ctx, user, f.planID); err != nil {
			t.Fatalf("start: %v", err)
		}
	}

	if err := f.plans.Delete(ctx, f.planID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var topics, progress int64
	f.db.Model(&model.PlanTopic{}).Count(&topics)
	f.db.Unscoped().Model(&model.PlanProgress{}).Count(&progress)
	if topics != 0 || progress != 0 {
		t.Errorf("expected structure and progress to be removed, %d topics and %d progress rows left", topics, progress)
	}
	if _, err := f.plans.Get(ctx, f.planID); !errors.Is(err, util.ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestDeletePlanRollsBackWhenProgressCannotBeRemoved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.db.Migrator().DropTable(&model.PlanProgress{}); err != nil {
		t.Fatalf("drop progress table: %v", err)
	}

	err := f.plans.Delete(ctx, f.planID)
	if !errors.Is(err, util.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	tree, err := f.loader.Load(ctx, f.planID)
	if err != nil {
		t.Fatalf("expected the plan to survive, got %v", err)
	}
	if len(tree.Cards) != 2 {
		t.Errorf("expected the structure to survive, got %d cards", len(tree.Cards))
	}
}
