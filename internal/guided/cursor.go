package guided

import "errors"

var ErrQuestionNotInPlan = errors.New("question does not belong to plan")

// Position is the resume point inside a plan tree.
type Position struct {
	CardIndex     int `json:"cardIndex" validate:"min=0"`
	CategoryIndex int `json:"categoryIndex" validate:"min=0"`
	TopicIndex    int `json:"topicIndex" validate:"min=0"`
	QuestionIndex int `json:"questionIndex" validate:"min=0"`
}

func (p Position) before(o Position) bool {
	switch {
	case p.CardIndex != o.CardIndex:
		return p.CardIndex < o.CardIndex
	case p.CategoryIndex != o.CategoryIndex:
		return p.CategoryIndex < o.CategoryIndex
	case p.TopicIndex != o.TopicIndex:
		return p.TopicIndex < o.TopicIndex
	default:
		return p.QuestionIndex < o.QuestionIndex
	}
}

type Status string

const (
	StatusInProgress   Status = "in_progress"
	StatusPlanComplete Status = "plan_complete"
)

type Cursor struct {
	Status   Status   `json:"status"`
	Position Position `json:"position"`
}

// Boundary is a bit set of the levels finished by a cursor move.
type Boundary uint8

const (
	BoundaryTopic Boundary = 1 << iota
	BoundaryCategory
	BoundaryCard
	BoundaryPlan
)

func (b Boundary) Has(flag Boundary) bool { return b&flag != 0 }

// Step is the outcome of moving the cursor.
type Step struct {
	Cursor  Cursor    `json:"cursor"`
	Current *Question `json:"current,omitempty"`
	Crossed Boundary  `json:"crossed"`
}

// Answer is a learner's submission for one question.
type Answer struct {
	QuestionID string
	Correct    bool
}

// Policy decides what a submission does to the completed set.
type Policy struct {
	// RequireCorrect only marks a question completed when answered correctly.
	RequireCorrect bool
}

// Reset returns the cursor at the first card/category/topic/question.
func Reset() Cursor {
	return Cursor{Status: StatusInProgress}
}

// Clamp pulls every index of pos back inside the current tree bounds. An
// index past the end becomes the last valid one; negatives become zero.
func Clamp(plan *Plan, pos Position) Position {
	var out Position
	if plan == nil || len(plan.Cards) == 0 {
		return out
	}
	out.CardIndex = clampIndex(pos.CardIndex, len(plan.Cards))

	card := plan.Cards[out.CardIndex]
	if len(card.Categories) == 0 {
		return out
	}
	out.CategoryIndex = clampIndex(pos.CategoryIndex, len(card.Categories))

	cat := card.Categories[out.CategoryIndex]
	if len(cat.Topics) == 0 {
		return out
	}
	out.TopicIndex = clampIndex(pos.TopicIndex, len(cat.Topics))

	topic := cat.Topics[out.TopicIndex]
	if len(topic.Questions) == 0 {
		return out
	}
	out.QuestionIndex = clampIndex(pos.QuestionIndex, len(topic.Questions))
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Advance moves the cursor to the first answerable question at or after the
// (clamped) current position that is not in completed. The cursor never
// moves backward on its own, except to repair a position left behind by a
// plan edit: when nothing is left ahead but earlier questions are still
// open, it is re-seated on the earliest of them. StatusPlanComplete is only
// reported once every answerable question is in completed.
func Advance(plan *Plan, from Cursor, completed Set) Step {
	if from.Status == StatusPlanComplete {
		return Step{Cursor: from}
	}

	start := Clamp(plan, from.Position)
	if next, q, ok := firstOpen(plan, completed, start); ok {
		return Step{
			Cursor:  Cursor{Status: StatusInProgress, Position: next},
			Current: q,
			Crossed: crossed(start, next),
		}
	}
	if next, q, ok := firstOpen(plan, completed, Position{}); ok {
		return Step{
			Cursor:  Cursor{Status: StatusInProgress, Position: next},
			Current: q,
		}
	}
	return Step{
		Cursor:  Cursor{Status: StatusPlanComplete, Position: start},
		Crossed: BoundaryTopic | BoundaryCategory | BoundaryCard | BoundaryPlan,
	}
}

// firstOpen finds the first answerable question at or after start that is
// not in completed.
func firstOpen(plan *Plan, completed Set, start Position) (Position, *Question, bool) {
	var (
		next  Position
		q     *Question
		found bool
	)
	walk(plan, func(pos Position, cand *Question) bool {
		if pos.before(start) {
			return true
		}
		if cand.Answerable() && !completed.Has(cand.ID) {
			next, q, found = pos, cand, true
			return false
		}
		return true
	})
	return next, q, found
}

func crossed(from, to Position) Boundary {
	switch {
	case from.CardIndex != to.CardIndex:
		return BoundaryTopic | BoundaryCategory | BoundaryCard
	case from.CategoryIndex != to.CategoryIndex:
		return BoundaryTopic | BoundaryCategory
	case from.TopicIndex != to.TopicIndex:
		return BoundaryTopic
	}
	return 0
}

// Submit records ans and advances the cursor. It returns a new completed set;
// the one passed in is not modified.
func Submit(plan *Plan, from Cursor, completed Set, ans Answer, policy Policy) (Set, Step, error) {
	if _, ok := Locate(plan, ans.QuestionID); !ok {
		return completed, Step{Cursor: from}, ErrQuestionNotInPlan
	}

	next := completed.Clone()
	if ans.Correct || !policy.RequireCorrect {
		next.Add(ans.QuestionID)
	}
	return next, Advance(plan, from, next), nil
}
