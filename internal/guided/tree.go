// Package guided holds the guided-learning plan tree and the pure functions
// that aggregate progress over it and move the resume cursor through it.
//
// Nothing in this package touches storage; callers load the tree and the
// completed-question set and persist the results themselves.
package guided

import "sort"

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Options    []Option `json:"options"`
	Difficulty string   `json:"difficulty"`
	Points     int      `json:"points"`
}

// Answerable reports whether the question has selectable options. Only
// answerable questions count toward totals.
func (q Question) Answerable() bool {
	return len(q.Options) > 0
}

// Correct reports whether the selected option ids are exactly the correct ones.
func (q Question) Correct(selected []string) bool {
	if len(selected) == 0 {
		return false
	}
	picked := NewSet(selected...)
	for _, o := range q.Options {
		if o.IsCorrect != picked.Has(o.ID) {
			return false
		}
	}
	for id := range picked {
		if !q.hasOption(id) {
			return false
		}
	}
	return true
}

func (q Question) hasOption(id string) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// Counts is the completed/total pair attached to every node.
type Counts struct {
	CompletedCount int `json:"completedCount"`
	TotalCount     int `json:"totalCount"`
}

// Done is true when every answerable question below the node is completed.
// A node without answerable questions is vacuously done.
func (c Counts) Done() bool {
	return c.CompletedCount >= c.TotalCount
}

// Percent returns the completion percentage. ok is false for 0/0.
func (c Counts) Percent() (pct float64, ok bool) {
	if c.TotalCount == 0 {
		return 0, false
	}
	return float64(c.CompletedCount) * 100 / float64(c.TotalCount), true
}

func (c Counts) add(o Counts) Counts {
	return Counts{
		CompletedCount: c.CompletedCount + o.CompletedCount,
		TotalCount:     c.TotalCount + o.TotalCount,
	}
}

type Topic struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Order     int        `json:"order"`
	Questions []Question `json:"questions"`
	Progress  Counts     `json:"progress"`
}

type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Order    int     `json:"order"`
	Topics   []Topic `json:"topics"`
	Progress Counts  `json:"progress"`
}

type Card struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Order      int        `json:"order"`
	Categories []Category `json:"categories"`
	Progress   Counts     `json:"progress"`
}

// Plan is a fully materialised plan tree.
type Plan struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Duration        int    `json:"duration"`
	QuestionsPerDay int    `json:"questionsPerDay"`
	Published       bool   `json:"published"`
	Cards           []Card `json:"cards"`
	Progress        Counts `json:"progress"`
}

// Question returns the question at pos, or nil when pos is out of bounds.
func (p *Plan) Question(pos Position) *Question {
	if p == nil || pos.CardIndex < 0 || pos.CardIndex >= len(p.Cards) {
		return nil
	}
	card := p.Cards[pos.CardIndex]
	if pos.CategoryIndex < 0 || pos.CategoryIndex >= len(card.Categories) {
		return nil
	}
	cat := card.Categories[pos.CategoryIndex]
	if pos.TopicIndex < 0 || pos.TopicIndex >= len(cat.Topics) {
		return nil
	}
	topic := cat.Topics[pos.TopicIndex]
	if pos.QuestionIndex < 0 || pos.QuestionIndex >= len(topic.Questions) {
		return nil
	}
	return &topic.Questions[pos.QuestionIndex]
}

// Set is a set of question ids.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id string) {
	s[id] = struct{}{}
}

func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Slice returns the ids sorted, so persisted records are stable.
func (s Set) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
