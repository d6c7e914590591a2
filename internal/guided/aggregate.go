package guided

// Aggregate returns a copy of plan with Progress filled in at every level.
// Totals count answerable questions only; completed counts those of them
// present in completed. The input tree is left untouched and element order
// is preserved.
func Aggregate(plan *Plan, completed Set) *Plan {
	if plan == nil {
		return nil
	}

	out := *plan
	out.Progress = Counts{}
	out.Cards = make([]Card, len(plan.Cards))
	for ci, card := range plan.Cards {
		card.Progress = Counts{}
		cats := make([]Category, len(card.Categories))
		for gi, cat := range card.Categories {
			cat.Progress = Counts{}
			topics := make([]Topic, len(cat.Topics))
			for ti, topic := range cat.Topics {
				topic.Questions = append([]Question(nil), topic.Questions...)
				topic.Progress = countTopic(topic.Questions, completed)
				cat.Progress = cat.Progress.add(topic.Progress)
				topics[ti] = topic
			}
			cat.Topics = topics
			card.Progress = card.Progress.add(cat.Progress)
			cats[gi] = cat
		}
		card.Categories = cats
		out.Progress = out.Progress.add(card.Progress)
		out.Cards[ci] = card
	}
	return &out
}

func countTopic(questions []Question, completed Set) Counts {
	var c Counts
	for _, q := range questions {
		if !q.Answerable() {
			continue
		}
		c.TotalCount++
		if completed.Has(q.ID) {
			c.CompletedCount++
		}
	}
	return c
}

// AnswerableIDs lists every answerable question id in document order.
func AnswerableIDs(plan *Plan) []string {
	var ids []string
	walk(plan, func(_ Position, q *Question) bool {
		if q.Answerable() {
			ids = append(ids, q.ID)
		}
		return true
	})
	return ids
}

// Rollup holds the completed-node ids derived from an aggregated tree.
type Rollup struct {
	Topics     []string `json:"completedTopics"`
	Categories []string `json:"completedCategories"`
	Cards      []string `json:"completedCards"`
}

// Derive re-computes completed topic, category and card ids from an
// aggregated tree. Nodes without answerable questions are only reported
// once something in the plan has been completed, so an untouched plan
// derives to empty lists.
func Derive(aggregated *Plan) Rollup {
	r := Rollup{Topics: []string{}, Categories: []string{}, Cards: []string{}}
	if aggregated == nil || aggregated.Progress.CompletedCount == 0 {
		return r
	}
	for _, card := range aggregated.Cards {
		for _, cat := range card.Categories {
			for _, topic := range cat.Topics {
				if topic.Progress.Done() {
					r.Topics = append(r.Topics, topic.ID)
				}
			}
			if cat.Progress.Done() {
				r.Categories = append(r.Categories, cat.ID)
			}
		}
		if card.Progress.Done() {
			r.Cards = append(r.Cards, card.ID)
		}
	}
	return r
}

// Locate finds the position of a question id in the tree.
func Locate(plan *Plan, questionID string) (Position, bool) {
	var (
		found Position
		ok    bool
	)
	walk(plan, func(pos Position, q *Question) bool {
		if q.ID == questionID {
			found, ok = pos, true
			return false
		}
		return true
	})
	return found, ok
}

// walk visits questions in document order until fn returns false.
func walk(plan *Plan, fn func(Position, *Question) bool) {
	if plan == nil {
		return
	}
	for ci := range plan.Cards {
		card := &plan.Cards[ci]
		for gi := range card.Categories {
			cat := &card.Categories[gi]
			for ti := range cat.Topics {
				topic := &cat.Topics[ti]
				for qi := range topic.Questions {
					pos := Position{CardIndex: ci, CategoryIndex: gi, TopicIndex: ti, QuestionIndex: qi}
					if !fn(pos, &topic.Questions[qi]) {
						return
					}
				}
			}
		}
	}
}
