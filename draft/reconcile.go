package draft

import "github.com/mbolis/quick-forms/model"

// Plan is the set of writes that makes the persisted questions of a form
// match a draft.
type Plan struct {
	// Upsert holds every draft question, in draft order.
	Upsert []model.Question
	// Delete holds persisted ids absent from the draft.
	Delete []string
	// Created holds draft ids not persisted yet.
	Created []string
}

// Reconcile plans a save from the ids currently persisted for a form and the
// draft's questions. It performs no I/O.
func Reconcile(persisted []string, questions []model.Question) Plan {
	inDraft := make(map[string]bool, len(questions))
	for _, q := range questions {
		inDraft[q.ID] = true
	}
	stored := make(map[string]bool, len(persisted))
	for _, id := range persisted {
		stored[id] = true
	}

	plan := Plan{Upsert: make([]model.Question, 0, len(questions))}
	for _, q := range questions {
		plan.Upsert = append(plan.Upsert, q)
		if !stored[q.ID] {
			plan.Created = append(plan.Created, q.ID)
		}
	}
	for _, id := range persisted {
		if !inDraft[id] {
			plan.Delete = append(plan.Delete, id)
			inDraft[id] = true // skip duplicates
		}
	}
	return plan
}
