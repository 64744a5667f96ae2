package draft_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/model"
)

func TestReconcile(t *testing.T) {
	questions := func(ids ...string) []model.Question {
		qs := make([]model.Question, len(ids))
		for i, id := range ids {
			qs[i] = model.Question{ID: id, OrderNumber: i}
		}
		return qs
	}
	upsertIDs := func(plan draft.Plan) []string {
		ids := []string{}
		for _, q := range plan.Upsert {
			ids = append(ids, q.ID)
		}
		return ids
	}

	tests := []struct {
		name      string
		persisted []string
		draft     []model.Question
		upsert    []string
		delete    []string
		created   []string
	}{
		{
			name:    "new form",
			draft:   questions("a", "b"),
			upsert:  []string{"a", "b"},
			created: []string{"a", "b"},
		},
		{
			name:      "unchanged",
			persisted: []string{"a", "b"},
			draft:     questions("a", "b"),
			upsert:    []string{"a", "b"},
		},
		{
			name:      "removed and added",
			persisted: []string{"a", "b", "c"},
			draft:     questions("c", "a", "d"),
			upsert:    []string{"c", "a", "d"},
			delete:    []string{"b"},
			created:   []string{"d"},
		},
		{
			name:      "all removed",
			persisted: []string{"a", "b", "b"},
			draft:     nil,
			upsert:    []string{},
			delete:    []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := draft.Reconcile(tt.persisted, tt.draft)
			if diff := cmp.Diff(tt.upsert, upsertIDs(plan)); diff != "" {
				t.Errorf("upsert mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.delete, plan.Delete); diff != "" {
				t.Errorf("delete mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.created, plan.Created); diff != "" {
				t.Errorf("created mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
