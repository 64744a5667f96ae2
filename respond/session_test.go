package respond_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/repository"
	"github.com/mbolis/quick-forms/respond"
	"github.com/mbolis/quick-forms/store"
)

type spec struct {
	text     string
	kind     model.QuestionType
	required bool
	options  []string
}

// publish saves a form with the given questions and returns its token.
func publish(t *testing.T, gw store.Gateway, specs ...spec) (string, []model.Question) {
	t.Helper()
	ctx := context.Background()
	d := draft.New(gw)
	for _, s := range specs {
		q, err := d.AddQuestion(s.kind)
		if err != nil {
			t.Fatalf("failed to add question: %v", err)
		}
		text, required := s.text, s.required
		if _, err := d.UpdateQuestion(q.ID, draft.Patch{Text: &text, Required: &required, Options: s.options}); err != nil {
			t.Fatalf("failed to update question: %v", err)
		}
	}
	if err := d.Save(ctx); err != nil {
		t.Fatalf("failed to save form: %v", err)
	}
	if err := d.Publish(ctx); err != nil {
		t.Fatalf("failed to publish form: %v", err)
	}
	return d.Form.PublicURL, d.Questions
}

func open(t *testing.T, gw store.Gateway, token string) *respond.Session {
	t.Helper()
	s, err := respond.Open(context.Background(), gw, token)
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	return s
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("published form starts at step zero", func(t *testing.T) {
		gw := store.NewMemory()
		token, _ := publish(t, gw, spec{text: "Name", kind: model.ShortText})
		s := open(t, gw, token)
		if s.State() != respond.InProgress || s.Step() != 0 {
			t.Errorf("unexpected start: %s at %d", s.State(), s.Step())
		}
	})

	t.Run("not found", func(t *testing.T) {
		gw := store.NewMemory()
		// questions removed after publishing
		empty, qs := publish(t, gw, spec{text: "Gone", kind: model.ShortText})
		emptied, err := draft.Load(ctx, gw, qs[0].FormID)
		if err != nil {
			t.Fatalf("failed to load form: %v", err)
		}
		emptied.RemoveQuestion(qs[0].ID)
		if err := emptied.Save(ctx); err != nil {
			t.Fatalf("failed to save form: %v", err)
		}

		hidden := draft.New(gw)
		if _, err := hidden.AddQuestion(model.ShortText); err != nil {
			t.Fatalf("failed to add question: %v", err)
		}
		if err := hidden.Save(ctx); err != nil {
			t.Fatalf("failed to save form: %v", err)
		}
		if err := hidden.Publish(ctx); err != nil {
			t.Fatalf("failed to publish form: %v", err)
		}
		if err := hidden.Unpublish(ctx); err != nil {
			t.Fatalf("failed to unpublish form: %v", err)
		}

		for name, token := range map[string]string{
			"no questions": empty,
			"unpublished":  hidden.Form.PublicURL,
			"unknown":      "zzzzzzzzzz",
		} {
			s, err := respond.Open(ctx, gw, token)
			if !errors.Is(err, repository.ErrNotFound) {
				t.Errorf("%s: expected ErrNotFound, got %v", name, err)
			}
			if s.State() != respond.NotFound {
				t.Errorf("%s: expected not found state, got %s", name, s.State())
			}
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		gw := store.NewMemory()
		token, _ := publish(t, gw, spec{text: "Name", kind: model.ShortText})
		boom := errors.New("backend down")
		gw.FailOn("select", store.Questions, boom)

		s, err := respond.Open(ctx, gw, token)
		if !errors.Is(err, boom) || s.State() != respond.NotFound {
			t.Errorf("expected storage error and not found state, got %v %s", err, s.State())
		}
	})
}

func TestNext(t *testing.T) {
	ctx := context.Background()
	gw := store.NewMemory()
	token, qs := publish(t, gw,
		spec{text: "Name", kind: model.ShortText, required: true},
		spec{text: "Age", kind: model.ShortText},
	)
	s := open(t, gw, token)

	err := s.Next(ctx)
	if !errors.Is(err, respond.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Step() != 0 {
		t.Errorf("step moved to %d", s.Step())
	}

	if err := s.SetAnswer(qs[0].ID, "   "); err != nil {
		t.Fatalf("failed to set answer: %v", err)
	}
	if err := s.Next(ctx); !errors.Is(err, respond.ErrValidation) {
		t.Errorf("blank answer should not count, got %v", err)
	}

	if err := s.SetAnswer(qs[0].ID, "Ada"); err != nil {
		t.Fatalf("failed to set answer: %v", err)
	}
	if err := s.Next(ctx); err != nil {
		t.Fatalf("failed to advance: %v", err)
	}
	if s.Step() != 1 || s.Progress() != 100 {
		t.Errorf("unexpected position %d (%d%%)", s.Step(), s.Progress())
	}

	s.Previous()
	s.Previous()
	if s.Step() != 0 || s.Progress() != 50 {
		t.Errorf("unexpected position %d (%d%%)", s.Step(), s.Progress())
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("required text and optional dropdown", func(t *testing.T) {
		gw := store.NewMemory()
		token, qs := publish(t, gw,
			spec{text: "Name", kind: model.ShortText, required: true},
			spec{text: "Pick", kind: model.Dropdown, options: []string{"A", "B"}},
		)
		s := open(t, gw, token)

		if err := s.SetAnswer(qs[1].ID, "A"); err != nil {
			t.Fatalf("failed to set answer: %v", err)
		}
		if err := s.GoTo(1); err != nil {
			t.Fatalf("failed to jump: %v", err)
		}
		err := s.Next(ctx)
		var verr *respond.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if verr.Step != 0 || s.Step() != 0 {
			t.Errorf("expected flow back at step 0, got %d/%d", verr.Step, s.Step())
		}
		if diff := cmp.Diff([]string{qs[0].ID}, verr.Missing); diff != "" {
			t.Errorf("missing mismatch (-want +got):\n%s", diff)
		}
		if gw.Len(store.Responses) != 0 {
			t.Fatal("rejected submission was stored")
		}

		if err := s.SetAnswer(qs[0].ID, "Ada"); err != nil {
			t.Fatalf("failed to set answer: %v", err)
		}
		if err := s.Next(ctx); err != nil {
			t.Fatalf("failed to advance: %v", err)
		}
		if err := s.Next(ctx); err != nil {
			t.Fatalf("failed to submit: %v", err)
		}
		if s.State() != respond.Submitted || s.Progress() != 100 {
			t.Errorf("unexpected state %s", s.State())
		}

		responses, err := repository.New(gw).Responses(ctx, s.Form.ID)
		if err != nil {
			t.Fatalf("failed to load responses: %v", err)
		}
		if len(responses) != 1 {
			t.Fatalf("expected one response, got %d", len(responses))
		}
		want := map[string]string{qs[0].ID: "Ada", qs[1].ID: "A"}
		if diff := cmp.Diff(want, responses[0].Data); diff != "" {
			t.Errorf("answers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reports every missing question", func(t *testing.T) {
		gw := store.NewMemory()
		token, qs := publish(t, gw,
			spec{text: "One", kind: model.ShortText},
			spec{text: "Two", kind: model.ShortText, required: true},
			spec{text: "Three", kind: model.ShortText, required: true},
		)
		s := open(t, gw, token)
		err := s.Submit(ctx)
		var verr *respond.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if diff := cmp.Diff([]string{qs[1].ID, qs[2].ID}, verr.Missing); diff != "" {
			t.Errorf("missing mismatch (-want +got):\n%s", diff)
		}
		if s.Step() != 1 {
			t.Errorf("expected jump to step 1, got %d", s.Step())
		}
	})

	t.Run("storage failure returns to last step", func(t *testing.T) {
		gw := store.NewMemory()
		token, qs := publish(t, gw,
			spec{text: "One", kind: model.ShortText, required: true},
			spec{text: "Two", kind: model.ShortText},
		)
		s := open(t, gw, token)
		if err := s.SetAnswer(qs[0].ID, "x"); err != nil {
			t.Fatalf("failed to set answer: %v", err)
		}

		boom := errors.New("backend down")
		gw.FailOn("insert", store.Responses, boom)
		if err := s.Submit(ctx); !errors.Is(err, boom) {
			t.Fatalf("expected storage error, got %v", err)
		}
		if s.State() != respond.InProgress || s.Step() != 1 {
			t.Errorf("unexpected position %s at %d", s.State(), s.Step())
		}
		if s.Answer(qs[0].ID) != "x" {
			t.Error("answers lost after failed submit")
		}

		gw.FailOn("insert", store.Responses, nil)
		if err := s.Submit(ctx); err != nil {
			t.Fatalf("failed to retry submit: %v", err)
		}
	})

	t.Run("reset for another response", func(t *testing.T) {
		gw := store.NewMemory()
		token, qs := publish(t, gw, spec{text: "One", kind: model.ShortText})
		s := open(t, gw, token)
		if err := s.SetAnswer(qs[0].ID, "first"); err != nil {
			t.Fatalf("failed to set answer: %v", err)
		}
		if err := s.Next(ctx); err != nil {
			t.Fatalf("failed to submit: %v", err)
		}
		if err := s.SetAnswer(qs[0].ID, "late"); !errors.Is(err, respond.ErrNotInProgress) {
			t.Errorf("expected ErrNotInProgress, got %v", err)
		}

		s.Reset()
		if s.State() != respond.InProgress || s.Step() != 0 || len(s.Answers()) != 0 {
			t.Errorf("unexpected reset state %s at %d with %v", s.State(), s.Step(), s.Answers())
		}
		if err := s.Next(ctx); err != nil {
			t.Fatalf("failed to submit again: %v", err)
		}
		if gw.Len(store.Responses) != 2 {
			t.Errorf("expected two responses, got %d", gw.Len(store.Responses))
		}
	})
}

func TestSetAnswer(t *testing.T) {
	gw := store.NewMemory()
	token, qs := publish(t, gw,
		spec{text: "Color", kind: model.MultipleChoice, options: []string{"red", "blue"}},
	)
	s := open(t, gw, token)

	if err := s.SetAnswer(qs[0].ID, "green"); !errors.Is(err, respond.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := s.SetAnswer("nope", "red"); !errors.Is(err, respond.ErrUnknownQuestion) {
		t.Errorf("expected ErrUnknownQuestion, got %v", err)
	}
	if err := s.SetAnswer(qs[0].ID, "blue"); err != nil {
		t.Fatalf("failed to set answer: %v", err)
	}
	if err := s.SetAnswer(qs[0].ID, ""); err != nil {
		t.Fatalf("failed to clear answer: %v", err)
	}
	if _, ok := s.Answers()[qs[0].ID]; ok {
		t.Error("cleared answer still present")
	}
	if err := s.GoTo(3); !errors.Is(err, respond.ErrStepRange) {
		t.Errorf("expected ErrStepRange, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	d := draft.New(store.NewMemory(), draft.WithClock(func() time.Time { return time.Unix(0, 0) }))
	q, err := d.AddQuestion(model.Dropdown)
	if err != nil {
		t.Fatalf("failed to add question: %v", err)
	}

	s := respond.Preview(d.Form, d.Questions)
	if !s.IsPreview() || s.State() != respond.InProgress {
		t.Fatalf("unexpected preview %s", s.State())
	}
	if err := s.SetAnswer(q.ID, "Option 2"); err != nil {
		t.Fatalf("failed to set answer: %v", err)
	}
	if err := s.Next(context.Background()); !errors.Is(err, respond.ErrPreview) {
		t.Errorf("expected ErrPreview, got %v", err)
	}
	if s.State() != respond.InProgress {
		t.Errorf("preview left in %s", s.State())
	}

	if respond.Preview(d.Form, nil).State() != respond.NotFound {
		t.Error("empty preview should be not found")
	}
}

func TestIsAnswered(t *testing.T) {
	q := model.Question{ID: "q"}
	for value, want := range map[string]bool{"": false, " \t": false, "x": true, " 0 ": true} {
		if got := respond.IsAnswered(q, map[string]string{"q": value}); got != want {
			t.Errorf("IsAnswered(%q) = %v, want %v", value, got, want)
		}
	}
	if respond.IsAnswered(q, nil) {
		t.Error("nil answers should not count")
	}
}
