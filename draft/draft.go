// Package draft holds a form and its ordered questions as one editable unit,
// and reconciles it with storage on save.
//
// A Draft is owned by a single editing flow and is not safe for concurrent use.
package draft

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/repository"
	"github.com/mbolis/quick-forms/store"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrNotPermutation  = errors.New("not a permutation of the current questions")
	ErrInvalidKind     = errors.New("invalid question kind")
	ErrEmptyOptions    = errors.New("choice questions need at least one option")
	ErrLastOption      = errors.New("cannot remove the last option")
	ErrOptionIndex     = errors.New("option index out of range")
	ErrNotSaved        = errors.New("form has not been saved")
	ErrNoQuestions     = errors.New("form has no questions")
)

type Draft struct {
	Form      model.Form
	Questions []model.Question

	gw    store.Gateway
	repo  *repository.Repository
	saved bool
	now   func() time.Time
}

type Option func(*Draft)

// WithClock replaces the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Draft) {
		d.now = now
	}
}

func newDraft(gw store.Gateway, opts []Option) *Draft {
	d := &Draft{
		gw:   gw,
		repo: repository.New(gw),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// New starts an unsaved form with default title and no questions.
func New(gw store.Gateway, opts ...Option) *Draft {
	d := newDraft(gw, opts)
	now := d.now().UTC()
	d.Form = model.Form{
		ID:        model.NewID(),
		Title:     model.DefaultFormTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.Questions = []model.Question{}
	return d
}

// Load opens a persisted form for editing.
func Load(ctx context.Context, gw store.Gateway, id string, opts ...Option) (*Draft, error) {
	d := newDraft(gw, opts)
	form, err := d.repo.Form(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := d.repo.Questions(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "draft.load.questions")
	}
	d.Form = form
	d.Questions = questions
	d.saved = true
	return d, nil
}

// Editing reports whether the form exists in storage, so it is addressed by id
// rather than being created.
func (d *Draft) Editing() bool {
	return d.saved
}

func (d *Draft) SetDetails(title, description string) {
	d.Form.Title = title
	d.Form.Description = description
}

// Save upserts the form and its questions, then deletes the form's persisted
// questions that are no longer in the draft. On failure the draft is left as
// it was; storage may hold part of the writes.
func (d *Draft) Save(ctx context.Context) error {
	now := d.now().UTC()

	form := d.Form
	form.UpdatedAt = now
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	rec, err := d.gw.Upsert(ctx, store.Forms, form.Record())
	if err != nil {
		return errors.Wrap(err, "draft.save.form")
	}
	if form, err = model.FormFromRecord(rec); err != nil {
		return errors.Wrap(err, "draft.save.form")
	}

	persisted, err := d.repo.QuestionIDs(ctx, form.ID)
	if err != nil {
		return errors.Wrap(err, "draft.save.persisted")
	}

	questions := make([]model.Question, len(d.Questions))
	for i, q := range d.Questions {
		q = q.Clone()
		q.FormID = form.ID
		q.UpdatedAt = now
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		questions[i] = q
	}
	plan := Reconcile(persisted, questions)

	saved := make([]model.Question, 0, len(plan.Upsert))
	for _, q := range plan.Upsert {
		rec, err := q.Record()
		if err != nil {
			return errors.Wrap(err, "draft.save.questions")
		}
		if rec, err = d.gw.Upsert(ctx, store.Questions, rec); err != nil {
			return errors.Wrap(err, "draft.save.questions")
		}
		if q, err = model.QuestionFromRecord(rec); err != nil {
			return errors.Wrap(err, "draft.save.questions")
		}
		saved = append(saved, q)
	}

	if len(plan.Delete) > 0 {
		err := d.gw.Delete(ctx, store.Questions, store.Where(
			store.Eq("form_id", form.ID),
			store.In("id", plan.Delete...),
		))
		if err != nil {
			return errors.Wrap(err, "draft.save.sweep")
		}
	}

	log.WithFields(log.Fields{
		"form":      form.ID,
		"questions": len(saved),
		"created":   len(plan.Created),
		"removed":   len(plan.Delete),
	}).Debug("draft.save")
	d.Form = form
	d.Questions = saved
	d.saved = true
	return nil
}

// Publish makes the saved form reachable by its public token, assigning one
// on first publish. Publishing again keeps the token. A form without
// questions cannot be published.
func (d *Draft) Publish(ctx context.Context) error {
	if !d.saved {
		return ErrNotSaved
	}
	if len(d.Questions) == 0 {
		return ErrNoQuestions
	}
	token := d.Form.PublicURL
	if token == "" {
		token = model.NewPublicToken()
	}
	if err := d.setPublished(ctx, true, token); err != nil {
		return errors.Wrap(err, "draft.publish")
	}
	log.Debugf("draft.publish: form %s published as %s", d.Form.ID, d.Form.PublicURL)
	return nil
}

// Unpublish hides the form. The token is kept so publishing again restores
// the same link.
func (d *Draft) Unpublish(ctx context.Context) error {
	if !d.saved {
		return ErrNotSaved
	}
	if err := d.setPublished(ctx, false, d.Form.PublicURL); err != nil {
		return errors.Wrap(err, "draft.unpublish")
	}
	log.Debugf("draft.unpublish: form %s unpublished", d.Form.ID)
	return nil
}

func (d *Draft) setPublished(ctx context.Context, published bool, token string) error {
	patch := store.Record{
		"published":  published,
		"updated_at": d.now().UTC().Format(model.TimeFormat),
	}
	if token != "" {
		patch["public_url"] = token
	}
	n, err := d.gw.Update(ctx, store.Forms, store.Where(store.Eq("id", d.Form.ID)), patch)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	form, err := d.repo.Form(ctx, d.Form.ID)
	if err != nil {
		return err
	}
	d.Form = form
	return nil
}

// ShareURL is the respondent link under base, available while published.
func (d *Draft) ShareURL(base string) (string, bool) {
	return ShareURL(base, d.Form)
}

func ShareURL(base string, form model.Form) (string, bool) {
	if !form.Published || form.PublicURL == "" {
		return "", false
	}
	return strings.TrimRight(base, "/") + "/f/" + form.PublicURL, true
}
