// Package repository loads and stores typed forms, questions and responses
// through a store.Gateway.
package repository

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/store"
)

// ErrNotFound means the form does not exist, or for public lookups, is not published.
var ErrNotFound = errors.New("not found")

type Repository struct {
	gw store.Gateway
}

func New(gw store.Gateway) *Repository {
	return &Repository{gw: gw}
}

func (r *Repository) Gateway() store.Gateway {
	return r.gw
}

func (r *Repository) Form(ctx context.Context, id string) (model.Form, error) {
	return r.oneForm(ctx, store.Where(store.Eq("id", id)))
}

// PublishedForm resolves a public token to its form, only while published.
func (r *Repository) PublishedForm(ctx context.Context, token string) (model.Form, error) {
	if token == "" {
		return model.Form{}, ErrNotFound
	}
	return r.oneForm(ctx, store.Where(store.Eq("public_url", token), store.Eq("published", true)))
}

func (r *Repository) oneForm(ctx context.Context, filter store.Filter) (model.Form, error) {
	recs, err := r.gw.Select(ctx, store.Forms, filter)
	if err != nil {
		return model.Form{}, err
	}
	if len(recs) == 0 {
		return model.Form{}, ErrNotFound
	}
	return model.FormFromRecord(recs[0])
}

// Forms lists every form, most recently modified first.
func (r *Repository) Forms(ctx context.Context) ([]model.Form, error) {
	recs, err := r.gw.Select(ctx, store.Forms, nil, store.Desc("updated_at"))
	if err != nil {
		return nil, err
	}
	forms := make([]model.Form, 0, len(recs))
	for _, rec := range recs {
		f, err := model.FormFromRecord(rec)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// Questions returns the form's questions by order position.
func (r *Repository) Questions(ctx context.Context, formID string) ([]model.Question, error) {
	recs, err := r.gw.Select(ctx, store.Questions,
		store.Where(store.Eq("form_id", formID)),
		store.Asc("order_number"), store.Asc("created_at"))
	if err != nil {
		return nil, err
	}
	questions := make([]model.Question, 0, len(recs))
	for _, rec := range recs {
		q, err := model.QuestionFromRecord(rec)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// QuestionIDs returns the ids of the form's persisted questions.
func (r *Repository) QuestionIDs(ctx context.Context, formID string) ([]string, error) {
	questions, err := r.Questions(ctx, formID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids, nil
}

// Responses returns the form's responses, newest first.
func (r *Repository) Responses(ctx context.Context, formID string) ([]model.Response, error) {
	recs, err := r.gw.Select(ctx, store.Responses,
		store.Where(store.Eq("form_id", formID)),
		store.Desc("created_at"))
	if err != nil {
		return nil, err
	}
	responses := make([]model.Response, 0, len(recs))
	for _, rec := range recs {
		resp, err := model.ResponseFromRecord(rec)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (r *Repository) InsertResponse(ctx context.Context, resp model.Response) error {
	rec, err := resp.Record()
	if err != nil {
		return err
	}
	return r.gw.Insert(ctx, store.Responses, rec)
}

// DeleteForm removes the form together with its questions and responses.
// The three deletes are independent; a failure may leave some of them done.
func (r *Repository) DeleteForm(ctx context.Context, id string) error {
	if _, err := r.Form(ctx, id); err != nil {
		return err
	}
	byForm := store.Where(store.Eq("form_id", id))
	if err := r.gw.Delete(ctx, store.Responses, byForm); err != nil {
		return errors.Wrap(err, "repository.delete_form.responses")
	}
	if err := r.gw.Delete(ctx, store.Questions, byForm); err != nil {
		return errors.Wrap(err, "repository.delete_form.questions")
	}
	if err := r.gw.Delete(ctx, store.Forms, store.Where(store.Eq("id", id))); err != nil {
		return errors.Wrap(err, "repository.delete_form")
	}
	return nil
}
