// Package dto holds the JSON bodies of the HTTP API.
package dto

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/export"
	"github.com/mbolis/quick-forms/model"
)

type Question struct {
	ID          string             `json:"id"`
	Text        string             `json:"question_text"`
	Type        model.QuestionType `json:"question_type"`
	Required    bool               `json:"required"`
	OrderNumber int                `json:"order_number"`
	Options     []string           `json:"options,omitempty"`
}

type Form struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Published   bool       `json:"published"`
	PublicURL   string     `json:"public_url,omitempty"`
	ShareURL    string     `json:"share_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `json:"questions"`
}

// PublicQuestion is what respondents see of a question.
type PublicQuestion struct {
	ID       string             `json:"id"`
	Text     string             `json:"question_text"`
	Type     model.QuestionType `json:"question_type"`
	Required bool               `json:"required"`
	Options  []string           `json:"options,omitempty"`
}

type PublicForm struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Questions   []PublicQuestion `json:"questions"`
}

type FormList struct {
	Forms []Form `json:"forms"`
}

type ResponseRow struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Cells       []string  `json:"cells"`
}

type ResponseTable struct {
	Count  int           `json:"count"`
	Header []string      `json:"header"`
	Rows   []ResponseRow `json:"rows"`
}

type ResponseSummary struct {
	Count     int              `json:"count"`
	Questions []export.Summary `json:"questions"`
}

// FormRequest creates or updates a form. Absent fields keep their value.
type FormRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type NewQuestionRequest struct {
	Type model.QuestionType `json:"question_type"`
}

// QuestionPatch mirrors draft.Patch; absent fields are left alone.
type QuestionPatch struct {
	Text     *string             `json:"question_text"`
	Type     *model.QuestionType `json:"question_type"`
	Required *bool               `json:"required"`
	Options  []string            `json:"options"`
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type SubmitRequest struct {
	Answers map[string]string `json:"answers"`
}

type Created struct {
	ID string `json:"id"`
}

func NewForm(f model.Form, questions []model.Question, shareBase string) (Form, error) {
	out := Form{}
	if err := copier.Copy(&out, &f); err != nil {
		return out, errors.Wrap(err, "dto.form")
	}
	out.Questions = []Question{}
	if err := copier.CopyWithOption(&out.Questions, &questions, copier.Option{DeepCopy: true}); err != nil {
		return out, errors.Wrap(err, "dto.form.questions")
	}
	out.ShareURL, _ = draft.ShareURL(shareBase, f)
	return out, nil
}

func NewFormList(forms []model.Form, shareBase string) (FormList, error) {
	out := FormList{Forms: make([]Form, 0, len(forms))}
	for _, f := range forms {
		form, err := NewForm(f, nil, shareBase)
		if err != nil {
			return out, err
		}
		out.Forms = append(out.Forms, form)
	}
	return out, nil
}

func NewPublicForm(f model.Form, questions []model.Question) (PublicForm, error) {
	out := PublicForm{Title: f.Title, Description: f.Description, Questions: []PublicQuestion{}}
	if err := copier.CopyWithOption(&out.Questions, &questions, copier.Option{DeepCopy: true}); err != nil {
		return out, errors.Wrap(err, "dto.public_form")
	}
	return out, nil
}

func NewResponseTable(t export.Table) ResponseTable {
	out := ResponseTable{Count: len(t.Rows), Header: t.Header, Rows: make([]ResponseRow, 0, len(t.Rows))}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, ResponseRow{ID: row.ResponseID, SubmittedAt: row.SubmittedAt, Cells: row.Cells})
	}
	return out
}

// Patch converts the request to a draft patch. Options stay nil when absent
// from the request, and non-nil when sent, even empty.
func (p QuestionPatch) Patch() draft.Patch {
	return draft.Patch{
		Text:     p.Text,
		Type:     p.Type,
		Required: p.Required,
		Options:  p.Options,
	}
}
