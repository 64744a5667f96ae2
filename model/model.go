package model

import (
	"fmt"
	"time"
)

type QuestionType string

const (
	ShortText      QuestionType = "short_text"
	MultipleChoice QuestionType = "multiple_choice"
	Dropdown       QuestionType = "dropdown"
)

func (t QuestionType) Valid() bool {
	switch t {
	case ShortText, MultipleChoice, Dropdown:
		return true
	}
	return false
}

// HasOptions reports whether answers to t are picked from an option list.
func (t QuestionType) HasOptions() bool {
	return t == MultipleChoice || t == Dropdown
}

const (
	DefaultFormTitle    = "Untitled Form"
	DefaultQuestionText = "New Question"
)

func OptionLabel(n int) string {
	return fmt.Sprintf("Option %d", n)
}

func DefaultOptions() []string {
	return []string{OptionLabel(1), OptionLabel(2), OptionLabel(3)}
}

type Form struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Published   bool      `json:"published"`
	PublicURL   string    `json:"public_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Question struct {
	ID          string       `json:"id"`
	FormID      string       `json:"form_id"`
	Text        string       `json:"question_text"`
	Type        QuestionType `json:"question_type"`
	Required    bool         `json:"required"`
	OrderNumber int          `json:"order_number"`
	Options     []string     `json:"options"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasOption reports whether value is one of q's options.
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}

func (q Question) Clone() Question {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}

// Response maps question ids to the respondent's answers. Answers to
// questions deleted after submission are kept.
type Response struct {
	ID        string            `json:"id"`
	FormID    string            `json:"form_id"`
	Data      map[string]string `json:"response_data"`
	CreatedAt time.Time         `json:"created_at"`
}
