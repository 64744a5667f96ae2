// Package respond drives a respondent through a published form one question
// at a time and submits the collected answers as a response.
package respond

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/repository"
	"github.com/mbolis/quick-forms/store"
)

type State int

const (
	Loading State = iota
	InProgress
	Submitting
	Submitted
	NotFound
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case InProgress:
		return "in_progress"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

var (
	ErrNotInProgress   = errors.New("session is not in progress")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrStepRange       = errors.New("step out of range")
	ErrPreview         = errors.New("preview sessions cannot submit")
)

// Session is one attempt at filling a form. It is not safe for concurrent use.
type Session struct {
	Form      model.Form
	Questions []model.Question

	state    State
	step     int
	answers  map[string]string
	response model.Response
	repo     *repository.Repository
	now      func() time.Time
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func newSession(opts []Option) *Session {
	s := &Session{
		state:   Loading,
		answers: map[string]string{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the form published under token. When the form is missing,
// unpublished, has no questions or cannot be loaded, the session is left in
// NotFound and the cause is returned.
func Open(ctx context.Context, gw store.Gateway, token string, opts ...Option) (*Session, error) {
	s := newSession(opts)
	s.repo = repository.New(gw)
	if err := s.load(ctx, token); err != nil {
		s.state = NotFound
		return s, err
	}
	s.state = InProgress
	return s, nil
}

func (s *Session) load(ctx context.Context, token string) error {
	form, err := s.repo.PublishedForm(ctx, token)
	if err != nil {
		return err
	}
	questions, err := s.repo.Questions(ctx, form.ID)
	if err != nil {
		return errors.Wrap(err, "respond.load.questions")
	}
	if len(questions) == 0 {
		return repository.ErrNotFound
	}
	s.Form = form
	s.Questions = questions
	return nil
}

// Preview runs the flow over questions that need not be saved. Everything
// but submission works.
func Preview(form model.Form, questions []model.Question, opts ...Option) *Session {
	s := newSession(opts)
	s.Form = form
	for _, q := range questions {
		s.Questions = append(s.Questions, q.Clone())
	}
	if len(s.Questions) == 0 {
		s.state = NotFound
		return s
	}
	s.state = InProgress
	return s
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Step() int {
	return s.step
}

func (s *Session) IsPreview() bool {
	return s.repo == nil
}

// Current is the question at the current step.
func (s *Session) Current() (model.Question, bool) {
	if s.state != InProgress && s.state != Submitting {
		return model.Question{}, false
	}
	return s.Questions[s.step], true
}

func (s *Session) Answers() map[string]string {
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

func (s *Session) Answer(questionID string) string {
	return s.answers[questionID]
}

// Response is the last response submitted.
func (s *Session) Response() model.Response {
	return s.response
}

// SetAnswer records value for the question. An empty value clears the answer.
// Choice questions only accept one of their options.
func (s *Session) SetAnswer(questionID, value string) error {
	if s.state != InProgress {
		return ErrNotInProgress
	}
	i := s.indexOf(questionID)
	if i < 0 {
		return ErrUnknownQuestion
	}
	if value == "" {
		delete(s.answers, questionID)
		return nil
	}
	q := s.Questions[i]
	if q.Type.HasOptions() && !q.HasOption(value) {
		e := newValidationError(s.step)
		e.add(errors.Errorf("%q is not an option of question %q", value, q.Text))
		return e
	}
	s.answers[questionID] = value
	return nil
}

// Next advances one step, or submits on the last one. A required question
// without an answer keeps the flow where it is.
func (s *Session) Next(ctx context.Context) error {
	if s.state != InProgress {
		return ErrNotInProgress
	}
	q := s.Questions[s.step]
	if q.Required && !IsAnswered(q, s.answers) {
		return missingError(s.step, s.Questions, []int{s.step})
	}
	if s.step < len(s.Questions)-1 {
		s.step++
		return nil
	}
	return s.Submit(ctx)
}

// Previous steps back; on the first step it does nothing.
func (s *Session) Previous() {
	if s.state == InProgress && s.step > 0 {
		s.step--
	}
}

func (s *Session) GoTo(step int) error {
	if s.state != InProgress {
		return ErrNotInProgress
	}
	if step < 0 || step >= len(s.Questions) {
		return ErrStepRange
	}
	s.step = step
	return nil
}

// Submit checks every required question and stores the answers as a new
// response. Missing answers move the flow to the first of them. A storage
// failure returns the flow to the last step with the answers kept.
func (s *Session) Submit(ctx context.Context) error {
	if s.state != InProgress {
		return ErrNotInProgress
	}
	if missing := MissingRequired(s.Questions, s.answers); len(missing) > 0 {
		s.step = missing[0]
		return missingError(s.step, s.Questions, missing)
	}
	if s.IsPreview() {
		return ErrPreview
	}

	s.state = Submitting
	resp := model.Response{
		ID:        model.NewID(),
		FormID:    s.Form.ID,
		Data:      s.Answers(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.InsertResponse(ctx, resp); err != nil {
		s.state = InProgress
		s.step = len(s.Questions) - 1
		return errors.Wrap(err, "respond.submit")
	}
	log.Debugf("respond.submit: response %s stored for form %s", resp.ID, s.Form.ID)
	s.response = resp
	s.state = Submitted
	return nil
}

// Reset starts over with no answers, for another response to the same form.
func (s *Session) Reset() {
	if s.state == NotFound || s.state == Loading {
		return
	}
	s.state = InProgress
	s.step = 0
	s.answers = map[string]string{}
}

// Progress is the share of steps reached, in percent.
func (s *Session) Progress() int {
	switch s.state {
	case Submitted:
		return 100
	case InProgress, Submitting:
		return (s.step + 1) * 100 / len(s.Questions)
	}
	return 0
}

func (s *Session) indexOf(questionID string) int {
	for i, q := range s.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}
