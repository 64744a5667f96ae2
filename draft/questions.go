package draft

import (
	"github.com/mbolis/quick-forms/model"
)

// AddQuestion appends a question of the given kind with default text. Choice
// kinds start with three default options.
func (d *Draft) AddQuestion(kind model.QuestionType) (model.Question, error) {
	if !kind.Valid() {
		return model.Question{}, ErrInvalidKind
	}
	now := d.now().UTC()
	q := model.Question{
		ID:          model.NewID(),
		FormID:      d.Form.ID,
		Text:        model.DefaultQuestionText,
		Type:        kind,
		OrderNumber: len(d.Questions),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if kind.HasOptions() {
		q.Options = model.DefaultOptions()
	}
	d.Questions = append(d.Questions, q)
	return q.Clone(), nil
}

// Patch lists the question fields to change; nil fields are left alone.
type Patch struct {
	Text     *string
	Type     *model.QuestionType
	Required *bool
	Options  []string
}

// UpdateQuestion merges p into the question with the given id. It reports
// false, without error, when no such question exists. Switching to short text
// drops the options; switching to a choice kind assigns default options unless
// the question already has some.
func (d *Draft) UpdateQuestion(id string, p Patch) (bool, error) {
	i := d.indexOf(id)
	if i < 0 {
		return false, nil
	}
	q := d.Questions[i].Clone()

	kind := q.Type
	if p.Type != nil {
		kind = *p.Type
	}
	if !kind.Valid() {
		return true, ErrInvalidKind
	}
	if p.Options != nil && kind.HasOptions() && len(p.Options) == 0 {
		return true, ErrEmptyOptions
	}

	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Required != nil {
		q.Required = *p.Required
	}
	if p.Options != nil && kind.HasOptions() {
		q.Options = append([]string(nil), p.Options...)
	}
	q.Type = kind
	switch {
	case !kind.HasOptions():
		q.Options = nil
	case len(q.Options) == 0:
		q.Options = model.DefaultOptions()
	}
	q.UpdatedAt = d.now().UTC()

	d.Questions[i] = q
	return true, nil
}

// RemoveQuestion drops the question with the given id. Order positions of the
// remaining questions are left as they are until the next reorder.
func (d *Draft) RemoveQuestion(id string) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.Questions = append(d.Questions[:i:i], d.Questions[i+1:]...)
	return true
}

// ReorderQuestions puts the draft's questions in the order given, which must
// be a permutation of them, and renumbers positions from zero. Only ids are
// taken from ordered; question contents stay those of the draft.
func (d *Draft) ReorderQuestions(ordered []model.Question) error {
	if len(ordered) != len(d.Questions) {
		return ErrNotPermutation
	}
	byID := make(map[string]model.Question, len(d.Questions))
	for _, q := range d.Questions {
		byID[q.ID] = q
	}

	now := d.now().UTC()
	next := make([]model.Question, 0, len(ordered))
	for i, o := range ordered {
		q, ok := byID[o.ID]
		if !ok {
			return ErrNotPermutation
		}
		delete(byID, o.ID)
		q.OrderNumber = i
		q.UpdatedAt = now
		next = append(next, q)
	}
	d.Questions = next
	return nil
}

// ReorderIDs is ReorderQuestions addressed by id.
func (d *Draft) ReorderIDs(ids []string) error {
	ordered := make([]model.Question, len(ids))
	for i, id := range ids {
		ordered[i] = model.Question{ID: id}
	}
	return d.ReorderQuestions(ordered)
}

// MoveQuestion moves the question to position to, shifting the others.
func (d *Draft) MoveQuestion(id string, to int) error {
	i := d.indexOf(id)
	if i < 0 {
		return ErrUnknownQuestion
	}
	if to < 0 || to >= len(d.Questions) {
		return ErrNotPermutation
	}
	ordered := make([]model.Question, 0, len(d.Questions))
	for j, q := range d.Questions {
		if j != i {
			ordered = append(ordered, q)
		}
	}
	ordered = append(ordered[:to], append([]model.Question{d.Questions[i]}, ordered[to:]...)...)
	return d.ReorderQuestions(ordered)
}

// AddOption appends "Option N+1" to a choice question. Short text questions
// are left alone.
func (d *Draft) AddOption(id string) error {
	return d.editOptions(id, func(options []string) ([]string, error) {
		return append(options, model.OptionLabel(len(options)+1)), nil
	})
}

func (d *Draft) SetOption(id string, index int, text string) error {
	return d.editOptions(id, func(options []string) ([]string, error) {
		if index < 0 || index >= len(options) {
			return nil, ErrOptionIndex
		}
		options[index] = text
		return options, nil
	})
}

// RemoveOption drops an option, refusing to remove the last one.
func (d *Draft) RemoveOption(id string, index int) error {
	return d.editOptions(id, func(options []string) ([]string, error) {
		if index < 0 || index >= len(options) {
			return nil, ErrOptionIndex
		}
		if len(options) == 1 {
			return nil, ErrLastOption
		}
		return append(options[:index], options[index+1:]...), nil
	})
}

func (d *Draft) editOptions(id string, edit func([]string) ([]string, error)) error {
	i := d.indexOf(id)
	if i < 0 {
		return ErrUnknownQuestion
	}
	q := d.Questions[i].Clone()
	if !q.Type.HasOptions() {
		return nil
	}
	options, err := edit(q.Options)
	if err != nil {
		return err
	}
	q.Options = options
	q.UpdatedAt = d.now().UTC()
	d.Questions[i] = q
	return nil
}

// Question returns a copy of the question with the given id.
func (d *Draft) Question(id string) (model.Question, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return model.Question{}, false
	}
	return d.Questions[i].Clone(), true
}

func (d *Draft) indexOf(id string) int {
	for i, q := range d.Questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}
