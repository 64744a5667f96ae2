package respond

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/model"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError blocks advancement or submission. Step is where the flow
// stands after the check.
type ValidationError struct {
	Step    int
	Missing []string
	errs    *multierror.Error
}

func (e *ValidationError) Error() string {
	return e.errs.Error()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.errs
}

func (e *ValidationError) add(err error) {
	e.errs = multierror.Append(e.errs, err)
}

func newValidationError(step int) *ValidationError {
	e := &ValidationError{Step: step}
	e.errs = &multierror.Error{ErrorFormat: formatErrors}
	return e
}

func formatErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// IsAnswered reports whether answers holds a non-blank answer to q.
func IsAnswered(q model.Question, answers map[string]string) bool {
	return strings.TrimSpace(answers[q.ID]) != ""
}

// MissingRequired returns the indexes of required questions without an
// answer, in question order.
func MissingRequired(questions []model.Question, answers map[string]string) []int {
	var missing []int
	for i, q := range questions {
		if q.Required && !IsAnswered(q, answers) {
			missing = append(missing, i)
		}
	}
	return missing
}

func missingError(step int, questions []model.Question, missing []int) *ValidationError {
	e := newValidationError(step)
	for _, i := range missing {
		q := questions[i]
		e.Missing = append(e.Missing, q.ID)
		e.add(errors.Errorf("question %q requires an answer", q.Text))
	}
	return e
}
