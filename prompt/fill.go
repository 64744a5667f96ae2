package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/respond"
)

const (
	// BackInput typed in a text answer returns to the previous question.
	BackInput = "<"
	backLabel = "« Back"
	skipLabel = "(no answer)"
)

// Fill runs the session on d until it is submitted, then offers to submit
// another response. It returns nil when the respondent is done, ErrAborted on
// interrupt and the storage error when a failed submission is not retried.
func Fill(ctx context.Context, s *respond.Session, d Driver) error {
	if s.State() != respond.InProgress {
		return errors.Errorf("prompt.fill: session is %s", s.State())
	}
	if err := intro(ctx, s, d); err != nil {
		return err
	}

	for {
		done, err := fillOnce(ctx, s, d)
		if err != nil || done {
			return err
		}
		if err := d.Info(ctx, "Thank you! Your response has been recorded."); err != nil {
			return err
		}
		again, err := d.Confirm(ctx, ConfirmConfig{Message: "Submit another response?"})
		if err != nil || !again {
			return err
		}
		s.Reset()
	}
}

func intro(ctx context.Context, s *respond.Session, d Driver) error {
	msg := s.Form.Title
	if s.Form.Description != "" {
		msg += "\n" + s.Form.Description
	}
	if s.IsPreview() {
		msg += "\n(preview: responses are not recorded)"
	}
	return d.Info(ctx, msg)
}

// fillOnce walks the questions until the session is submitted. done reports
// the flow ended without a submission.
func fillOnce(ctx context.Context, s *respond.Session, d Driver) (done bool, err error) {
	for s.State() == respond.InProgress {
		q, _ := s.Current()
		value, back, err := ask(ctx, s, q, d)
		if err != nil {
			return true, err
		}
		if back {
			s.Previous()
			continue
		}

		if err := s.SetAnswer(q.ID, value); err != nil {
			if err := d.Info(ctx, err.Error()); err != nil {
				return true, err
			}
			continue
		}

		err = s.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, respond.ErrValidation):
			if err := d.Info(ctx, err.Error()); err != nil {
				return true, err
			}
		case errors.Is(err, respond.ErrPreview):
			return true, d.Info(ctx, "All answers look good. Preview responses are not recorded.")
		default:
			if err := d.Info(ctx, "Could not submit your response: "+err.Error()); err != nil {
				return true, err
			}
			retry, cerr := d.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
			if cerr != nil {
				return true, cerr
			}
			if !retry {
				return true, err
			}
		}
	}
	return false, nil
}

func ask(ctx context.Context, s *respond.Session, q model.Question, d Driver) (value string, back bool, err error) {
	message := fmt.Sprintf("[%d/%d] %s", s.Step()+1, len(s.Questions), q.Text)
	if q.Required {
		message += " *"
	}
	current := s.Answer(q.ID)

	if !q.Type.HasOptions() {
		// on the first step going back re-asks the same question
		cfg := InputConfig{
			Message: message,
			Default: current,
			Help:    fmt.Sprintf("Enter %q to go back", BackInput),
		}
		value, err = d.Input(ctx, cfg)
		if err != nil {
			return "", false, err
		}
		value = strings.TrimSpace(value)
		return value, value == BackInput, nil
	}

	options := append([]string(nil), q.Options...)
	if !q.Required {
		options = append(options, skipLabel)
	}
	if s.Step() > 0 {
		options = append(options, backLabel)
	}
	def := 0
	if current == "" && !q.Required {
		def = len(q.Options)
	}
	for i, o := range q.Options {
		if o == current {
			def = i
		}
	}
	i, err := d.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: def})
	if err != nil {
		return "", false, err
	}
	switch {
	case i < 0 || i >= len(options):
		return "", false, errors.Errorf("prompt.fill: no option %d", i)
	case i < len(q.Options):
		return q.Options[i], false, nil
	case options[i] == backLabel:
		return "", true, nil
	}
	return "", false, nil
}
