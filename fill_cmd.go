package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/prompt"
	"github.com/mbolis/quick-forms/respond"
)

var fillPreview bool

var fillCmd = &cobra.Command{
	Use:   "fill <token|form-id>",
	Short: "Answer a published form from the terminal",
	Long:  "Answer a published form from the terminal. With --preview the argument is a form id and nothing is recorded.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFill,
}

func init() {
	fillCmd.Flags().BoolVar(&fillPreview, "preview", false, "walk through a form without recording a response")
}

func runFill(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	var s *respond.Session
	if fillPreview {
		d, err := draft.Load(cmd.Context(), e.store, args[0])
		if err != nil {
			return err
		}
		s = respond.Preview(d.Form, d.Questions)
	} else if s, err = respond.Open(cmd.Context(), e.store, args[0]); err != nil {
		return err
	}

	err = prompt.Fill(cmd.Context(), s, prompt.NewSurveyDriver(os.Stdout))
	if errors.Is(err, prompt.ErrAborted) {
		return nil
	}
	return err
}
