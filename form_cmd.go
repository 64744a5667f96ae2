package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/repository"
)

var (
	formTitle       string
	formDescription string

	questionText     string
	questionType     string
	questionRequired bool
	questionOptions  []string
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Create and edit forms",
}

var formListCmd = &cobra.Command{
	Use:   "list",
	Short: "List forms, most recently modified first",
	Args:  cobra.NoArgs,
	RunE:  runFormList,
}

var formCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty form",
	Args:  cobra.NoArgs,
	RunE:  runFormCreate,
}

var formShowCmd = &cobra.Command{
	Use:   "show <form-id>",
	Short: "Show a form and its questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormShow,
}

var formAddQuestionCmd = &cobra.Command{
	Use:   "add-question <form-id>",
	Short: "Append a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormAddQuestion,
}

var formUpdateQuestionCmd = &cobra.Command{
	Use:   "update-question <form-id> <question-id>",
	Short: "Change a question; only the given flags are applied",
	Args:  cobra.ExactArgs(2),
	RunE:  runFormUpdateQuestion,
}

var formRemoveQuestionCmd = &cobra.Command{
	Use:   "remove-question <form-id> <question-id>",
	Short: "Remove a question",
	Args:  cobra.ExactArgs(2),
	RunE:  runFormRemoveQuestion,
}

var formMoveQuestionCmd = &cobra.Command{
	Use:   "move-question <form-id> <question-id> <position>",
	Short: "Move a question to a zero-based position",
	Args:  cobra.ExactArgs(3),
	RunE:  runFormMoveQuestion,
}

var formPublishCmd = &cobra.Command{
	Use:   "publish <form-id>",
	Short: "Publish a form and print its share link",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormPublish,
}

var formUnpublishCmd = &cobra.Command{
	Use:   "unpublish <form-id>",
	Short: "Stop accepting responses; the link is kept for a later publish",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormUnpublish,
}

var formDeleteCmd = &cobra.Command{
	Use:   "delete <form-id>",
	Short: "Delete a form with its questions and responses",
	Args:  cobra.ExactArgs(1),
	RunE:  runFormDelete,
}

func init() {
	formCreateCmd.Flags().StringVar(&formTitle, "title", model.DefaultFormTitle, "form title")
	formCreateCmd.Flags().StringVar(&formDescription, "description", "", "form description")

	for _, c := range []*cobra.Command{formAddQuestionCmd, formUpdateQuestionCmd} {
		c.Flags().StringVar(&questionText, "text", model.DefaultQuestionText, "question text")
		c.Flags().StringVar(&questionType, "type", string(model.ShortText), "short_text, multiple_choice or dropdown")
		c.Flags().BoolVar(&questionRequired, "required", false, "an answer is required")
		c.Flags().StringSliceVar(&questionOptions, "option", nil, "choice option (repeatable)")
	}

	formCmd.AddCommand(
		formListCmd,
		formCreateCmd,
		formShowCmd,
		formAddQuestionCmd,
		formUpdateQuestionCmd,
		formRemoveQuestionCmd,
		formMoveQuestionCmd,
		formPublishCmd,
		formUnpublishCmd,
		formDeleteCmd,
	)
}

func runFormList(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	forms, err := repository.New(e.store).Forms(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tUPDATED")
	for _, f := range forms {
		status := "draft"
		if f.Published {
			status = "published"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Title, status, f.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runFormCreate(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	d := draft.New(e.store)
	d.SetDetails(formTitle, formDescription)
	if err := d.Save(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), d.Form.ID)
	return nil
}

func runFormShow(cmd *cobra.Command, args []string) error {
	return editForm(cmd, args[0], func(d *draft.Draft) (bool, error) {
		return false, nil
	})
}

func runFormAddQuestion(cmd *cobra.Command, args []string) error {
	return editForm(cmd, args[0], func(d *draft.Draft) (bool, error) {
		q, err := d.AddQuestion(model.QuestionType(questionType))
		if err != nil {
			return false, err
		}
		_, err = d.UpdateQuestion(q.ID, questionPatch(cmd, true))
		return true, err
	})
}

func runFormUpdateQuestion(cmd *cobra.Command, args []string) error {
	return editForm(cmd, args[0], func(d *draft.Draft) (bool, error) {
		found, err := d.UpdateQuestion(args[1], questionPatch(cmd, false))
		if err == nil && !found {
			err = draft.ErrUnknownQuestion
		}
		return true, err
	})
}

// questionPatch collects the question flags; all when adding, only those set
// on the command line otherwise.
func questionPatch(cmd *cobra.Command, all bool) draft.Patch {
	p := draft.Patch{}
	changed := func(name string) bool {
		return all || cmd.Flags().Changed(name)
	}
	if changed("text") {
		p.Text = &questionText
	}
	if changed("type") {
		kind := model.QuestionType(questionType)
		p.Type = &kind
	}
	if changed("required") {
		p.Required = &questionRequired
	}
	if cmd.Flags().Changed("option") {
		p.Options = questionOptions
	}
	return p
}

func runFormRemoveQuestion(cmd *cobra.Command, args []string) error {
	return editForm(cmd, args[0], func(d *draft.Draft) (bool, error) {
		if !d.RemoveQuestion(args[1]) {
			return false, draft.ErrUnknownQuestion
		}
		return true, d.ReorderQuestions(d.Questions)
	})
}

func runFormMoveQuestion(cmd *cobra.Command, args []string) error {
	to, err := strconv.Atoi(args[2])
	if err != nil {
		return errors.Errorf("invalid position %q", args[2])
	}
	return editForm(cmd, args[0], func(d *draft.Draft) (bool, error) {
		return true, d.MoveQuestion(args[1], to)
	})
}

func runFormPublish(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	d, err := draft.Load(cmd.Context(), e.store, args[0])
	if err != nil {
		return err
	}
	if err := d.Publish(cmd.Context()); err != nil {
		return err
	}
	link, _ := d.ShareURL(e.cfg.BaseURL)
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runFormUnpublish(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	d, err := draft.Load(cmd.Context(), e.store, args[0])
	if err != nil {
		return err
	}
	return d.Unpublish(cmd.Context())
}

func runFormDelete(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	return repository.New(e.store).DeleteForm(cmd.Context(), args[0])
}

// editForm loads a form, applies edit, saves when edit reports a change and
// prints the result.
func editForm(cmd *cobra.Command, id string, edit func(*draft.Draft) (bool, error)) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	d, err := draft.Load(cmd.Context(), e.store, id)
	if err != nil {
		return err
	}
	changed, err := edit(d)
	if err != nil {
		return err
	}
	if changed {
		if err := d.Save(cmd.Context()); err != nil {
			return err
		}
	}
	printForm(cmd.OutOrStdout(), d, e.cfg.BaseURL)
	return nil
}

func printForm(w io.Writer, d *draft.Draft, base string) {
	fmt.Fprintf(w, "%s  %s\n", d.Form.ID, d.Form.Title)
	if d.Form.Description != "" {
		fmt.Fprintln(w, d.Form.Description)
	}
	if link, ok := d.ShareURL(base); ok {
		fmt.Fprintf(w, "published at %s\n", link)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTYPE\tREQUIRED\tTEXT\tOPTIONS")
	for _, q := range d.Questions {
		required := ""
		if q.Required {
			required = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			q.OrderNumber, q.ID, q.Type, required, q.Text, strings.Join(q.Options, " | "))
	}
	tw.Flush()
}
