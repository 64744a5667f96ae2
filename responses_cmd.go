package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mbolis/quick-forms/export"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/repository"
)

var exportOutput string

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Review collected responses",
}

var responsesListCmd = &cobra.Command{
	Use:   "list <form-id>",
	Short: "Print responses as a table, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runResponsesList,
}

var responsesExportCmd = &cobra.Command{
	Use:   "export <form-id>",
	Short: "Write responses as CSV",
	Long:  "Write responses as CSV. The file is named after the form title unless --output is given; use --output - for stdout.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResponsesExport,
}

func init() {
	responsesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
	responsesCmd.AddCommand(responsesListCmd, responsesExportCmd)
}

func loadTable(cmd *cobra.Command, id string) (string, export.Table, error) {
	e, err := openEnv(cmd)
	if err != nil {
		return "", export.Table{}, err
	}
	defer e.Close()

	repo := repository.New(e.store)
	form, err := repo.Form(cmd.Context(), id)
	if err != nil {
		return "", export.Table{}, err
	}
	questions, err := repo.Questions(cmd.Context(), id)
	if err != nil {
		return "", export.Table{}, err
	}
	responses, err := repo.Responses(cmd.Context(), id)
	if err != nil {
		return "", export.Table{}, err
	}
	return form.Title, export.Tabulate(questions, responses), nil
}

func runResponsesList(cmd *cobra.Command, args []string) error {
	title, table, err := loadTable(cmd, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d responses\n\n", title, len(table.Rows))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, rec := range table.Records(export.DisplayDateFormat) {
		for i := range rec {
			rec[i] = strings.ReplaceAll(rec[i], "\n", " ")
		}
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	return tw.Flush()
}

func runResponsesExport(cmd *cobra.Command, args []string) error {
	title, table, err := loadTable(cmd, args[0])
	if err != nil {
		return err
	}

	if exportOutput == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), table)
	}
	path := exportOutput
	if path == "" {
		path = export.Filename(title)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, table); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("%d responses written to %s", len(table.Rows), path)
	return nil
}
