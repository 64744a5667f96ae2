// Package export turns a form's loaded questions and responses into a table,
// per-question summaries and CSV. Nothing here touches storage.
package export

import (
	"encoding/csv"
	"io"
	"regexp"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/respond"
)

const (
	// Placeholder fills the cell of a question left unanswered.
	Placeholder = "-"
	DateHeader  = "Submission Date"

	CSVDateFormat     = "2006-01-02 15:04:05"
	DisplayDateFormat = "Jan 2, 2006 3:04 PM"
)

type Table struct {
	Header    []string
	Questions []model.Question
	Rows      []Row
}

type Row struct {
	ResponseID  string
	SubmittedAt time.Time
	Cells       []string
}

// Tabulate lays responses out one per row, newest first, with one column per
// question in form order. Answers to questions no longer in the form are left
// out.
func Tabulate(questions []model.Question, responses []model.Response) Table {
	qs := append([]model.Question(nil), questions...)
	sort.SliceStable(qs, func(i, j int) bool {
		return qs[i].OrderNumber < qs[j].OrderNumber
	})
	rs := append([]model.Response(nil), responses...)
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})

	t := Table{
		Header:    make([]string, 0, len(qs)+1),
		Questions: qs,
		Rows:      make([]Row, 0, len(rs)),
	}
	t.Header = append(t.Header, DateHeader)
	for _, q := range qs {
		t.Header = append(t.Header, q.Text)
	}
	for _, r := range rs {
		row := Row{
			ResponseID:  r.ID,
			SubmittedAt: r.CreatedAt,
			Cells:       make([]string, len(qs)),
		}
		for i, q := range qs {
			if respond.IsAnswered(q, r.Data) {
				row.Cells[i] = r.Data[q.ID]
			} else {
				row.Cells[i] = Placeholder
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Records flattens the table, header first, formatting dates with layout in UTC.
func (t Table) Records(layout string) [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	for _, row := range t.Rows {
		rec := make([]string, 0, len(row.Cells)+1)
		rec = append(rec, row.SubmittedAt.UTC().Format(layout))
		rec = append(rec, row.Cells...)
		records = append(records, rec)
	}
	return records
}

// WriteCSV writes the table as RFC 4180 CSV, quoting fields that hold commas,
// quotes or line breaks.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records(CSVDateFormat)); err != nil {
		return errors.Wrap(err, "export.csv")
	}
	return nil
}

var reSpace = regexp.MustCompile(`\s+`)

// Filename names the CSV download after the form title.
func Filename(title string) string {
	return reSpace.ReplaceAllString(title, "_") + "_responses.csv"
}
