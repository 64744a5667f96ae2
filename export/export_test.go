package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/mbolis/quick-forms/export"
	"github.com/mbolis/quick-forms/model"
)

var (
	t0 = time.Date(2024, 2, 3, 14, 5, 6, 0, time.UTC)

	questions = []model.Question{
		{ID: "q2", Text: "Color", Type: model.Dropdown, OrderNumber: 1, Options: []string{"red", "blue"}},
		{ID: "q1", Text: "Name", Type: model.ShortText, OrderNumber: 0},
	}
	responses = []model.Response{
		{ID: "r1", Data: map[string]string{"q1": "Ada", "q2": "red"}, CreatedAt: t0},
		{ID: "r2", Data: map[string]string{"q2": "blue", "gone": "kept"}, CreatedAt: t0.Add(time.Hour)},
		{ID: "r3", Data: map[string]string{"q1": "Lovelace, \"Countess\"\nof Lovelace", "q2": "red"}, CreatedAt: t0.Add(-time.Hour)},
	}
)

func TestTabulate(t *testing.T) {
	table := export.Tabulate(questions, responses)

	if diff := cmp.Diff([]string{"Submission Date", "Name", "Color"}, table.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	want := [][]string{
		{"Submission Date", "Name", "Color"},
		{"2024-02-03 15:05:06", "-", "blue"},
		{"2024-02-03 14:05:06", "Ada", "red"},
		{"2024-02-03 13:05:06", "Lovelace, \"Countess\"\nof Lovelace", "red"},
	}
	if diff := cmp.Diff(want, table.Records(export.CSVDateFormat)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, export.Tabulate(questions, responses)); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	want := "Submission Date,Name,Color\n" +
		"2024-02-03 15:05:06,-,blue\n" +
		"2024-02-03 14:05:06,Ada,red\n" +
		"2024-02-03 13:05:06,\"Lovelace, \"\"Countess\"\"\nof Lovelace\",red\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize(t *testing.T) {
	want := []export.Summary{
		{QuestionID: "q1", Text: "Name", Type: model.ShortText, Answered: 2, Skipped: 1},
		{
			QuestionID: "q2", Text: "Color", Type: model.Dropdown, Answered: 3,
			Tallies: []export.Tally{{Option: "red", Count: 2}, {Option: "blue", Count: 1}},
		},
	}
	if diff := cmp.Diff(want, export.Summarize(questions, responses)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestFilename(t *testing.T) {
	for title, want := range map[string]string{
		"Customer Feedback": "Customer_Feedback_responses.csv",
		"  spaced \t out  ": "_spaced_out__responses.csv",
		"Untitled Form":     "Untitled_Form_responses.csv",
	} {
		if got := export.Filename(title); got != want {
			t.Errorf("Filename(%q) = %q, want %q", title, got, want)
		}
	}
}
