package export

import (
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/respond"
)

type Tally struct {
	Option string `json:"option"`
	Count  int    `json:"count"`
}

type Summary struct {
	QuestionID string             `json:"question_id"`
	Text       string             `json:"question_text"`
	Type       model.QuestionType `json:"question_type"`
	Answered   int                `json:"answered"`
	Skipped    int                `json:"skipped"`
	// Tallies counts each option of a choice question, in option order.
	Tallies []Tally `json:"tallies,omitempty"`
}

// Summarize counts answers per question over all responses.
func Summarize(questions []model.Question, responses []model.Response) []Summary {
	t := Tabulate(questions, nil)
	out := make([]Summary, 0, len(t.Questions))
	for _, q := range t.Questions {
		s := Summary{QuestionID: q.ID, Text: q.Text, Type: q.Type}
		index := map[string]int{}
		if q.Type.HasOptions() {
			s.Tallies = make([]Tally, len(q.Options))
			for i, o := range q.Options {
				s.Tallies[i].Option = o
				if _, dup := index[o]; !dup {
					index[o] = i
				}
			}
		}
		for _, r := range responses {
			if !respond.IsAnswered(q, r.Data) {
				s.Skipped++
				continue
			}
			s.Answered++
			if i, ok := index[r.Data[q.ID]]; ok {
				s.Tallies[i].Count++
			}
		}
		out = append(out, s)
	}
	return out
}
