package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/dto"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
)

func AddQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.NewQuestionRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		if _, err := d.AddQuestion(req.Type); err != nil {
			httpx.LogError(w, r, "add_question", err)
			return
		}
		if err := d.Save(r.Context()); err != nil {
			httpx.LogError(w, r, "add_question", err)
			return
		}
		render.Status(r, http.StatusCreated)
		renderForm(app, w, r, d)
	}
}

func UpdateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.QuestionPatch{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		qid := chi.URLParam(r, "qid")
		found, err := d.UpdateQuestion(qid, req.Patch())
		if err != nil {
			httpx.LogError(w, r, "update_question", err)
			return
		}
		if !found {
			httpx.LogNotFound(w, "update_question", qid)
			return
		}
		saveAndRender(app, w, r, d, "update_question")
	}
}

// RemoveQuestion drops the question and renumbers the rest.
func RemoveQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		qid := chi.URLParam(r, "qid")
		if !d.RemoveQuestion(qid) {
			httpx.LogNotFound(w, "remove_question", qid)
			return
		}
		if err := d.ReorderQuestions(d.Questions); err != nil {
			httpx.LogError(w, r, "remove_question", err)
			return
		}
		saveAndRender(app, w, r, d, "remove_question")
	}
}

func ReorderQuestions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.ReorderRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		if err := d.ReorderIDs(req.IDs); err != nil {
			httpx.LogError(w, r, "reorder_questions", err)
			return
		}
		saveAndRender(app, w, r, d, "reorder_questions")
	}
}

func AddOption(app app.App) http.HandlerFunc {
	return editOptions(app, "add_option", func(d *draft.Draft, qid string, r *http.Request) error {
		return d.AddOption(qid)
	})
}

func RemoveOption(app app.App) http.HandlerFunc {
	return editOptions(app, "remove_option", func(d *draft.Draft, qid string, r *http.Request) error {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			return draft.ErrOptionIndex
		}
		return d.RemoveOption(qid, index)
	})
}

func editOptions(app app.App, code string, edit func(*draft.Draft, string, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		if err := edit(d, chi.URLParam(r, "qid"), r); err != nil {
			httpx.LogError(w, r, code, err)
			return
		}
		saveAndRender(app, w, r, d, code)
	}
}
