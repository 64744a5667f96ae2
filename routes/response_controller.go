package routes

import (
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/dto"
	"github.com/mbolis/quick-forms/export"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
)

type formResponses struct {
	form      model.Form
	questions []model.Question
	responses []model.Response
}

func loadResponses(app app.App, w http.ResponseWriter, r *http.Request, code string) (formResponses, bool) {
	repo := app.Repository()
	id := chi.URLParam(r, "id")

	form, err := repo.Form(r.Context(), id)
	if err != nil {
		httpx.LogError(w, r, code, err)
		return formResponses{}, false
	}
	questions, err := repo.Questions(r.Context(), id)
	if err != nil {
		httpx.LogError(w, r, code+".questions", err)
		return formResponses{}, false
	}
	responses, err := repo.Responses(r.Context(), id)
	if err != nil {
		httpx.LogError(w, r, code+".responses", err)
		return formResponses{}, false
	}
	return formResponses{form, questions, responses}, true
}

func GetResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fr, ok := loadResponses(app, w, r, "get_responses")
		if !ok {
			return
		}
		render.JSON(w, r, dto.NewResponseTable(export.Tabulate(fr.questions, fr.responses)))
	}
}

func GetResponseSummary(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fr, ok := loadResponses(app, w, r, "get_response_summary")
		if !ok {
			return
		}
		render.JSON(w, r, dto.ResponseSummary{
			Count:     len(fr.responses),
			Questions: export.Summarize(fr.questions, fr.responses),
		})
	}
}

func ExportResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fr, ok := loadResponses(app, w, r, "export_responses")
		if !ok {
			return
		}

		disposition := mime.FormatMediaType("attachment", map[string]string{
			"filename": export.Filename(fr.form.Title),
		})
		w.Header().Set("content-type", "text/csv; charset=utf-8")
		w.Header().Set("content-disposition", disposition)
		if err := export.WriteCSV(w, export.Tabulate(fr.questions, fr.responses)); err != nil {
			// headers are gone already
			log.Errorf("export_responses.write: %s", err)
		}
	}
}
