package routes

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/dto"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/respond"
)

func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		s, err := respond.Open(r.Context(), app.Store, token)
		if err != nil {
			httpx.LogError(w, r, "get_public_form", err)
			return
		}

		form, err := dto.NewPublicForm(s.Form, s.Questions)
		if err != nil {
			httpx.LogInternalError(w, "render_public_form", err)
			return
		}
		render.JSON(w, r, form)
	}
}

// PublicSubmitResponse replays the posted answers through a respondent
// session, so the same required and option checks apply as in the step flow.
func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.SubmitRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		token := chi.URLParam(r, "token")
		s, err := respond.Open(r.Context(), app.Store, token)
		if err != nil {
			httpx.LogError(w, r, "get_public_form", err)
			return
		}

		ids := make([]string, 0, len(req.Answers))
		for id := range req.Answers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if err := s.SetAnswer(id, req.Answers[id]); err != nil {
				httpx.LogError(w, r, "submit_response.answer", err)
				return
			}
		}

		if err := s.Submit(r.Context()); err != nil {
			httpx.LogError(w, r, "submit_response", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, dto.Created{ID: s.Response().ID})
	}
}
