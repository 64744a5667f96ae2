package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/dto"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
)

// loadDraft opens the form named in the URL, writing the error response on failure.
func loadDraft(app app.App, w http.ResponseWriter, r *http.Request) (*draft.Draft, bool) {
	id := chi.URLParam(r, "id")
	d, err := draft.Load(r.Context(), app.Store, id)
	if err != nil {
		httpx.LogError(w, r, "get_form", err)
		return nil, false
	}
	return d, true
}

func renderForm(app app.App, w http.ResponseWriter, r *http.Request, d *draft.Draft) {
	form, err := dto.NewForm(d.Form, d.Questions, app.BaseURL)
	if err != nil {
		httpx.LogInternalError(w, "render_form", err)
		return
	}
	render.JSON(w, r, form)
}

// saveAndRender persists an edited draft and answers with its new state.
func saveAndRender(app app.App, w http.ResponseWriter, r *http.Request, d *draft.Draft, code string) {
	if err := d.Save(r.Context()); err != nil {
		httpx.LogError(w, r, code, err)
		return
	}
	renderForm(app, w, r, d)
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Repository().Forms(r.Context())
		if err != nil {
			httpx.LogError(w, r, "list_forms", err)
			return
		}

		list, err := dto.NewFormList(forms, app.BaseURL)
		if err != nil {
			httpx.LogInternalError(w, "render_forms", err)
			return
		}
		render.JSON(w, r, list)
	}
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.FormRequest{}
		if r.ContentLength != 0 {
			if err := render.DecodeJSON(r.Body, &req); err != nil {
				httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
				return
			}
		}

		d := draft.New(app.Store)
		applyDetails(d, req)
		if err := d.Save(r.Context()); err != nil {
			httpx.LogError(w, r, "create_form", err)
			return
		}

		form, err := dto.NewForm(d.Form, d.Questions, app.BaseURL)
		if err != nil {
			httpx.LogInternalError(w, "render_form", err)
			return
		}
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		renderForm(app, w, r, d)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.FormRequest{}
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		applyDetails(d, req)
		saveAndRender(app, w, r, d, "update_form")
	}
}

func applyDetails(d *draft.Draft, req dto.FormRequest) {
	title, description := d.Form.Title, d.Form.Description
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		description = *req.Description
	}
	d.SetDetails(title, description)
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := app.Repository().DeleteForm(r.Context(), id); err != nil {
			httpx.LogError(w, r, "delete_form", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func PublishForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		if err := d.Publish(r.Context()); err != nil {
			httpx.LogError(w, r, "publish_form", err)
			return
		}
		renderForm(app, w, r, d)
	}
}

func UnpublishForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, ok := loadDraft(app, w, r)
		if !ok {
			return
		}
		if err := d.Unpublish(r.Context()); err != nil {
			httpx.LogError(w, r, "unpublish_form", err)
			return
		}
		renderForm(app, w, r, d)
	}
}
