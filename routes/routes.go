package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles(app.PrivateDir, "/admin"))
	root.Mount("/", servePublicFiles(app.PublicDir))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get("/f/{token}", PublicGetForm(app))
	api.Post("/f/{token}/responses", PublicSubmitResponse(app))

	api.With(middlewares.Admin(app.TokenSecret)).Mount("/admin", AdminRouter(app))

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

// AdminRouter serves form management. It does no authentication of its own.
func AdminRouter(app app.App) http.Handler {
	r := chi.NewRouter()

	// CRUD form
	r.Get("/forms", ListForms(app))
	r.Post("/forms", CreateForm(app))
	r.Get("/forms/{id}", GetForm(app))
	r.Put("/forms/{id}", UpdateForm(app))
	r.Delete("/forms/{id}", DeleteForm(app))

	r.Post("/forms/{id}/publish", PublishForm(app))
	r.Post("/forms/{id}/unpublish", UnpublishForm(app))

	r.Post("/forms/{id}/questions", AddQuestion(app))
	r.Put("/forms/{id}/questions/order", ReorderQuestions(app))
	r.Patch("/forms/{id}/questions/{qid}", UpdateQuestion(app))
	r.Delete("/forms/{id}/questions/{qid}", RemoveQuestion(app))
	r.Post("/forms/{id}/questions/{qid}/options", AddOption(app))
	r.Delete("/forms/{id}/questions/{qid}/options/{index}", RemoveOption(app))

	r.Get("/forms/{id}/responses", GetResponses(app))
	r.Get("/forms/{id}/responses/summary", GetResponseSummary(app))
	r.Get("/forms/{id}/responses.csv", ExportResponses(app))

	return r
}

func servePublicFiles(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}

func servePrivateFiles(dir, path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir(dir)))
}
