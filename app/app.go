package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/repository"
	"github.com/mbolis/quick-forms/store"
)

// App is what controllers need: the database for accounts, the gateway for
// forms, the token server and the settings.
type App struct {
	*sql.DB
	Store store.Gateway
	*oauth.BearerServer
	config.Config
}

func (app App) Repository() *repository.Repository {
	return repository.New(app.Store)
}
