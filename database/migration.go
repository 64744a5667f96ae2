package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/log"
)

//go:embed migrations/*.sql
var dbMigrations embed.FS

// ErrDirtySchema means a previous migration stopped halfway and needs manual repair.
var ErrDirtySchema = errors.New("schema is dirty")

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "driver")
	}
	return migrate.NewWithInstance("iofs", src, "sqlite3", dst)
}

func migrateDB(db *sql.DB) error {
	migrator, err := newMigrator(db)
	if err != nil {
		return err
	}

	before, dirty, err := version(migrator)
	if err != nil {
		return err
	}
	if dirty {
		return errors.Wrapf(ErrDirtySchema, "version %d", before)
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Debugf("database.migrate: schema up to date at version %d", before)
		return nil
	case err != nil:
		return err
	}

	after, _, err := version(migrator)
	if err != nil {
		return err
	}
	log.Infof("database.migrate: schema migrated from version %d to %d", before, after)
	return nil
}

// SchemaVersion reports the applied migration version, 0 for an empty database.
func SchemaVersion(db *sql.DB) (uint, error) {
	migrator, err := newMigrator(db)
	if err != nil {
		return 0, err
	}
	v, dirty, err := version(migrator)
	if err == nil && dirty {
		err = errors.Wrapf(ErrDirtySchema, "version %d", v)
	}
	return v, err
}

func version(migrator *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
