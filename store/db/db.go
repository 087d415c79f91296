package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/akasha/internal/profile"
	"github.com/hrygo/akasha/store"
	"github.com/hrygo/akasha/store/db/postgres"
	"github.com/hrygo/akasha/store/db/sqlite"
)

// NewDBDriver creates new db driver based on profile.
//
// SQLite is the default for local archives; PostgreSQL (with pgvector) is
// supported for installations that outgrow a single local file.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.Errorf("unknown db driver %q: only 'sqlite' and 'postgres' are supported", profile.Driver)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
