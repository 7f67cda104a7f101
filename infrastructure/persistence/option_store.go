package persistence

import (
	"fmt"
	"io"

	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/configuration"
	"alfreds-toolbox/infrastructure/logger"
)

// OpenOptionStore opens the option store selected by database.driver.
// The returned closer releases the underlying database.
func OpenOptionStore(cfg configuration.Database) (repository.IOptionStore, io.Closer, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := NewPostgreSQLDB(cfg.Psql)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting postgres: %w", err)
		}
		if err := EnsureOptionSchema(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return NewOptionRepository(db), db, nil
	case "mssql":
		db, err := NewMSSQLDB(cfg.Mssql)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting mssql: %w", err)
		}
		if err := EnsureOptionSchemaMSSQL(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return NewOptionRepositoryMSSQL(db), db, nil
	case "", "bolt":
		store, err := NewBoltOptionStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		logger.GetLogger().WithField("driver", cfg.Driver).Error("Unknown database driver")
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
