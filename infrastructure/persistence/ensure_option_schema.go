package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const createOptionsTable = `CREATE TABLE IF NOT EXISTS toolbox_options (
	option_name VARCHAR(191) PRIMARY KEY,
	option_value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createOptionsTableMSSQL = `IF OBJECT_ID(N'dbo.toolbox_options', N'U') IS NULL
CREATE TABLE dbo.toolbox_options (
	option_name NVARCHAR(191) NOT NULL PRIMARY KEY,
	option_value NVARCHAR(MAX) NOT NULL,
	updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()
)`

// EnsureOptionSchema creates the options table if it is missing. Safe to call at startup.
func EnsureOptionSchema(db *sql.DB) error {
	return ensureTable(db, createOptionsTable)
}

func EnsureOptionSchemaMSSQL(db *sql.DB) error {
	return ensureTable(db, createOptionsTableMSSQL)
}

func ensureTable(db *sql.DB, ddl string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating table toolbox_options failed: %w", err)
	}
	return nil
}
