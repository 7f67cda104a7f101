package persistence

import (
	"context"
	"database/sql"
	"errors"

	"alfreds-toolbox/domain/repository"
)

// OptionRepositoryMSSQL is the SQL Server flavour of OptionRepository (@pN placeholders, MERGE upsert).
type OptionRepositoryMSSQL struct{ db *sql.DB }

func NewOptionRepositoryMSSQL(db *sql.DB) repository.IOptionStore {
	return &OptionRepositoryMSSQL{db: db}
}

func (r *OptionRepositoryMSSQL) GetOption(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT option_value FROM dbo.toolbox_options WHERE option_name=@p1`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *OptionRepositoryMSSQL) UpdateOption(ctx context.Context, name, value string) error {
	q := `MERGE dbo.toolbox_options AS target
		USING (SELECT @p1 AS option_name, @p2 AS option_value) AS src
		ON target.option_name = src.option_name
		WHEN MATCHED THEN UPDATE SET option_value = src.option_value, updated_at = SYSUTCDATETIME()
		WHEN NOT MATCHED THEN INSERT (option_name, option_value, updated_at) VALUES (src.option_name, src.option_value, SYSUTCDATETIME());`
	_, err := r.db.ExecContext(ctx, q, name, value)
	return err
}

func (r *OptionRepositoryMSSQL) DeleteOption(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dbo.toolbox_options WHERE option_name=@p1`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
