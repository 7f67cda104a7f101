package persistence

import (
	"context"
	"database/sql"
	"errors"

	"alfreds-toolbox/domain/repository"
)

type OptionRepository struct{ db *sql.DB }

func NewOptionRepository(db *sql.DB) repository.IOptionStore {
	return &OptionRepository{db: db}
}

func (r *OptionRepository) GetOption(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT option_value FROM toolbox_options WHERE option_name=$1`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *OptionRepository) UpdateOption(ctx context.Context, name, value string) error {
	q := `INSERT INTO toolbox_options (option_name, option_value, updated_at)
		  VALUES ($1, $2, NOW())
		  ON CONFLICT (option_name) DO UPDATE SET
			option_value=EXCLUDED.option_value,
			updated_at=EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, q, name, value)
	return err
}

func (r *OptionRepository) DeleteOption(ctx context.Context, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM toolbox_options WHERE option_name=$1`, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
