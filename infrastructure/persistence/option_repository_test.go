package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"alfreds-toolbox/infrastructure/configuration"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionRepository_GetOption(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOptionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT option_value FROM toolbox_options WHERE option_name=$1`)).
		WithArgs("alfreds_toolbox_license_key").
		WillReturnRows(sqlmock.NewRows([]string{"option_value"}).AddRow("LIC-123"))

	value, found, err := repo.GetOption(context.Background(), "alfreds_toolbox_license_key")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "LIC-123", value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionRepository_GetOption_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOptionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT option_value FROM toolbox_options WHERE option_name=$1`)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"option_value"}))

	value, found, err := repo.GetOption(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionRepository_GetOption_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOptionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT option_value FROM toolbox_options WHERE option_name=$1`)).
		WithArgs("broken").
		WillReturnError(errors.New("connection reset"))

	_, found, err := repo.GetOption(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestOptionRepository_UpdateOption(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOptionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO toolbox_options (option_name, option_value, updated_at)`)).
		WithArgs("alfreds_toolbox_spotify_cache_duration", "7200").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpdateOption(context.Background(), "alfreds_toolbox_spotify_cache_duration", "7200"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionRepository_DeleteOption(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOptionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM toolbox_options WHERE option_name=$1`)).
		WithArgs("vierless_encrypted_credentials_spotify").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM toolbox_options WHERE option_name=$1`)).
		WithArgs("vierless_encrypted_credentials_spotify").
		WillReturnResult(sqlmock.NewResult(0, 0))

	existed, err := repo.DeleteOption(context.Background(), "vierless_encrypted_credentials_spotify")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.DeleteOption(context.Background(), "vierless_encrypted_credentials_spotify")
	require.NoError(t, err)
	assert.False(t, existed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionRepositoryMSSQL_RoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOptionRepositoryMSSQL(db)

	mock.ExpectExec(regexp.QuoteMeta(`MERGE dbo.toolbox_options AS target`)).
		WithArgs("alfreds_toolbox_ga_property_id", "123456").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT option_value FROM dbo.toolbox_options WHERE option_name=@p1`)).
		WithArgs("alfreds_toolbox_ga_property_id").
		WillReturnRows(sqlmock.NewRows([]string{"option_value"}).AddRow("123456"))

	require.NoError(t, repo.UpdateOption(context.Background(), "alfreds_toolbox_ga_property_id", "123456"))
	value, found, err := repo.GetOption(context.Background(), "alfreds_toolbox_ga_property_id")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "123456", value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureOptionSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS toolbox_options`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureOptionSchema(db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureOptionSchema_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`IF OBJECT_ID(N'dbo.toolbox_options', N'U') IS NULL`)).
		WillReturnError(errors.New("permission denied"))

	err = EnsureOptionSchemaMSSQL(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toolbox_options")
}

func TestBoltOptionStore(t *testing.T) {
	store, err := NewBoltOptionStore(filepath.Join(t.TempDir(), "options.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, found, err := store.GetOption(ctx, "alfreds_toolbox_active_widgets")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.UpdateOption(ctx, "alfreds_toolbox_active_widgets", `["spotify_podcast"]`))
	require.NoError(t, store.UpdateOption(ctx, "alfreds_toolbox_active_widgets", `[]`))

	value, found, err := store.GetOption(ctx, "alfreds_toolbox_active_widgets")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, value)

	existed, err := store.DeleteOption(ctx, "alfreds_toolbox_active_widgets")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = store.DeleteOption(ctx, "alfreds_toolbox_active_widgets")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestOpenOptionStore_Bolt(t *testing.T) {
	store, closer, err := OpenOptionStore(configuration.Database{Driver: "bolt", BoltPath: filepath.Join(t.TempDir(), "toolbox.db")})
	require.NoError(t, err)
	defer closer.Close()

	require.NoError(t, store.UpdateOption(context.Background(), "k", "v"))
	value, found, err := store.GetOption(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
}
