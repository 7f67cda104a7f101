package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationDefaults(t *testing.T) {
	t.Run("service_endpoints_have_defaults", func(t *testing.T) {
		require.NotNil(t, &C)
		assert.NotZero(t, C.App.Port)
		assert.NotEmpty(t, C.License.APIURL)
		assert.NotEmpty(t, C.Spotify.TokenURL)
		assert.NotEmpty(t, C.Analytics.Endpoint)
		assert.NotEmpty(t, C.Database.Driver)
	})
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("TOOLBOX_TEST_VALUE", "")
	assert.Equal(t, "from-config", getConfigValue("from-config", "TOOLBOX_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", getConfigValue("", "TOOLBOX_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", getConfigValue("YOUR_CLIENT_ID", "TOOLBOX_TEST_VALUE", "fallback"))

	t.Setenv("TOOLBOX_TEST_VALUE", "from-env")
	assert.Equal(t, "from-env", getConfigValue("from-config", "TOOLBOX_TEST_VALUE", "fallback"))
}

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := "# comment\n\nexport TOOLBOX_A=\"alpha\"\nTOOLBOX_B='beta'\nbroken line\nTOOLBOX_PRESET=file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TOOLBOX_PRESET", "env")
	os.Unsetenv("TOOLBOX_A")
	os.Unsetenv("TOOLBOX_B")
	t.Cleanup(func() {
		os.Unsetenv("TOOLBOX_A")
		os.Unsetenv("TOOLBOX_B")
	})

	loaded := LoadEnvFromFile(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, 2, loaded)
	assert.Equal(t, "alpha", os.Getenv("TOOLBOX_A"))
	assert.Equal(t, "beta", os.Getenv("TOOLBOX_B"))
	assert.Equal(t, "env", os.Getenv("TOOLBOX_PRESET"))
}

func TestReloadPicksUpEnvironment(t *testing.T) {
	t.Setenv("SPOTIFY_MARKET", "AT")
	t.Setenv("DB_DRIVER", "postgres")
	t.Cleanup(func() {
		os.Unsetenv("SPOTIFY_MARKET")
		os.Unsetenv("DB_DRIVER")
		Reload()
	})

	Reload()

	assert.Equal(t, "AT", C.Spotify.Market)
	assert.Equal(t, "postgres", C.Database.Driver)
}
