package adapter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  url: http://music.local:4533
  username: alice
  password: sesame
  legacy_auth: true
client:
  timeout: 10
logging:
  level: DEBUG
ui:
  refresh_interval: 5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfigFrom_File(t *testing.T) {
	cfg, err := LoadConfigFrom(viper.New(), writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ServerConfig{URL: "http://music.local:4533", Username: "alice", Password: "sesame", LegacyAuth: true}, cfg.Server)
	assert.Equal(t, 10*time.Second, cfg.Client.GetTimeout())
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.UI.GetRefreshInterval())
	assert.True(t, cfg.IsConfigured())

	// Unset keys keep their defaults
	assert.Equal(t, "juke", cfg.Client.ID)
	assert.Equal(t, "1.16.1", cfg.Client.APIVersion)
	assert.Equal(t, 0.05, cfg.UI.VolumeStep)
	assert.Equal(t, DefaultConfig().Store.Path, cfg.Store.Path)
}

func TestLoadConfigFrom_MissingFile(t *testing.T) {
	cfg, err := LoadConfigFrom(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.IsConfigured())
	assert.Equal(t, 30*time.Second, cfg.Client.GetTimeout())
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	t.Setenv("JUKE_SERVER_PASSWORD", "from-env")
	t.Setenv("JUKE_CLIENT_ID", "ci")
	t.Setenv("JUKE_STORE_PATH", "/tmp/juke-test/queues.db")

	cfg, err := LoadConfigFrom(viper.New(), writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.Password)
	assert.Equal(t, "alice", cfg.Server.Username)
	assert.Equal(t, "ci", cfg.Client.ID)
	assert.Equal(t, "/tmp/juke-test/queues.db", cfg.Store.Path)
}

func TestLoadConfigFrom_Malformed(t *testing.T) {
	_, err := LoadConfigFrom(viper.New(), writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestSaveConfigTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server = ServerConfig{URL: "https://demo.example", Username: "bob", Password: "pw"}
	cfg.UI.VolumeStep = 0.1
	require.NoError(t, SaveConfigTo(viper.New(), path, cfg))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadConfigFrom(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestStoreConfig_GetPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := StoreConfig{Path: "~/juke/queues.db"}.GetPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "juke", "queues.db"), p)

	p, err = StoreConfig{Path: "/var/lib/juke.db"}.GetPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/juke.db", p)
}
