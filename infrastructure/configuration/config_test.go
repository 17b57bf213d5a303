package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"yt-analytics/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func clearYouTubeEnv(t *testing.T) {
	for _, k := range []string{
		"YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "YOUTUBE_REFRESH_TOKEN",
		"YOUTUBE_TOKEN_URL", "OUTPUT_DIR", "SCHEDULE_CRON", "ENV",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	clearYouTubeEnv(t)
	chdir(t, t.TempDir())

	require.NoError(t, LoadConfig("config-does-not-exist"))

	assert.Equal(t, "data", C.Output.Dir)
	assert.Equal(t, 60, C.YouTube.TimeoutSeconds)
	assert.Equal(t, "", C.Schedule.Cron)
	assert.Equal(t, "video_snapshots", C.Archive.Mongo.Collection)
	assert.Empty(t, C.Archive.Drivers)
}

func TestLoadConfig_ReadsJSONAndEnvWins(t *testing.T) {
	clearYouTubeEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	content := `{
  "youtube": {"clientId": "file-client", "clientSecret": "file-secret", "refreshToken": "YOUR_REFRESH_TOKEN", "timeoutSeconds": 15},
  "output": {"dir": "snapshots"},
  "archive": {"drivers": ["postgres", "redis"]}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config-test.json"), []byte(content), 0o644))
	t.Setenv("YOUTUBE_CLIENT_ID", "env-client")
	t.Setenv("YOUTUBE_REFRESH_TOKEN", "env-refresh")

	require.NoError(t, LoadConfig("config-test"))
	yt := GetYouTubeConfig()

	assert.Equal(t, "env-client", yt.ClientID)
	assert.Equal(t, "file-secret", yt.ClientSecret)
	assert.Equal(t, "env-refresh", yt.RefreshToken)
	assert.Equal(t, 15*time.Second, yt.Timeout)
	assert.Equal(t, "https://oauth2.googleapis.com/token", yt.TokenURL)
	assert.Equal(t, "snapshots", C.Output.Dir)
	assert.Equal(t, []string{"postgres", "redis"}, C.Archive.Drivers)
}

func TestYouTubeConfig_Credential(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		cfg := &YouTubeConfig{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh"}
		cred, err := cfg.Credential()
		require.NoError(t, err)
		assert.Equal(t, model.Credential{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh"}, cred)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		cfg := &YouTubeConfig{ClientID: "id", ClientSecret: "secret"}
		_, err := cfg.Credential()
		require.ErrorIs(t, err, model.ErrConfiguration)
		assert.Contains(t, err.Error(), "YOUTUBE_REFRESH_TOKEN")
		assert.NotContains(t, err.Error(), "YOUTUBE_CLIENT_ID")
	})

	t.Run("client only for authorize helper", func(t *testing.T) {
		cfg := &YouTubeConfig{ClientID: "id"}
		err := cfg.ValidateClient()
		require.ErrorIs(t, err, model.ErrConfiguration)
		assert.Contains(t, err.Error(), "YOUTUBE_CLIENT_SECRET")
		assert.NotContains(t, err.Error(), "YOUTUBE_REFRESH_TOKEN")
	})
}

func TestLoadEnvFromFile_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("YT_TEST_A=from-file\nYT_TEST_B=\"quoted\"\n# comment\n"), 0o644))
	t.Setenv("YT_TEST_A", "from-env")
	os.Unsetenv("YT_TEST_B")
	t.Cleanup(func() { os.Unsetenv("YT_TEST_B") })

	LoadEnvFromFile(filepath.Join(dir, "missing.env"), path)

	assert.Equal(t, "from-env", os.Getenv("YT_TEST_A"))
	assert.Equal(t, "quoted", os.Getenv("YT_TEST_B"))
}
