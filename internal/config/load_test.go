package config_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jkroepke/pam-auth-github/internal/config"
	"github.com/jkroepke/pam-auth-github/internal/config/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	conf, err := config.New([]string{"pam-auth-github",
		"--oauth2.client.id=Iv1.deadbeef",
		"--github.organization=acme",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "console", conf.Log.Format)
	assert.Equal(t, slog.LevelInfo, conf.Log.Level)
	assert.Equal(t, 30*time.Second, conf.HTTP.Timeout)
	assert.Equal(t, []string{"read:org"}, conf.OAuth2.Scopes)
	assert.Equal(t, "https://api.github.com", conf.GitHub.APIURL.String())
	assert.Empty(t, conf.GitHub.Teams)
	assert.True(t, conf.Auth.MatchUsername)
	assert.Equal(t, types.ProvisionModeNone, conf.Provision.Mode)
	assert.Equal(t, "/home", conf.Provision.HomeDir)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	fileConf := map[string]any{
		"log": map[string]any{
			"format": "json",
			"level":  "debug",
		},
		"oauth2": map[string]any{
			"client": map[string]any{"id": "Iv1.deadbeef"},
		},
		"github": map[string]any{
			"organization": "acme",
			"teams":        []string{"ops", "sre"},
		},
		"provision": map[string]any{
			"mode":        "sudoer",
			"import-keys": true,
		},
	}

	body, err := yaml.Marshal(fileConf)
	require.NoError(t, err)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, body, 0o600))

	conf, err := config.New([]string{"pam-auth-github", "--config", configFile}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "json", conf.Log.Format)
	assert.Equal(t, slog.LevelDebug, conf.Log.Level)
	assert.Equal(t, []string{"ops", "sre"}, conf.GitHub.Teams)
	assert.Equal(t, types.ProvisionModeSudoer, conf.Provision.Mode)
	assert.True(t, conf.Provision.ImportKeys)
}

func TestLoadPrecedence(t *testing.T) {
	fileConf := map[string]any{
		"oauth2": map[string]any{
			"client": map[string]any{"id": "from-file"},
		},
		"github": map[string]any{
			"organization": "from-file",
		},
	}

	body, err := yaml.Marshal(fileConf)
	require.NoError(t, err)

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, body, 0o600))

	t.Setenv("CONFIG_GITHUB_ORGANIZATION", "from-env")

	conf, err := config.New([]string{"pam-auth-github",
		"--config", configFile,
		"--oauth2.client.id=from-flag",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", conf.OAuth2.Client.ID)
	assert.Equal(t, "from-env", conf.GitHub.Organization)
}

func TestLoadEnvSlices(t *testing.T) {
	t.Setenv("CONFIG_GITHUB_TEAMS", "ops,sre")
	t.Setenv("CONFIG_AUTH_MATCH__USERNAME", "false")

	conf, err := config.New([]string{"pam-auth-github",
		"--oauth2.client.id=Iv1.deadbeef",
		"--github.organization=acme",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{"ops", "sre"}, conf.GitHub.Teams)
	assert.False(t, conf.Auth.MatchUsername)
}

func TestLoadVersionFlag(t *testing.T) {
	t.Parallel()

	_, err := config.New([]string{"pam-auth-github", "--version"}, io.Discard)
	require.ErrorIs(t, err, config.ErrVersion)
}
