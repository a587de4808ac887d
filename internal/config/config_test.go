package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},  // case insensitive
		{"trace", false}, // not supported
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	t.Run("empty uses default", func(t *testing.T) {
		got, err := expandPath("", "/default")
		require.NoError(t, err)
		assert.Equal(t, "/default", got)
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		got, err := expandPath("~/stockroom", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "stockroom"), got)
	})

	t.Run("absolute is cleaned", func(t *testing.T) {
		got, err := expandPath("/a/b/../c", "")
		require.NoError(t, err)
		assert.Equal(t, "/a/c", got)
	})
}

func TestExpandAssetPath_DefaultsUnderData(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.expandAssetPath())
	assert.Equal(t, filepath.Join("/some/path", "media"), cfg.Assets.BasePath)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("STOCKROOM_TEST_KEY", "from-env")

	// Flag beats env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "STOCKROOM_TEST_KEY", "default"))
	// Env beats default.
	assert.Equal(t, "from-env", getConfigValue("", "STOCKROOM_TEST_KEY", "default"))
	// Default when nothing else.
	assert.Equal(t, "default", getConfigValue("", "STOCKROOM_TEST_UNSET", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("true", "STOCKROOM_TEST_UNSET", false))
	assert.True(t, getBoolConfigValue("1", "STOCKROOM_TEST_UNSET", false))
	assert.True(t, getBoolConfigValue("YES", "STOCKROOM_TEST_UNSET", false))
	assert.False(t, getBoolConfigValue("no", "STOCKROOM_TEST_UNSET", true))
	assert.True(t, getBoolConfigValue("", "STOCKROOM_TEST_UNSET", true))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nSTOCKROOM_ENVFILE_A=hello\nSTOCKROOM_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Cleanup(func() {
		os.Unsetenv("STOCKROOM_ENVFILE_A")
		os.Unsetenv("STOCKROOM_ENVFILE_B")
	})

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("STOCKROOM_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("STOCKROOM_ENVFILE_B"))
}

func TestLoadEnvFile_EnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("STOCKROOM_ENVFILE_C=file\n"), 0644))

	t.Setenv("STOCKROOM_ENVFILE_C", "env")
	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "env", os.Getenv("STOCKROOM_ENVFILE_C"))
}
