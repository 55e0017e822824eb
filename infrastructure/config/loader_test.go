package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/infrastructure/config"
)

type testConfig struct {
	Name    string        `env:"TEST_CFG_NAME"    yaml:"name"`
	Port    int           `env:"TEST_CFG_PORT"    yaml:"port"`
	Timeout time.Duration `env:"TEST_CFG_TIMEOUT" yaml:"timeout"`
	Nested  struct {
		Enabled bool     `env:"TEST_CFG_ENABLED" yaml:"enabled"`
		Tags    []string `env:"TEST_CFG_TAGS"    yaml:"tags"`
	} `yaml:"nested"`
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := writeFile(t, "name: svc\nport: 9000\ntimeout: 3s\nnested:\n  enabled: true\n")

	cfg, err := config.Load[testConfig](path, false)
	require.NoError(t, err)

	assert.Equal(t, "svc", cfg.Name)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.True(t, cfg.Nested.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load[testConfig](filepath.Join(t.TempDir(), "absent.yml"), false)
	require.Error(t, err)

	cfg, err := config.Load[testConfig](filepath.Join(t.TempDir(), "absent.yml"), true)
	require.NoError(t, err)
	assert.Empty(t, cfg.Name)
}

func TestLoadWithDefaults_EnvWins(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "7000")
	t.Setenv("TEST_CFG_TIMEOUT", "250ms")
	t.Setenv("TEST_CFG_TAGS", "a, b")
	path := writeFile(t, "port: 9000\n")

	cfg, err := config.LoadWithDefaults[testConfig](path, func(c *testConfig) {
		if c.Name == "" {
			c.Name = "default"
		}
		c.Port = 1
	})
	require.NoError(t, err)

	assert.Equal(t, "default", cfg.Name)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"a", "b"}, cfg.Nested.Tags)
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/app.yml")
	assert.Equal(t, "/etc/app.yml", config.GetConfigPath("config.yml"))
}

func TestValidators(t *testing.T) {
	t.Parallel()

	var vErr *config.ValidationError
	require.True(t, errors.As(config.ValidatePort("service.port", 0), &vErr))
	assert.Equal(t, "service.port", vErr.Field)
	assert.NoError(t, config.ValidatePort("service.port", 8080))

	assert.NoError(t, config.ValidateOneOf("strategy", "fallback", "external", "fallback"))
	assert.Error(t, config.ValidateOneOf("strategy", "magic", "external", "fallback"))
	assert.Error(t, config.ValidateRequired("name", "  "))
}
