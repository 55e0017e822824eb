package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dj0804/GrievanceInsight/internal/domain"
)

// execute runs the CLI with an empty config file so the test does not pick
// up a config.yml from the working directory.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("service:\n  version: 9.9.9\n"), 0o600))

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "grievance-insight version 9.9.9\n", out)
}

func TestDemoCommand_JSON(t *testing.T) {
	out, err := execute(t, "demo", "--json")
	require.NoError(t, err)

	var d domain.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, 10, d.TotalComplaints)
	assert.Len(t, d.ProcessedComplaints, 10)
}

func TestAnalyzeCommand_Table(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complaints.csv")
	body := "raw_text\nThe mess food is stale\nHostel fan broken, urgent\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Mess")
	assert.Contains(t, out, "Hostel")
}

func TestAnalyzeCommand_PersistWithoutDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "complaints.csv")
	require.NoError(t, os.WriteFile(path, []byte("raw_text\nlibrary is too hot\n"), 0o600))

	_, err := execute(t, "analyze", "--persist", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is not enabled")
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "analyze", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := execute(t, "token")
	require.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	out, err := execute(t, "token", "--subject", "ops")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)
}

func TestMigrateDown_InvalidSteps(t *testing.T) {
	_, err := execute(t, "migrate", "down", "zero")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid step count")
}
