package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func emptyConfigDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func TestDateToDisplay(t *testing.T) {
	out, err := run(t, "--config", emptyConfigDir(t), "date", "to-display", "2024-03-15 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "15.03.2024 10:20:30\n", out)
}

func TestDateToSave(t *testing.T) {
	out, err := run(t, "--config", emptyConfigDir(t), "date", "to-save", "15.03.2024 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15 10:20:30\n", out)
}

func TestDateTimestampRoundTrip(t *testing.T) {
	dir := emptyConfigDir(t)

	out, err := run(t, "--config", dir, "date", "to-timestamp", "02.01.1970 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, "86400\n", out)

	out, err = run(t, "--config", dir, "date", "from-timestamp", "86400")
	require.NoError(t, err)
	assert.Equal(t, "02.01.1970 00:00:00\n", out)
}

func TestDateUsesConfiguredFormat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"),
		[]byte("record:\n  date_format_display: \"MM/dd/yyyy\"\n"), 0o644))

	out, err := run(t, "--config", dir, "date", "to-display", "2024-03-15 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, "03/15/2024\n", out)
}

func TestDateRejectsBadInput(t *testing.T) {
	_, err := run(t, "--config", emptyConfigDir(t), "date", "to-display", "not a date")
	assert.Error(t, err)

	_, err = run(t, "--config", emptyConfigDir(t), "date", "from-timestamp", "soon")
	assert.ErrorContains(t, err, "invalid timestamp")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "recordkit v"+version+"\n", out)
}
