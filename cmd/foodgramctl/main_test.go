package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "foodgram.sqlite"))
	t.Setenv("APP_ENV", "test")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	err := newApp(&out).Run(context.Background(), append([]string{name}, args...))
	return out.String(), err
}

func TestIngredientsCommand(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "ingredients.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "flour", "measurement_unit": "g"},
		{"name": "sugar", "measurement_unit": "g"}
	]`), 0o600))

	out, err := run(t, "ingredients", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "inserted: 2, skipped: 0\n", out)

	out, err = run(t, "ingredients", "-f", path, "--batch-size", "1")
	require.NoError(t, err)
	assert.Equal(t, "inserted: 0, skipped: 2\n", out)
}

func TestTagsCommand(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "tags.yml")
	require.NoError(t, os.WriteFile(path, []byte("- name: Lunch\n  color: '#49B64E'\n  slug: lunch\n"), 0o600))

	out, err := run(t, "tags", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "inserted: 1, skipped: 0\n", out)

	_, err = run(t, "tags", "--file", filepath.Join(dir, "tags.csv"))
	assert.Error(t, err)
}

func TestClientCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "client", "--role", "user")
	require.NoError(t, err)
	assert.Contains(t, out, "User: user@foodgram.local")
	assert.Contains(t, out, "Client Secret: ")

	// a second client reuses the user
	out, err = run(t, "client", "--role", "user")
	require.NoError(t, err)
	assert.Contains(t, out, "User: user@foodgram.local")

	_, err = run(t, "client", "--role", "root")
	assert.Error(t, err)
}

func TestTokensPurgeCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "tokens", "purge")
	require.NoError(t, err)
	assert.Equal(t, "purged: 0\n", out)
}
