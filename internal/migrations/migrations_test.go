package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(embedMigrations, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		content, err := fs.ReadFile(embedMigrations, entry.Name())
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- +goose Up", entry.Name())
		assert.Contains(t, string(content), "-- +goose Down", entry.Name())
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"))
	}
}
