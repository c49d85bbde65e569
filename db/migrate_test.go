package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	raw, err := fs.ReadFile(migrations, "migrations/00001_create_users.sql")
	require.NoError(t, err)

	sql := string(raw)
	assert.True(t, strings.HasPrefix(sql, "-- +goose Up"))
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "email           TEXT        NOT NULL UNIQUE")
}

func TestNewPostgresPool_InvalidURL(t *testing.T) {
	_, err := NewPostgresPool(t.Context(), "://not a url")
	assert.ErrorContains(t, err, "invalid DB URL")
}
