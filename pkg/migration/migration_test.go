package migration_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatmatch/backend/pkg/migration"
)

func TestNewRunnerDefaultLogger(t *testing.T) {
	r := migration.NewRunner(&migration.Config{
		MigrationsPath: "migrations",
		DatabaseURL:    "postgres://invalid",
	})
	require.NotNil(t, r)
}

func TestRunnerMethodsInvalidConfig(t *testing.T) {
	r := migration.NewRunner(&migration.Config{
		MigrationsPath: "migrations",
		DatabaseURL:    "bad://url",
		Logger:         slog.Default(),
	})

	assert.Error(t, r.Up())
	assert.Error(t, r.Down())
	assert.Error(t, r.Force(1))
	_, _, err := r.Version()
	assert.Error(t, err)
}
