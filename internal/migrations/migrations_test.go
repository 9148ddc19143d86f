package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFindsSchemaForEachDialect(t *testing.T) {
	for _, d := range []string{MySQL, Postgres} {
		src, err := source(d)
		require.NoError(t, err, d)

		ms, err := src.FindMigrations()
		require.NoError(t, err, d)
		require.NotEmpty(t, ms, d)
		assert.Equal(t, "0001_schema.sql", ms[0].Id)
		assert.NotEmpty(t, ms[0].Up)
		assert.NotEmpty(t, ms[0].Down)
	}
}

func TestSourceRejectsUnknownDialect(t *testing.T) {
	_, err := source("sqlite3")
	assert.Error(t, err)
}
