package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runrate/internal/backend"
)

func TestImportSource(t *testing.T) {
	got, err := importSource("csv")
	require.NoError(t, err)
	assert.Equal(t, backend.CSVBackend, got)

	got, err = importSource("sheets")
	require.NoError(t, err)
	assert.Equal(t, backend.SheetsBackend, got)

	for _, from := range []string{"sqlite", "memory", ""} {
		_, err := importSource(from)
		assert.Error(t, err, "from=%q", from)
	}
}
