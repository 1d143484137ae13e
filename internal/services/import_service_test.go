package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runrate/internal/core"
	"runrate/internal/source"
	"runrate/internal/source/memory"
)

type recordingPublisher struct {
	keys []string
	rows []int
	err  error
}

func (p *recordingPublisher) PublishReload(_ context.Context, key string, rows int) error {
	p.keys = append(p.keys, key)
	p.rows = append(p.rows, rows)
	return p.err
}

func TestImportReplacesAndPublishes(t *testing.T) {
	from := memory.New(
		mustContract(t, "Acme", core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 31), 1200, 12),
		mustContract(t, "Globex", core.NewDate(2025, 2, 1), core.NewDate(2025, 7, 31), 600, 6),
	)
	to := memory.New()
	pub := &recordingPublisher{}

	n, err := NewImportService(from, to, pub).Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, _ := to.ReadContracts(context.Background())
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"memory"}, pub.keys)
	assert.Equal(t, []int{2}, pub.rows)
}

func TestImportReadFailureKeepsSnapshot(t *testing.T) {
	existing := mustContract(t, "Acme", core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 31), 1200, 12)
	to := memory.New(existing)
	pub := &recordingPublisher{}
	from := &stubReader{key: "crm_data.csv", err: source.ErrNotFound}

	_, err := NewImportService(from, to, pub).Import(context.Background())
	require.ErrorIs(t, err, source.ErrNotFound)

	got, _ := to.ReadContracts(context.Background())
	assert.Len(t, got, 1)
	assert.Empty(t, pub.keys, "nothing is announced when the import fails")
}

func TestImportPublishFailureIsNotFatal(t *testing.T) {
	from := memory.New(mustContract(t, "Acme", core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 31), 1200, 12))
	pub := &recordingPublisher{err: errors.New("broker down")}

	n, err := NewImportService(from, memory.New(), pub).Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestImportWithoutPublisher(t *testing.T) {
	from := memory.New(mustContract(t, "Acme", core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 31), 1200, 12))
	n, err := NewImportService(from, memory.New(), nil).Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
