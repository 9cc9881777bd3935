package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rickchristie/lessongraph"
	"github.com/rickchristie/lessongraph/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T, max int) *Store {
	t.Helper()
	store, err := Open(Config{
		Path:     filepath.Join(t.TempDir(), "memory.db"),
		MaxItems: max,
		Logger:   zerolog.New(os.Stdout).Level(zerolog.Disabled),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(i int) lessongraph.MemoryRecord {
	return lessongraph.MemoryRecord{
		TaskID:       fmt.Sprintf("task-%d", i),
		Task:         fmt.Sprintf("task %d", i),
		Plan:         "plan",
		Result:       "result",
		CriticReview: "0\nfine",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    Config
		expected string
	}{
		{
			name:     "missing path",
			input:    Config{},
			expected: "database path is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Open(tc.input)
			assert.EqualError(t, err, tc.expected)
		})
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := createTestStore(t, 3)
	ctx := context.Background()

	empty, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(ctx, record(i)))
	}

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, record(3), all[0])
	assert.Equal(t, record(5), all[2])

	two, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)
	assert.Equal(t, "task-4", two[0].TaskID)
	assert.Equal(t, "task-5", two[1].TaskID)
}

func TestStore_DefaultMax(t *testing.T) {
	store := createTestStore(t, 0)
	ctx := context.Background()

	for i := 0; i < memory.DefaultMaxItems+3; i++ {
		require.NoError(t, store.Append(ctx, record(i)))
	}

	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, memory.DefaultMaxItems)
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	first, err := Open(Config{Path: path, MaxItems: 5})
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, record(1)))
	require.NoError(t, first.Close())

	second, err := Open(Config{Path: path, MaxItems: 5})
	require.NoError(t, err)
	defer second.Close()

	records, err := second.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "task-1", records[0].TaskID)
}

func TestStore_ClosedDatabaseDegradesToEmpty(t *testing.T) {
	store := createTestStore(t, 3)
	require.NoError(t, store.Append(context.Background(), record(1)))
	require.NoError(t, store.Close())

	records, err := store.Recent(context.Background(), 0)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_SummarizeRoundTrip(t *testing.T) {
	store := createTestStore(t, 3)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, record(1)))

	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Last 1 task(s):\n1. Task: task 1\n   Plan: plan\n   Review: fine", memory.Summarize(records, 5))
}
