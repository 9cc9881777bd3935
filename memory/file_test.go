package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rickchristie/lessongraph"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T, max int) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "memory.json")
	return NewFileStore(path, max).WithLogger(zerolog.New(os.Stdout).Level(zerolog.Disabled))
}

func record(i int) lessongraph.MemoryRecord {
	return lessongraph.MemoryRecord{
		TaskID:    fmt.Sprintf("task-%d", i),
		Task:      fmt.Sprintf("task %d", i),
		Plan:      "plan",
		Result:    "result",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
	}
}

func taskIDs(records []lessongraph.MemoryRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.TaskID
	}
	return ids
}

// -----------------------------------------------------------------------------
// FileStore
// -----------------------------------------------------------------------------

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store := createTestStore(t, 3)

	records, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStore_KeepsNewest(t *testing.T) {
	store := createTestStore(t, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(ctx, record(i)))
	}

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-3", "task-4", "task-5"}, taskIDs(all))
	assert.Equal(t, record(5), all[2])

	two, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-4", "task-5"}, taskIDs(two))
}

func TestFileStore_DefaultMax(t *testing.T) {
	store := createTestStore(t, 0)
	ctx := context.Background()

	for i := 0; i < DefaultMaxItems+2; i++ {
		require.NoError(t, store.Append(ctx, record(i)))
	}

	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, DefaultMaxItems)
	assert.Equal(t, "task-2", records[0].TaskID)
}

func TestFileStore_CorruptFile(t *testing.T) {
	store := createTestStore(t, 3)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, store.Append(ctx, record(1)))
	records, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1"}, taskIDs(records))
}

func TestFileStore_SharedAcrossInstances(t *testing.T) {
	store := createTestStore(t, 3)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, record(1)))

	reopened := NewFileStore(store.Path(), 3)
	records, err := reopened.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-1"}, taskIDs(records))
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	store := createTestStore(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Append(ctx, record(i)))
		}(i)
	}
	wg.Wait()

	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestFileStore_CanceledContext(t *testing.T) {
	store := createTestStore(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Append(ctx, record(1)), context.Canceled)
	_, err := store.Recent(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
