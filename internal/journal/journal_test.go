package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"trackrunner/internal/track"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ", nil)
	assert.Error(t, err)
}

func TestRecordFlushSummary(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	bus := track.NewEventBus()
	j.Attach(bus)
	bus.Emit(track.Event{Type: track.EventSegmentSpawned})
	assert.Zero(t, j.Pending(), "events outside a run are dropped")

	id, err := j.BeginRun(ctx, 42)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, j.RunID())

	for i := 0; i < 3; i++ {
		bus.Emit(track.Event{Type: track.EventSegmentSpawned, Handle: track.Handle(i + 1), Name: "straight", Position: r3.Vec{Z: float64(i) * 30}, Direction: track.Forward})
	}
	bus.Emit(track.Event{Type: track.EventBranchCommitted, Handle: 9, Data: 2})
	assert.Equal(t, 4, j.Pending())

	require.NoError(t, j.Flush(ctx))
	assert.Zero(t, j.Pending())
	bus.Emit(track.Event{Type: track.EventSegmentRetired, Handle: 1})
	require.NoError(t, j.EndRun(ctx, 1234.5, "caught"))
	assert.Empty(t, j.RunID())

	sum, err := j.Summary(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), sum.Seed)
	assert.Equal(t, "caught", sum.Outcome)
	assert.InDelta(t, 1234.5, sum.Distance, 1e-9)
	assert.False(t, sum.EndedAt.IsZero())
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, map[string]int{
		"segment_spawned":  3,
		"branch_committed": 1,
		"segment_retired":  1,
	}, sum.Counts)
}

func TestBeginRunClosesOpenRun(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	first, err := j.BeginRun(ctx, 1)
	require.NoError(t, err)
	j.Record(track.Event{Type: track.EventSegmentSpawned})
	second, err := j.BeginRun(ctx, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.True(t, runs[0].EndedAt.IsZero())
	assert.Equal(t, "abandoned", runs[1].Outcome)

	sum, err := j.Summary(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
}

func TestMisuse(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)

	assert.ErrorIs(t, j.EndRun(ctx, 0, ""), ErrNoRun)
	assert.NoError(t, j.Flush(ctx))

	_, err := j.Summary(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, nil)
	require.NoError(t, err)
	id, err := j.BeginRun(ctx, 5)
	require.NoError(t, err)
	require.NoError(t, j.EndRun(ctx, 10, "stopped"))
	require.NoError(t, j.Close())

	j, err = Open(path, nil)
	require.NoError(t, err)
	defer j.Close()
	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}
