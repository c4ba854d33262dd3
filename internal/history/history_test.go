// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// openTestStore opens a store backed by a temp file and closes it at test end.
func openTestStore(t *testing.T, maxRuns int) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(&Config{Path: path, MaxRuns: maxRuns})
	require.NoError(t, err, "Failed to open history store")
	t.Cleanup(func() { store.Close() })
	return store
}

// sampleRun builds a plausible run record for tests.
func sampleRun(scenario string) *Run {
	return &Run{
		Scenario:   scenario,
		Iterations: 5,
		Tasks:      1000,
		Workers:    4,
		TotalNs:    int64(50 * time.Millisecond),
		AvgNs:      int64(10 * time.Millisecond),
		MinNs:      int64(8 * time.Millisecond),
		MaxNs:      int64(14 * time.Millisecond),
		P95Ns:      int64(13 * time.Millisecond),
		OpsPerSec:  100000,
	}
}

// =============================================================================
// SAVE / GET TESTS
// =============================================================================

func TestStore_SaveAssignsIDAndTimestamp(t *testing.T) {
	store := openTestStore(t, 0)

	run := sampleRun("sched-drain")
	require.NoError(t, store.Save(run))

	require.NotEmpty(t, run.ID, "Save should assign an ID")
	require.False(t, run.CreatedAt.IsZero(), "Save should assign CreatedAt")

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	require.Equal(t, run.Scenario, got.Scenario)
	require.Equal(t, run.Tasks, got.Tasks)
	require.Equal(t, run.OpsPerSec, got.OpsPerSec)
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store := openTestStore(t, 0)

	err := store.Save(&Run{})
	require.ErrorIs(t, err, ErrInvalidRun, "Run without scenario should be rejected")

	err = store.Save(nil)
	require.ErrorIs(t, err, ErrInvalidRun)

	bad := sampleRun("sched-drain")
	bad.Workers = -1
	err = store.Save(bad)
	require.ErrorIs(t, err, ErrInvalidRun)
}

func TestStore_GetByPrefix(t *testing.T) {
	store := openTestStore(t, 0)

	run := sampleRun("strand")
	require.NoError(t, store.Save(run))

	got, err := store.Get(run.ID[:8])
	require.NoError(t, err, "Unique prefix should resolve")
	require.Equal(t, run.ID, got.ID)

	_, err = store.Get("zzzzzzzz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetAmbiguousPrefix(t *testing.T) {
	store := openTestStore(t, 0)

	a := sampleRun("gate")
	a.ID = "aaaa0000-0000-0000-0000-000000000001"
	require.NoError(t, store.Save(a))

	b := sampleRun("gate")
	b.ID = "aaaa0000-0000-0000-0000-000000000002"
	require.NoError(t, store.Save(b))

	_, err := store.Get("aaaa")
	require.ErrorIs(t, err, ErrAmbiguousID)
}

// =============================================================================
// LIST / QUERY TESTS
// =============================================================================

func TestStore_ListNewestFirst(t *testing.T) {
	store := openTestStore(t, 0)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		run := sampleRun("sched-drain")
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		run.Notes = fmt.Sprintf("run-%d", i)
		require.NoError(t, store.Save(run))
	}

	runs, err := store.List("sched-drain", 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, "run-2", runs[0].Notes, "Newest run should come first")
	require.Equal(t, "run-0", runs[2].Notes)
}

func TestStore_ListFiltersByScenario(t *testing.T) {
	store := openTestStore(t, 0)

	require.NoError(t, store.Save(sampleRun("sched-drain")))
	require.NoError(t, store.Save(sampleRun("strand")))
	require.NoError(t, store.Save(sampleRun("strand")))

	runs, err := store.List("strand", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	all, err := store.List("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestStore_BestFor(t *testing.T) {
	store := openTestStore(t, 0)

	slow := sampleRun("gate")
	slow.OpsPerSec = 1000
	require.NoError(t, store.Save(slow))

	fast := sampleRun("gate")
	fast.OpsPerSec = 9000
	require.NoError(t, store.Save(fast))

	best, err := store.BestFor("gate")
	require.NoError(t, err)
	require.Equal(t, fast.ID, best.ID)

	_, err = store.BestFor("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Scenarios(t *testing.T) {
	store := openTestStore(t, 0)

	require.NoError(t, store.Save(sampleRun("strand")))
	require.NoError(t, store.Save(sampleRun("gate")))
	require.NoError(t, store.Save(sampleRun("gate")))

	scenarios, err := store.Scenarios()
	require.NoError(t, err)
	require.Equal(t, []string{"gate", "strand"}, scenarios)
}

func TestStore_Count(t *testing.T) {
	store := openTestStore(t, 0)

	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 0, n)

	require.NoError(t, store.Save(sampleRun("strand")))
	n, err = store.Count()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// =============================================================================
// RETENTION TESTS
// =============================================================================

func TestStore_SavePrunesBeyondMaxRuns(t *testing.T) {
	store := openTestStore(t, 2)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := sampleRun("sched-drain")
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		run.Notes = fmt.Sprintf("run-%d", i)
		require.NoError(t, store.Save(run))
	}

	runs, err := store.List("sched-drain", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2, "Retention should keep only the newest runs")
	require.Equal(t, "run-4", runs[0].Notes)
	require.Equal(t, "run-3", runs[1].Notes)
}

func TestStore_RetentionIsPerScenario(t *testing.T) {
	store := openTestStore(t, 1)

	require.NoError(t, store.Save(sampleRun("strand")))
	require.NoError(t, store.Save(sampleRun("gate")))

	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n, "Retention limits apply per scenario, not globally")
}

func TestStore_Prune(t *testing.T) {
	store := openTestStore(t, 0)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		run := sampleRun("strand")
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(run))
	}

	deleted, err := store.Prune("strand", 1)
	require.NoError(t, err)
	require.Equal(t, 3, deleted)

	runs, err := store.List("strand", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
}

func TestStore_PruneAllScenarios(t *testing.T) {
	store := openTestStore(t, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(sampleRun("strand")))
		require.NoError(t, store.Save(sampleRun("gate")))
	}

	deleted, err := store.Prune("", 1)
	require.NoError(t, err)
	require.Equal(t, 4, deleted)

	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestStore_Delete(t *testing.T) {
	store := openTestStore(t, 0)

	run := sampleRun("gate")
	require.NoError(t, store.Save(run))

	require.NoError(t, store.Delete(run.ID))
	_, err := store.Get(run.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = store.Delete(run.ID)
	require.ErrorIs(t, err, ErrNotFound, "Deleting a missing run should report not found")
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestStore_ClosedOperationsFail(t *testing.T) {
	store := openTestStore(t, 0)
	require.NoError(t, store.Close())

	err := store.Save(sampleRun("strand"))
	require.ErrorIs(t, err, ErrClosed)

	_, err = store.List("", 10)
	require.ErrorIs(t, err, ErrClosed)

	_, err = store.Get("abc")
	require.ErrorIs(t, err, ErrClosed)

	// Double close is fine
	require.NoError(t, store.Close())
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(&Config{Path: path})
	require.NoError(t, err)
	run := sampleRun("sched-drain")
	require.NoError(t, store.Save(run))
	require.NoError(t, store.Close())

	store, err = Open(&Config{Path: path})
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	require.Equal(t, run.Scenario, got.Scenario)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	store := openTestStore(t, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			run := sampleRun("sched-drain")
			run.Notes = fmt.Sprintf("worker-%d", i)
			if err := store.Save(run); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 10, n)
}

func TestRun_DurationAccessors(t *testing.T) {
	run := sampleRun("strand")
	require.Equal(t, 10*time.Millisecond, run.Avg())
	require.Equal(t, 8*time.Millisecond, run.Min())
	require.Equal(t, 14*time.Millisecond, run.Max())
	require.Equal(t, 13*time.Millisecond, run.P95())
	require.Equal(t, 50*time.Millisecond, run.Total())
}

func TestRun_ShortID(t *testing.T) {
	run := &Run{ID: "3fa2b1c8-0000-0000-0000-000000000000"}
	require.Equal(t, "3fa2b1c8", run.ShortID())

	short := &Run{ID: "abc"}
	require.Equal(t, "abc", short.ShortID())
}
