package readiness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_UntrackedKeysAreReady(t *testing.T) {
	t.Parallel()

	c := New()

	require.True(t, c.IsReady("anything"))
	require.True(t, c.AllReady(false))
	require.NoError(t, c.Wait(context.Background(), "anything", "w", 0, true))
}

func TestCoordinator_TrackAndMarkReady(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)

	require.False(t, c.IsReady("a"))
	require.False(t, c.AllReady(false))
	require.Equal(t, []string{"a"}, c.PendingKeys())

	c.MarkReady("a")

	require.True(t, c.IsReady("a"))
	require.True(t, c.AllReady(false))
	require.Empty(t, c.PendingKeys())
}

func TestCoordinator_WaitZeroDeadline(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)

	err := c.Wait(context.Background(), "a", "w", 0, true)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	require.Equal(t, "a", timeout.Target)
	require.Equal(t, []string{"a"}, timeout.Snapshot.Pending)
}

func TestCoordinator_WaitUnblocksOnReady(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)

	done := make(chan error, 1)
	go func() {
		done <- c.Wait(context.Background(), "a", "w", time.Second, true)
	}()

	c.MarkReady("a")
	require.NoError(t, <-done)
}

func TestCoordinator_WaitSeesFailure(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", true)

	boom := errors.New("boom")
	c.Fail("a", boom)

	require.ErrorIs(t, c.Wait(context.Background(), "a", "w", 0, true), boom)
	// A failed construction still counts as settled.
	require.True(t, c.AllReady(false))
}

func TestCoordinator_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Wait(ctx, "a", "w", 0, false)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCoordinator_WaitAll(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)
	c.Track("b", false)

	done := make(chan error, 1)
	go func() {
		done <- c.WaitAll(context.Background(), time.Second, true, false)
	}()

	c.MarkReady("a")
	select {
	case err := <-done:
		t.Fatalf("WaitAll returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	c.MarkReady("b")
	require.NoError(t, <-done)
}

func TestCoordinator_WaitAllIgnoresAsync(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("async", true)
	c.Track("manual", false)
	c.MarkReady("manual")

	require.False(t, c.AllReady(false))
	require.True(t, c.AllReady(true))
	require.NoError(t, c.WaitAll(context.Background(), 0, true, true))
}

func TestCoordinator_WaitAllTimeout(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)

	err := c.WaitAll(context.Background(), 10*time.Millisecond, true, false)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	require.Equal(t, "all", timeout.Target)
	require.Equal(t, []string{"a"}, timeout.Snapshot.Pending)
}

func TestCoordinator_UntrackReleasesWaiters(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)

	done := make(chan error, 1)
	go func() {
		done <- c.Wait(context.Background(), "a", "w", time.Second, true)
	}()

	time.Sleep(10 * time.Millisecond)
	c.Untrack("a")
	require.NoError(t, <-done)
}

func TestCoordinator_SnapshotListsWaiters(t *testing.T) {
	t.Parallel()

	c := New()
	c.Track("a", false)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- c.Wait(context.Background(), "a", "isReady(a)", time.Second, true)
	}()

	<-started
	require.Eventually(t, func() bool {
		snap := c.SnapshotNow()
		return len(snap.Waiters["a"]) == 1
	}, time.Second, 5*time.Millisecond)

	want := Snapshot{
		Pending: []string{"a"},
		Waiters: map[string][]string{"a": {"isReady(a)"}},
	}
	if diff := cmp.Diff(want, c.SnapshotNow()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	c.MarkReady("a")
	require.NoError(t, <-done)
}

func TestCoordinator_GlobalToken(t *testing.T) {
	t.Parallel()

	c := New()

	require.False(t, c.GlobalReady())
	c.SignalGlobal()
	require.True(t, c.GlobalReady())

	c.Reset()
	require.False(t, c.GlobalReady())
}
