// Package readiness tracks which registrations still owe an initialization
// signal and lets callers block until they deliver it. Only records that
// require signalling are tracked; everything else counts as ready.
package readiness

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Snapshot is a diagnostic view of the coordinator taken when a wait times
// out. Waiters maps a tracked key to the labels of the waits currently
// blocked on it ("all" marks a whole-registry wait).
type Snapshot struct {
	Pending []string
	Ready   []string
	Waiters map[string][]string
}

// TimeoutError is returned when a wait's deadline elapses before the target
// becomes ready.
type TimeoutError struct {
	Target   string
	Snapshot Snapshot
}

func (e *TimeoutError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "timed out waiting for %s", e.Target)
	if len(e.Snapshot.Pending) > 0 {
		fmt.Fprintf(&b, "; pending: %s", strings.Join(e.Snapshot.Pending, ", "))
	}
	if len(e.Snapshot.Ready) > 0 {
		fmt.Fprintf(&b, "; ready: %s", strings.Join(e.Snapshot.Ready, ", "))
	}
	return b.String()
}

type entry struct {
	done    chan struct{}
	ready   bool
	err     error
	async   bool
	waiters map[int]string
}

// Coordinator is the registry-wide readiness state. The zero value is not
// usable; construct with New.
type Coordinator struct {
	mu        sync.Mutex
	entries   map[string]*entry
	changed   chan struct{}
	global    bool
	waiterSeq int
}

func New() *Coordinator {
	return &Coordinator{
		entries: make(map[string]*entry),
		changed: make(chan struct{}),
	}
}

// broadcastLocked wakes every WaitAll loop so it can re-evaluate the
// pending set.
func (c *Coordinator) broadcastLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Track starts tracking key as pending. async marks records whose factory is
// still running in the background, which AllReady can be told to ignore.
func (c *Coordinator) Track(key string, async bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !e.ready {
		return
	}
	c.entries[key] = &entry{
		done:    make(chan struct{}),
		async:   async,
		waiters: make(map[int]string),
	}
	c.broadcastLocked()
}

// MarkReady transitions key to ready. Unknown keys are ignored: the record
// never required signalling.
func (c *Coordinator) MarkReady(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeLocked(key, nil)
}

// Fail transitions key to ready with a construction error; waiters observe
// the error instead of success.
func (c *Coordinator) Fail(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeLocked(key, err)
}

func (c *Coordinator) completeLocked(key string, err error) {
	e, ok := c.entries[key]
	if !ok || e.ready {
		return
	}
	e.ready = true
	e.err = err
	close(e.done)
	c.broadcastLocked()
}

// Untrack forgets key entirely, releasing any waiters. Used when the owning
// record is unregistered or its scope is torn down.
func (c *Coordinator) Untrack(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	if !e.ready {
		close(e.done)
	}
	delete(c.entries, key)
	c.broadcastLocked()
}

// Reset forgets all tracked state, releasing any waiters.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if !e.ready {
			close(e.done)
		}
	}
	c.entries = make(map[string]*entry)
	c.global = false
	c.broadcastLocked()
}

func (c *Coordinator) pendingLocked(ignoreAsync bool) int {
	n := 0
	for _, e := range c.entries {
		if e.ready || (ignoreAsync && e.async) {
			continue
		}
		n++
	}
	return n
}

// IsReady reports the current state of key without blocking. Untracked keys
// are ready by definition.
func (c *Coordinator) IsReady(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return !ok || e.ready
}

// AllReady reports whether every tracked record has signalled.
func (c *Coordinator) AllReady(ignoreAsync bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked(ignoreAsync) == 0
}

// SignalGlobal marks the coarse "composition done" token used when readiness
// is signalled without any record attached.
func (c *Coordinator) SignalGlobal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.global = true
}

// GlobalReady reports the composition-done token.
func (c *Coordinator) GlobalReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.global
}

// PendingKeys returns the tracked keys that have not signalled yet, sorted.
func (c *Coordinator) PendingKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingKeysLocked()
}

func (c *Coordinator) pendingKeysLocked() []string {
	var keys []string
	for key, e := range c.entries {
		if !e.ready {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{Waiters: make(map[string][]string)}
	for key, e := range c.entries {
		if e.ready {
			snap.Ready = append(snap.Ready, key)
		} else {
			snap.Pending = append(snap.Pending, key)
		}
		for _, label := range e.waiters {
			snap.Waiters[key] = append(snap.Waiters[key], label)
		}
	}
	sort.Strings(snap.Pending)
	sort.Strings(snap.Ready)
	for key := range snap.Waiters {
		sort.Strings(snap.Waiters[key])
	}
	if len(snap.Waiters) == 0 {
		snap.Waiters = nil
	}
	return snap
}

// SnapshotNow returns the current diagnostic snapshot.
func (c *Coordinator) SnapshotNow() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) addWaiter(key, label string) (int, chan struct{}, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, nil, true, nil
	}
	if e.ready {
		return 0, nil, true, e.err
	}

	c.waiterSeq++
	id := c.waiterSeq
	e.waiters[id] = label
	return id, e.done, false, nil
}

func (c *Coordinator) removeWaiter(key string, id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		delete(e.waiters, id)
	}
}

// Wait blocks until key becomes ready, the deadline elapses, or ctx is
// cancelled. hasDeadline distinguishes "no deadline" from a zero timeout,
// which checks once and fails immediately when not ready.
func (c *Coordinator) Wait(ctx context.Context, key, label string, timeout time.Duration, hasDeadline bool) error {
	id, done, ready, err := c.addWaiter(key, label)
	if ready {
		return err
	}
	defer c.removeWaiter(key, id)

	if hasDeadline && timeout <= 0 {
		return c.timeoutErr(key)
	}

	var expired <-chan time.Time
	if hasDeadline {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-done:
		return c.entryErr(key)
	case <-expired:
		return c.timeoutErr(key)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitAll blocks until every tracked record is ready, applying the same
// deadline rules as Wait. With ignoreAsync, records still mid-construction
// do not count against readiness.
func (c *Coordinator) WaitAll(ctx context.Context, timeout time.Duration, hasDeadline, ignoreAsync bool) error {
	var expired <-chan time.Time
	if hasDeadline {
		if timeout <= 0 {
			if !c.AllReady(ignoreAsync) {
				return c.timeoutErr("all")
			}
			return nil
		}
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		c.mu.Lock()
		if c.pendingLocked(ignoreAsync) == 0 {
			c.mu.Unlock()
			return nil
		}
		changed := c.changed
		c.waiterSeq++
		id := c.waiterSeq
		for _, e := range c.entries {
			if !e.ready && !(ignoreAsync && e.async) {
				e.waiters[id] = "all"
			}
		}
		c.mu.Unlock()

		select {
		case <-changed:
			c.dropWaitAll(id)
		case <-expired:
			c.dropWaitAll(id)
			return c.timeoutErr("all")
		case <-ctx.Done():
			c.dropWaitAll(id)
			return ctx.Err()
		}
	}
}

func (c *Coordinator) dropWaitAll(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		delete(e.waiters, id)
	}
}

func (c *Coordinator) entryErr(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.err
	}
	return nil
}

func (c *Coordinator) timeoutErr(target string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &TimeoutError{Target: target, Snapshot: c.snapshotLocked()}
}
