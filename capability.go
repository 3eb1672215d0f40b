package depot

import (
	"github.com/go-depot/depot/internal/readiness"
	"github.com/go-depot/depot/internal/registry"
)

// Disposable is the teardown capability a registered instance can implement.
// It runs when the instance's record is removed, unless a dispose function
// was supplied at registration; supplying both is a registration error.
type Disposable = registry.Disposable

// ShadowNotifier lets a registered instance hear when a same-keyed
// registration above it starts or stops hiding it. OnGetShadowed fires
// synchronously while the shadowing instance is registered; OnLeaveShadow
// fires during the shadowing scope's teardown, before the shadowing record's
// own dispose hook.
type ShadowNotifier = registry.ShadowNotifier

// ReadinessSnapshot describes the readiness state captured when a wait times
// out: which keys are still pending, which are ready, and which waits are
// blocked on whom.
type ReadinessSnapshot = readiness.Snapshot
