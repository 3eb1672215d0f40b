package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/optimus-hft/lockset"

	"github.com/go-depot/depot/internal/readiness"
	"github.com/go-depot/depot/internal/typekey"
)

// Config carries the stack's construction parameters.
type Config struct {
	Logger            *slog.Logger
	AllowReassignment bool
	OnScopeChanged    []func(pushed bool)
}

// Stack is the ordered sequence of scopes, base first. All mutating
// operations serialize on one lock; lookups take the read side. User
// callbacks (factories, dispose hooks, shadow notifications, observers)
// never run while the lock is held.
type Stack struct {
	mu             sync.RWMutex
	scopes         []*Scope
	allowReassign  bool
	logger         *slog.Logger
	onScopeChanged []func(pushed bool)
	ready          *readiness.Coordinator
	construct      *lockset.Set
}

// New builds a stack holding only the base scope.
func New(cfg *Config) *Stack {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Stack{
		scopes:         []*Scope{newScope(BaseScopeName, nil)},
		allowReassign:  cfg.AllowReassignment,
		logger:         logger,
		onScopeChanged: cfg.OnScopeChanged,
		ready:          readiness.New(),
		construct:      lockset.New(),
	}
}

// Ready exposes the readiness coordinator for the facade's wait operations.
func (s *Stack) Ready() *readiness.Coordinator {
	return s.ready
}

func (s *Stack) top() *Scope {
	return s.scopes[len(s.scopes)-1]
}

// lookupLocked scans scopes from startIdx down to the base and returns the
// first record matching key.
func (s *Stack) lookupLocked(key Key, startIdx int) (*Record, bool) {
	for i := startIdx; i >= 0; i-- {
		if rec, ok := s.scopes[i].get(key); ok {
			return rec, true
		}
	}
	return nil, false
}

// Lookup finds the first record for key scanning top-down. With lookBelow
// the scan starts one scope under the top, which is how shadow detection
// sees past the active scope.
func (s *Stack) Lookup(key Key, lookBelow bool) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.scopes) - 1
	if lookBelow {
		start--
	}
	return s.lookupLocked(key, start)
}

// Register inserts rec into the current scope. Duplicate keys in that scope
// fail with ErrDuplicate unless reassignment is allowed, in which case the
// old record is replaced without disposal. Registering a direct instance
// that shadows a shadow-aware instance lower in the stack fires its
// OnGetShadowed hook synchronously.
func (s *Stack) Register(rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	var shadowed ShadowNotifier

	s.mu.Lock()
	current := s.top()
	if old, exists := current.get(rec.Key); exists {
		if !s.allowReassign {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s in scope %q", ErrDuplicate, rec.Key, current.Name())
		}
		if old.requiresSignal() {
			s.ready.Untrack(old.Key.String())
		}
	}

	if rec.Strategy == StrategyInstance {
		if below, ok := s.lookupLocked(rec.Key, len(s.scopes)-2); ok && below.HasInstance {
			if n, ok := below.Instance.(ShadowNotifier); ok {
				shadowed = n
			}
		}
	}

	current.put(rec)
	if rec.requiresSignal() {
		s.ready.Track(rec.Key.String(), rec.Strategy == StrategyAsync)
	}
	s.mu.Unlock()

	s.logger.Debug("registered", "key", rec.Key.String(), "strategy", rec.Strategy.String())

	if shadowed != nil {
		shadowed.OnGetShadowed(rec.Instance)
	}

	if rec.Strategy == StrategyAsync {
		go s.runAsync(rec)
	}
	return nil
}

func (s *Stack) runAsync(rec *Record) {
	instance, err := rec.AsyncFactory(context.Background())
	if err != nil {
		s.logger.Debug("async construction failed", "key", rec.Key.String(), "error", err)
		s.ready.Fail(rec.Key.String(), err)
		return
	}

	s.mu.Lock()
	rec.Instance = instance
	rec.HasInstance = true
	s.mu.Unlock()

	s.ready.MarkReady(rec.Key.String())
}

// Replace swaps in rec over the topmost visible registration of the same
// key, or adds it to the current scope when the key is unknown. No disposal
// of the old record happens; this is the test-override path.
func (s *Stack) Replace(rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.lookupLocked(rec.Key, len(s.scopes)-1); ok {
		if old.requiresSignal() {
			s.ready.Untrack(old.Key.String())
		}
		old.owner.put(rec)
	} else {
		s.top().put(rec)
	}
	if rec.requiresSignal() {
		s.ready.Track(rec.Key.String(), rec.Strategy == StrategyAsync)
	}
	return nil
}

// Resolve produces an instance for key. paramType is the static type key of
// param when hasParam is set; it must match a param factory's declared type.
func (s *Stack) Resolve(key Key, param any, paramType string, hasParam bool) (any, error) {
	s.mu.RLock()
	rec, ok := s.lookupLocked(key, len(s.scopes)-1)
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}

	switch rec.Strategy {
	case StrategyInstance:
		instance := rec.Instance
		s.mu.RUnlock()
		return instance, nil

	case StrategyAsync:
		if rec.HasInstance {
			instance := rec.Instance
			s.mu.RUnlock()
			return instance, nil
		}
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %s", ErrNotReady, key)

	case StrategyFactoryParam:
		fp := rec.FactoryParam
		declared := rec.ParamType
		s.mu.RUnlock()
		if !hasParam {
			return nil, fmt.Errorf("%w: %s requires a parameter of type %s", ErrTypeMismatch, key, declared)
		}
		if paramType != declared {
			return nil, fmt.Errorf("%w: %s expects parameter type %s, got %s", ErrTypeMismatch, key, declared, paramType)
		}
		return fp(param)

	default: // StrategyFactory; a supplied param is ignored.
		if rec.HasInstance {
			instance := rec.Instance
			s.mu.RUnlock()
			return instance, nil
		}
		factory := rec.Factory
		cached := rec.Cached
		s.mu.RUnlock()

		if !cached {
			return factory()
		}
		return s.resolveCached(key, rec, factory)
	}
}

// resolveCached memoizes the first factory result. The per-key lock keeps
// concurrent first resolutions from racing without holding the stack lock
// across user code.
func (s *Stack) resolveCached(key Key, rec *Record, factory func() (any, error)) (any, error) {
	lockKey := key.String()
	s.construct.Lock(lockKey)
	defer s.construct.Unlock(lockKey)

	s.mu.RLock()
	if rec.HasInstance {
		instance := rec.Instance
		s.mu.RUnlock()
		return instance, nil
	}
	s.mu.RUnlock()

	instance, err := factory()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	rec.Instance = instance
	rec.HasInstance = true
	s.mu.Unlock()
	return instance, nil
}

// Unregister removes one record, located by instance identity when instance
// is given, otherwise by key, and runs its dispose path. An override dispose
// function wins over the record's own.
func (s *Stack) Unregister(ctx context.Context, key Key, instance any, byInstance bool, override func(context.Context, any) error) error {
	s.mu.Lock()
	var rec *Record
	if byInstance {
		for i := len(s.scopes) - 1; i >= 0 && rec == nil; i-- {
			for _, candidate := range s.scopes[i].records {
				if candidate.matchesInstance(instance) {
					rec = candidate
					break
				}
			}
		}
	} else if found, ok := s.lookupLocked(key, len(s.scopes)-1); ok {
		rec = found
	}

	if rec == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}

	rec.owner.remove(rec.Key)
	if rec.requiresSignal() {
		s.ready.Untrack(rec.Key.String())
	}
	s.mu.Unlock()

	s.logger.Debug("unregistered", "key", rec.Key.String(), "scope", rec.owner.Name())
	return rec.dispose(ctx, override)
}

// PushScope appends a fresh scope and makes it current. Empty names get a
// generated unique one. init, when given, runs with the new scope already
// current so it can register into it; an init failure drops the scope again
// without disposal. The scope-changed observers fire once, after init.
func (s *Stack) PushScope(name string, disposeFunc func(ctx context.Context) error, init func() error) (string, error) {
	if name == "" {
		name = "scope-" + uuid.NewString()
	}

	s.mu.Lock()
	if name == BaseScopeName {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidScopeName, BaseScopeName)
	}
	for _, sc := range s.scopes {
		if sc.Name() == name {
			s.mu.Unlock()
			return "", fmt.Errorf("%w: %q already on the stack", ErrInvalidScopeName, name)
		}
	}
	scope := newScope(name, disposeFunc)
	s.scopes = append(s.scopes, scope)
	s.mu.Unlock()

	if init != nil {
		if err := init(); err != nil {
			s.dropScope(scope)
			return "", err
		}
	}

	s.logger.Debug("scope pushed", "scope", name)
	s.notifyScopeChanged(true)
	return name, nil
}

// dropScope removes a scope without disposal, used to roll back a failed
// scope init.
func (s *Stack) dropScope(scope *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.scopes) - 1; i > 0; i-- {
		if s.scopes[i] != scope {
			continue
		}
		for key, rec := range scope.records {
			if rec.requiresSignal() {
				s.ready.Untrack(key.String())
			}
		}
		s.scopes = append(s.scopes[:i], s.scopes[i+1:]...)
		return
	}
}

// disposal is one record's teardown plan: notify the record it un-shadows,
// then dispose the record itself.
type disposal struct {
	rec       *Record
	unshadows ShadowNotifier
}

// planDisposalsLocked builds the per-record teardown plan for scope at stack
// index idx, in deterministic key order.
func (s *Stack) planDisposalsLocked(idx int) []disposal {
	scope := s.scopes[idx]
	keys := make([]Key, 0, scope.size())
	for key := range scope.records {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	plan := make([]disposal, 0, len(keys))
	for _, key := range keys {
		d := disposal{rec: scope.records[key]}
		if below, ok := s.lookupLocked(key, idx-1); ok && below.HasInstance {
			if n, ok := below.Instance.(ShadowNotifier); ok {
				d.unshadows = n
			}
		}
		plan = append(plan, d)
	}
	return plan
}

func (s *Stack) runDisposals(ctx context.Context, plan []disposal) error {
	var errs []error
	for _, d := range plan {
		if d.unshadows != nil {
			d.unshadows.OnLeaveShadow()
		}
		if err := d.rec.dispose(ctx, nil); err != nil {
			errs = append(errs, fmt.Errorf("dispose %s: %w", d.rec.Key, err))
		}
		if d.rec.requiresSignal() {
			s.ready.Untrack(d.rec.Key.String())
		}
	}
	return errors.Join(errs...)
}

// PopScope tears down the current scope and removes it. Order: the scope's
// own dispose hook runs first, with the scope still current; then each
// record's un-shadow notification and dispose hook; then the scope leaves
// the stack and the observers fire. Dispose errors propagate but never
// abort the pop.
func (s *Stack) PopScope(ctx context.Context) error {
	s.mu.Lock()
	if len(s.scopes) == 1 {
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot pop the base scope", ErrIllegalState)
	}
	scope := s.top()
	plan := s.planDisposalsLocked(len(s.scopes) - 1)
	s.mu.Unlock()

	var errs []error
	if scope.disposeFunc != nil {
		if err := scope.disposeFunc(ctx); err != nil {
			errs = append(errs, fmt.Errorf("scope %q dispose: %w", scope.Name(), err))
		}
	}
	if err := s.runDisposals(ctx, plan); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	s.scopes = s.scopes[:len(s.scopes)-1]
	s.mu.Unlock()

	s.logger.Debug("scope popped", "scope", scope.Name())
	s.notifyScopeChanged(false)
	return errors.Join(errs...)
}

// PopScopesTill pops scopes until name has been removed (inclusive) or is
// the current scope (exclusive). When no scope carries the name, nothing is
// popped and the call reports false.
func (s *Stack) PopScopesTill(ctx context.Context, name string, inclusive bool) (bool, error) {
	if inclusive && name == BaseScopeName {
		return false, fmt.Errorf("%w: cannot pop the base scope", ErrIllegalState)
	}

	s.mu.RLock()
	found := false
	for _, sc := range s.scopes {
		if sc.Name() == name {
			found = true
			break
		}
	}
	s.mu.RUnlock()
	if !found {
		return false, nil
	}

	for {
		current := s.CurrentScopeName()
		if current == name && !inclusive {
			return true, nil
		}
		popped := current
		if err := s.PopScope(ctx); err != nil {
			return false, err
		}
		if popped == name {
			return true, nil
		}
	}
}

// ResetScope disposes (when requested) and clears every record in the
// current scope; the scope itself stays on the stack.
func (s *Stack) ResetScope(ctx context.Context, dispose bool) error {
	s.mu.Lock()
	scope := s.top()
	var plan []disposal
	if dispose {
		plan = s.planDisposalsLocked(len(s.scopes) - 1)
	} else {
		for key, rec := range scope.records {
			if rec.requiresSignal() {
				s.ready.Untrack(key.String())
			}
		}
	}
	scope.records = make(map[Key]*Record)
	s.mu.Unlock()

	s.logger.Debug("scope reset", "scope", scope.Name())
	if !dispose {
		return nil
	}
	return s.runDisposals(ctx, plan)
}

// Reset pops every scope above the base, top-down with PopScope's disposal
// rule, then clears the base scope's records. The end state is a stack of
// length one with an empty base scope.
func (s *Stack) Reset(ctx context.Context, dispose bool) error {
	var errs []error
	for s.Depth() > 1 {
		if dispose {
			if err := s.PopScope(ctx); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		s.mu.Lock()
		scope := s.top()
		s.mu.Unlock()
		s.dropScope(scope)
		s.notifyScopeChanged(false)
	}
	if err := s.ResetScope(ctx, dispose); err != nil {
		errs = append(errs, err)
	}
	s.ready.Reset()
	return errors.Join(errs...)
}

// SignalReady marks the record holding instance as ready. A nil instance
// marks the coarse composition-done token instead, which is only legal once
// nothing is pending.
func (s *Stack) SignalReady(instance any) error {
	if typekey.IsNil(instance) {
		if pending := s.ready.PendingKeys(); len(pending) > 0 {
			return fmt.Errorf("%w: cannot signal global readiness while records are pending: %v", ErrIllegalState, pending)
		}
		s.ready.SignalGlobal()
		return nil
	}

	s.mu.RLock()
	var key Key
	found := false
	for i := len(s.scopes) - 1; i >= 0 && !found; i-- {
		for _, rec := range s.scopes[i].records {
			if rec.matchesInstance(instance) {
				key = rec.Key
				found = true
				break
			}
		}
	}
	s.mu.RUnlock()

	if !found {
		return fmt.Errorf("%w: no record holds the signalled instance", ErrNotRegistered)
	}
	s.ready.MarkReady(key.String())
	return nil
}

// KeyOfInstance finds the key of the record holding exactly this instance,
// scanning top-down.
func (s *Stack) KeyOfInstance(instance any) (Key, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.scopes) - 1; i >= 0; i-- {
		for _, rec := range s.scopes[i].records {
			if rec.matchesInstance(instance) {
				return rec.Key, true
			}
		}
	}
	return Key{}, false
}

// CurrentScopeName names the scope new registrations land in.
func (s *Stack) CurrentScopeName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.top().Name()
}

// ScopeNames lists all scope names, base first.
func (s *Stack) ScopeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.scopes))
	for i, sc := range s.scopes {
		names[i] = sc.Name()
	}
	return names
}

// Depth returns the number of scopes on the stack.
func (s *Stack) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scopes)
}

// Size returns the total number of records across all scopes.
func (s *Stack) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sc := range s.scopes {
		n += sc.size()
	}
	return n
}

// RecordInfo is a diagnostic view of one registration.
type RecordInfo struct {
	Key          string
	Strategy     string
	Instantiated bool
}

// ScopeInfo is a diagnostic view of one scope, records in key order.
type ScopeInfo struct {
	Name    string
	Records []RecordInfo
}

// Info captures the whole stack, base first, for debug output.
func (s *Stack) Info() []ScopeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]ScopeInfo, len(s.scopes))
	for i, sc := range s.scopes {
		info := ScopeInfo{Name: sc.Name()}
		for key, rec := range sc.records {
			info.Records = append(info.Records, RecordInfo{
				Key:          key.String(),
				Strategy:     rec.Strategy.String(),
				Instantiated: rec.HasInstance,
			})
		}
		sort.Slice(info.Records, func(a, b int) bool { return info.Records[a].Key < info.Records[b].Key })
		infos[i] = info
	}
	return infos
}

func (s *Stack) notifyScopeChanged(pushed bool) {
	for _, hook := range s.onScopeChanged {
		hook(pushed)
	}
}
