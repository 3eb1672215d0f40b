package registry

import "context"

// BaseScopeName is the reserved name of the bottom scope. It is created with
// the stack, cannot be popped, and cannot be reused for pushed scopes.
const BaseScopeName = "baseScope"

// Scope is one layer of registrations. Records are keyed by (type, name);
// iteration order within a scope carries no meaning.
type Scope struct {
	name        string
	records     map[Key]*Record
	disposeFunc func(ctx context.Context) error
}

func newScope(name string, disposeFunc func(ctx context.Context) error) *Scope {
	return &Scope{
		name:        name,
		records:     make(map[Key]*Record),
		disposeFunc: disposeFunc,
	}
}

// Name returns the scope's name. Anonymous scopes receive a generated name
// at push time, so this is never empty.
func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) get(key Key) (*Record, bool) {
	rec, ok := s.records[key]
	return rec, ok
}

func (s *Scope) put(rec *Record) {
	rec.owner = s
	s.records[rec.Key] = rec
}

func (s *Scope) remove(key Key) {
	delete(s.records, key)
}

func (s *Scope) size() int {
	return len(s.records)
}
