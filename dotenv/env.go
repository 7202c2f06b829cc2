package dotenv

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Env is the ambient namespace that parsed assignments are merged into.
//
// An Env is created once, typically from the process environment, and then
// passed explicitly to every parse and load. Keys already defined in an Env
// are never overwritten; merging only adds new keys.
//
// An Env also owns the cache of parsed files and the flag recording whether
// a cache snapshot has already been replayed into it.
//
// The zero value is an empty Env ready to use.
//
// Individual methods are safe for concurrent use. A parse or load is a
// read-then-merge sequence, so callers running several of them concurrently
// against one Env must serialize them to get a consistent view of which keys
// already exist.
type Env struct {
	mu       sync.RWMutex
	vars     *Vars
	cache    Cache
	replayed bool
}

// NewEnv returns an Env holding the given "KEY=VALUE" entries, as returned
// by [os.Environ]. Entries without '=' or with an empty key are ignored.
// For duplicate keys the first entry wins.
func NewEnv(environ []string) *Env {
	e := &Env{vars: NewVars()}

	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}

		if _, exists := e.vars.Lookup(key); !exists {
			e.vars.Set(key, val)
		}
	}

	return e
}

// Lookup implements [Lookuper].
func (e *Env) Lookup(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.vars.Lookup(key)
}

// Len implements [Lookuper].
func (e *Env) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.vars.Len()
}

// Merge adds each key of v not yet defined in e and returns the pairs that
// were added.
func (e *Env) Merge(v *Vars) *Vars {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.merge(v)
}

func (e *Env) merge(v *Vars) *Vars {
	if e.vars == nil {
		e.vars = NewVars()
	}

	added := NewVars()

	for key, val := range v.All() {
		if _, exists := e.vars.Lookup(key); exists {
			continue
		}

		e.vars.Set(key, val)
		added.Set(key, val)
	}

	return added
}

// Vars returns a copy of all pairs in insertion order.
func (e *Env) Vars() *Vars {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.vars.Clone()
}

// Snapshot returns a copy of all pairs as a native map.
func (e *Env) Snapshot() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.vars.Map()
}

// Environ returns all pairs formatted as "KEY=VALUE", in insertion order,
// suitable for [os/exec.Cmd.Env].
func (e *Env) Environ() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := make([]string, 0, e.vars.Len())
	for key, val := range e.vars.All() {
		list = append(list, key+"="+val)
	}

	return list
}

// Export calls setenv for every pair of e whose key is not reported by
// lookup, typically [os.LookupEnv] and [os.Setenv]. It stops at the first
// error.
func (e *Env) Export(
	lookup func(string) (string, bool),
	setenv func(key, val string) error,
) error {
	for key, val := range e.Vars().All() {
		if _, ok := lookup(key); ok {
			continue
		}

		if err := setenv(key, val); err != nil {
			return err
		}
	}

	return nil
}

// Parse extracts the assignments of src with [ParseString], merges them
// into e, and returns them.
func (e *Env) Parse(ctx context.Context, src string, opts ...Option) *Vars {
	extracted := ParseString(ctx, src, e, opts...)

	e.Merge(extracted)

	return extracted
}

// Replay restores previously cached parse results.
//
// The contents of each entry are decoded and merged in order into the
// returned mapping, which is then merged into e. Cached pairs were accepted
// when they were first parsed, so they are not checked against e; only the
// final merge into e skips keys e already defines. The entries are recorded
// in the cache of e.
//
// Replay has an effect only once per Env: later calls return an empty
// mapping. A malformed entry fails the whole replay with [ErrDecodeCache]
// and leaves e unchanged.
func (e *Env) Replay(
	ctx context.Context,
	entries []CacheEntry,
	opts ...Option,
) (*Vars, error) {
	o := makeOptions(opts...)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.replayed {
		o.logger.TraceContext(ctx, "cache replay skipped",
			slog.Int("entries", len(entries)),
		)

		return NewVars(), nil
	}

	extracted := NewVars()

	for _, entry := range entries {
		vars, err := entry.Decode()
		if err != nil {
			return nil, err
		}

		extracted.Merge(vars)
	}

	for _, entry := range entries {
		e.cache.Add(entry)
	}

	e.replayed = true
	added := e.merge(extracted)

	o.logger.TraceContext(ctx, "cache replayed",
		slog.Int("entries", len(entries)),
		slog.Int("extracted", extracted.Len()),
		slog.Int("added", added.Len()),
	)

	return extracted, nil
}

// Replayed reports whether a cache snapshot has been replayed into e.
func (e *Env) Replayed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.replayed
}

// Cached reports whether the cache of e holds an entry for path.
func (e *Env) Cached(path string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.cache.Has(path)
}

// Cache records entry in the cache of e.
func (e *Env) Cache(entry CacheEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache.Add(entry)
}

// CacheEntries returns a copy of the cache of e.
func (e *Env) CacheEntries() []CacheEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.cache.Entries()
}
