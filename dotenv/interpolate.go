package dotenv

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/denv/log"
)

// chain is a list of namespaces consulted in priority order.
type chain []Lookuper

// Lookup returns the value from the first namespace that defines key.
func (c chain) Lookup(key string) (string, bool) {
	for _, ns := range c {
		if val, ok := ns.Lookup(key); ok {
			return val, true
		}
	}

	return "", false
}

// Len returns the sum of the sizes of all namespaces. Keys defined in more
// than one namespace are counted once per namespace.
func (c chain) Len() int {
	n := 0
	for _, ns := range c {
		n += ns.Len()
	}

	return n
}

// resolver substitutes $KEY and ${KEY} placeholders.
type resolver struct {
	ctx      context.Context
	chain    chain
	maxDepth int
	logger   log.Logger
}

// Interpolate substitutes the placeholders of value using the namespaces of
// ns in priority order. It is the resolver used by [ParseString], exposed
// for values that do not come from a file.
func Interpolate(
	ctx context.Context,
	value string,
	ns []Lookuper,
	opts ...Option,
) string {
	o := makeOptions(opts...)

	r := resolver{
		ctx:      ctx,
		chain:    chain(ns),
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}

	return r.resolve(value)
}

// resolve interpolates a top-level value.
func (r resolver) resolve(value string) string {
	limit := r.maxDepth
	if limit < 1 {
		limit = max(r.chain.Len(), 1)
	}

	s := resolution{
		resolver: r,
		limit:    limit,
		active:   make(map[string]bool),
		memo:     make(map[reference]string),
	}

	return s.interpolate(value, 0)
}

// reference identifies a name substituted at a given nesting depth.
type reference struct {
	name  string
	depth int
}

// resolution holds the state of one top-level [resolver.resolve] call.
//
// Names being resolved are kept in active; a name referenced while it is
// active resolves to the empty string. Substitutions are memoized in memo,
// so every name is expanded at most once per depth.
type resolution struct {
	resolver

	limit  int
	active map[string]bool
	memo   map[reference]string
}

// interpolate scans value for placeholders.
//
// A placeholder is an optional prefix character, '$', an optional '{', an
// optional name of ASCII letters, digits, and '_', and an optional '}'. The
// prefix is any character immediately followed by '$', including another
// '$', and is copied as literal text. When the prefix is a backslash, the
// backslash is dropped and the rest of the placeholder is copied verbatim.
// Otherwise the placeholder is replaced by the named value, itself
// interpolated one level deeper and trimmed of surrounding space. Undefined
// names, missing names, names already being resolved, and names nested
// deeper than the limit all resolve to the empty string.
func (s *resolution) interpolate(value string, depth int) string {
	if strings.IndexByte(value, '$') < 0 {
		return value
	}

	out := make([]byte, 0, len(value))

	for i := 0; i < len(value); {
		at := i

		switch {
		case i+1 < len(value) && value[i+1] == '$':
			at = i + 1
		case value[i] != '$':
			out = append(out, value[i])
			i++

			continue
		}

		end, name := placeholder(value, at)

		if at > i {
			if value[i] == '\\' {
				out = append(out, value[at:end]...)
				i = end

				continue
			}

			out = append(out, value[i])
		}

		out = append(out, s.substitute(name, depth)...)
		i = end
	}

	return string(out)
}

// substitute returns the interpolated, trimmed value of name.
func (s *resolution) substitute(name string, depth int) string {
	if name == "" {
		return ""
	}

	if s.active[name] {
		s.cut(ErrReferenceCycle, name, depth)

		return ""
	}

	if depth >= s.limit {
		s.cut(ErrMaxDepthExceeded, name, depth)

		return ""
	}

	ref := reference{name: name, depth: depth}
	if val, ok := s.memo[ref]; ok {
		return val
	}

	val, _ := s.chain.Lookup(name)

	s.active[name] = true
	val = strings.TrimSpace(s.interpolate(val, depth+1))
	delete(s.active, name)

	s.memo[ref] = val

	return val
}

// cut logs a placeholder that resolved to the empty string because of err.
func (s *resolution) cut(err *Error, name string, depth int) {
	s.logger.DebugContext(s.ctx, "interpolation cut",
		slog.Any("error", err.With(
			slog.String("key", name),
			slog.Int("depth", depth),
			slog.Int("limit", s.limit),
		)),
	)
}

// placeholder returns the end offset and name of the placeholder whose '$'
// is at offset i of s.
func placeholder(s string, i int) (end int, name string) {
	j := i + 1

	if j < len(s) && s[j] == '{' {
		j++
	}

	start := j
	for j < len(s) && isNameByte(s[j]) {
		j++
	}

	name = s[start:j]

	if j < len(s) && s[j] == '}' {
		j++
	}

	return j, name
}
