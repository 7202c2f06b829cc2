package dotenv

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/denv/log"
)

// Option configures parsing and interpolation behavior.
type Option func(*options)

type options struct {
	maxDepth int
	logger   log.Logger
}

// WithMaxDepth sets the maximum nesting depth of recursive interpolation.
//
// A depth less than 1 selects the default bound, which is the number of keys
// visible to the parse (ambient plus extracted so far). No acyclic chain of
// references can be longer than that, so the default only ever cuts cycles.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// ParseReader reads all of r and parses it with [ParseString].
func ParseReader(
	ctx context.Context,
	r io.Reader,
	ambient Lookuper,
	opts ...Option,
) (*Vars, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return ParseString(ctx, string(data), ambient, opts...), nil
}

// ParseString extracts the KEY=VALUE assignments of src.
//
// Keys already defined in ambient are skipped, so the returned mapping never
// contains them. Values are unquoted and interpolated against ambient first,
// then against the assignments extracted earlier in src. Lines that are not
// assignments, including blank lines and comments, are ignored.
//
// ParseString never writes to ambient; see [Env.Parse] for the variant that
// merges its result.
func ParseString(
	ctx context.Context,
	src string,
	ambient Lookuper,
	opts ...Option,
) *Vars {
	o := makeOptions(opts...)

	if ambient == nil {
		ambient = NewVars()
	}

	extracted := NewVars()

	r := resolver{
		ctx:      ctx,
		chain:    chain{ambient, extracted},
		maxDepth: o.maxDepth,
		logger:   o.logger,
	}

	rejected := 0

	for line := range splitLines(src) {
		key, raw, ok := matchLine(line)
		if !ok {
			continue
		}

		if _, exists := ambient.Lookup(key); exists {
			rejected++

			continue
		}

		extracted.Set(key, r.resolve(unquote(raw)))
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(src)),
		slog.Int("extracted", extracted.Len()),
		slog.Int("rejected", rejected),
	)

	return extracted
}

// splitLines returns an iterator over the lines of s. Lines are terminated
// by "\r\n", "\n", or "\r".
func splitLines(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for len(s) > 0 {
			i := strings.IndexAny(s, "\r\n")
			if i < 0 {
				yield(s)

				return
			}

			if !yield(s[:i]) {
				return
			}

			if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
				i++
			}

			s = s[i+1:]
		}
	}
}

// unquote strips one pair of matching quotes from a raw value.
// Double-quoted values also have each literal `\n` expanded to a newline.
func unquote(raw string) string {
	n := len(raw)
	if n < 2 {
		return raw
	}

	switch {
	case raw[0] == '"' && raw[n-1] == '"':
		return strings.ReplaceAll(raw[1:n-1], `\n`, "\n")

	case raw[0] == '\'' && raw[n-1] == '\'':
		return raw[1 : n-1]

	default:
		return raw
	}
}

// matchLine recognizes an assignment of the form
//
//	[space] KEY [space] = [space] [VALUE] [space]
//
// where KEY is one or more ASCII letters, digits, '_', '.', or '-'.
// The returned value has surrounding space removed.
func matchLine(line string) (key, value string, ok bool) {
	s := scanner{input: line}

	s.skipSpace()

	start := s.pos
	for !s.eof() && isKeyByte(s.input[s.pos]) {
		s.pos++
	}

	if s.pos == start {
		return "", "", false
	}

	key = s.input[start:s.pos]

	s.skipSpace()

	if !s.expect('=') {
		return "", "", false
	}

	s.skipSpace()

	return key, strings.TrimRightFunc(s.rest(), isSpace), true
}

// scanner walks a single line of input.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) eof() bool { return s.pos >= len(s.input) }

func (s *scanner) rest() string { return s.input[s.pos:] }

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.input[s.pos:])

	return r
}

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	_, size := utf8.DecodeRuneInString(s.input[s.pos:])

	s.pos += size
}

func (s *scanner) expect(r rune) bool {
	if s.peek() != r {
		return false
	}

	s.advance()

	return true
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.advance()
	}
}

func isKeyByte(c byte) bool {
	return isNameByte(c) || c == '.' || c == '-'
}

func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

// isSpace reports whether r is white space, including the byte order mark.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
