package dotenv

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/text/encoding"

	"github.com/ardnew/denv/log"
)

// DefaultPath is the file loaded when no paths are given.
const DefaultPath = ".env"

// ErrNotRegular is the cause recorded for paths that exist but are not
// regular files.
var ErrNotRegular = NewError("not a regular file")

// Output is the result of [Load].
type Output struct {
	// Parsed is a snapshot of the Env after the load.
	Parsed map[string]string
	// Extracted holds the pairs parsed from all files, later files
	// overriding earlier ones.
	Extracted *Vars
	// CachedEnvFiles is a snapshot of the cache of the Env after the load.
	CachedEnvFiles []CacheEntry
	// Failures lists the files that exist but could not be loaded.
	Failures []error
}

// LoadOption configures [Load].
type LoadOption func(*loadConfig)

type loadConfig struct {
	dir      string
	paths    []string
	encoding string
	cache    bool
	debug    bool
	logger   log.Logger
	parse    []Option
}

// WithDir sets the directory that relative paths are resolved against.
// The default is the working directory.
func WithDir(dir string) LoadOption {
	return func(c *loadConfig) {
		if dir != "" {
			c.dir = dir
		}
	}
}

// WithPaths sets the files to load, in order. The default is [DefaultPath].
func WithPaths(paths ...string) LoadOption {
	return func(c *loadConfig) {
		if len(paths) > 0 {
			c.paths = slices.Clone(paths)
		}
	}
}

// WithEncoding sets the text encoding of the files.
// The default is [DefaultEncoding].
func WithEncoding(name string) LoadOption {
	return func(c *loadConfig) {
		if name != "" {
			c.encoding = name
		}
	}
}

// WithCache enables the parse cache of the Env: files already cached are not
// read again, and files read are added to the cache.
func WithCache(enable bool) LoadOption {
	return func(c *loadConfig) {
		c.cache = enable
	}
}

// WithDebug enables an INFO record for each file loaded.
func WithDebug(enable bool) LoadOption {
	return func(c *loadConfig) {
		c.debug = enable
	}
}

// WithLoadLogger sets the logger that receives load diagnostics.
// The logger is also passed to the parser unless [WithParseOptions]
// overrides it.
func WithLoadLogger(logger log.Logger) LoadOption {
	return func(c *loadConfig) {
		c.logger = logger
	}
}

// WithParseOptions sets options forwarded to [ParseString].
func WithParseOptions(opts ...Option) LoadOption {
	return func(c *loadConfig) {
		c.parse = append(c.parse, opts...)
	}
}

func makeLoadConfig(opts ...LoadOption) loadConfig {
	c := loadConfig{
		paths:    []string{DefaultPath},
		encoding: DefaultEncoding,
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.dir == "" {
		dir, err := os.Getwd()
		if err != nil {
			dir = "."
		}

		c.dir = dir
	}

	return c
}

// Load parses each configured file and merges the result into env.
//
// Files are parsed against env as it was before the call, and their pairs
// are accumulated in order so that a later file overrides an earlier one.
// The accumulated pairs are merged into env after the last file, which never
// replaces a key env already defines.
//
// A file that does not exist is skipped silently. A file that exists but
// cannot be read or decoded is logged at WARN level, recorded in
// [Output.Failures], and skipped; the remaining files are still loaded.
//
// The returned error is non-nil only if ctx is done before all files are
// processed, in which case nothing is merged into env.
func Load(ctx context.Context, env *Env, opts ...LoadOption) (Output, error) {
	cfg := makeLoadConfig(opts...)
	logger := cfg.logger

	enc, encErr := LookupEncoding(cfg.encoding)

	parseOpts := append([]Option{WithLogger(logger)}, cfg.parse...)
	extracted := NewVars()

	var out Output

	for _, name := range cfg.paths {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}

		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.dir, path)
		}

		if cfg.cache && env.Cached(path) {
			logger.TraceContext(ctx, "skip cached env",
				slog.String("path", path),
			)

			continue
		}

		text, info, err := readText(path, enc, encErr)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.TraceContext(ctx, "skip missing env",
					slog.String("path", path),
				)

				continue
			}

			fail := ErrLoadFile.Wrap(err).With(slog.String("path", path))

			logger.WarnContext(ctx, "unable to load", slog.Any("error", fail))

			out.Failures = append(out.Failures, fail)

			continue
		}

		parsed := ParseString(ctx, text, env, parseOpts...)

		if cfg.cache {
			entry, err := NewCacheEntry(path, parsed)
			if err != nil {
				logger.WarnContext(ctx, "unable to cache", slog.Any("error", err))
			} else {
				entry.Stamp(info)
				env.Cache(entry)
			}
		}

		extracted.Merge(parsed)

		if cfg.debug {
			logger.InfoContext(ctx, "loaded env",
				slog.String("path", path),
				slog.Int("extracted", parsed.Len()),
			)
		}
	}

	added := env.Merge(extracted)

	logger.DebugContext(ctx, "load complete",
		slog.Int("files", len(cfg.paths)),
		slog.Int("extracted", extracted.Len()),
		slog.Int("added", added.Len()),
		slog.Int("failures", len(out.Failures)),
	)

	out.Parsed = env.Snapshot()
	out.Extracted = extracted
	out.CachedEnvFiles = env.CacheEntries()

	return out, nil
}

// readText returns the decoded contents and file info of the regular file
// at path. A missing file yields an error matching [fs.ErrNotExist]; encErr,
// if set, is reported only for files that exist.
func readText(
	path string,
	enc encoding.Encoding,
	encErr error,
) (string, fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}

	if !info.Mode().IsRegular() {
		return "", nil, ErrNotRegular.With(slog.String("mode", info.Mode().String()))
	}

	if encErr != nil {
		return "", nil, encErr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	text, err := decodeText(data, enc)

	return text, info, err
}
