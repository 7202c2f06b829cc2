package dotenv

import (
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
)

// CacheEntry holds the parse result of one file.
type CacheEntry struct {
	// Path is the file the contents were parsed from.
	Path string `json:"path" yaml:"path"`
	// Contents is the extracted mapping serialized as a JSON object whose
	// members appear in the order the keys were parsed.
	Contents string `json:"contents" yaml:"contents"`
	// ModTime is the modification time of the file in Unix nanoseconds.
	ModTime int64 `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
	// Size is the size of the file in bytes.
	Size int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// NewCacheEntry serializes the pairs parsed from path.
func NewCacheEntry(path string, vars *Vars) (CacheEntry, error) {
	data, err := json.Marshal(vars)
	if err != nil {
		return CacheEntry{}, ErrEncodeCache.Wrap(err).
			With(slog.String("path", path))
	}

	return CacheEntry{Path: path, Contents: string(data)}, nil
}

// Stamp records the size and modification time of info in c.
func (c *CacheEntry) Stamp(info fs.FileInfo) {
	c.ModTime = info.ModTime().UnixNano()
	c.Size = info.Size()
}

// Stale reports whether the file at c.Path differs in size or modification
// time from the stamp recorded in c. An entry without a stamp, or whose file
// cannot be stat'ed, is stale.
func (c CacheEntry) Stale() bool {
	if c.ModTime == 0 {
		return true
	}

	info, err := os.Stat(c.Path)
	if err != nil {
		return true
	}

	return info.ModTime().UnixNano() != c.ModTime || info.Size() != c.Size
}

// Decode deserializes the contents of c.
func (c CacheEntry) Decode() (*Vars, error) {
	vars := NewVars()

	if err := json.Unmarshal([]byte(c.Contents), vars); err != nil {
		return nil, ErrDecodeCache.Wrap(err).
			With(slog.String("path", c.Path))
	}

	return vars, nil
}

// Cache is an ordered list of cache entries with at most one entry per path.
type Cache struct {
	entries []CacheEntry
}

// Has reports whether c holds an entry for path.
func (c *Cache) Has(path string) bool {
	return c.index(path) >= 0
}

// Add appends entry, or replaces the entry already held for its path.
func (c *Cache) Add(entry CacheEntry) {
	if i := c.index(entry.Path); i >= 0 {
		c.entries[i] = entry

		return
	}

	c.entries = append(c.entries, entry)
}

// Entries returns a copy of the entries in insertion order.
func (c *Cache) Entries() []CacheEntry {
	return slices.Clone(c.entries)
}

// Len returns the number of entries.
func (c *Cache) Len() int { return len(c.entries) }

func (c *Cache) index(path string) int {
	return slices.IndexFunc(c.entries, func(e CacheEntry) bool {
		return e.Path == path
	})
}

// cacheVersion identifies the layout written by [WriteCache].
const cacheVersion = 1

// cacheFile is the persisted form of a cache.
type cacheFile struct {
	Version int          `yaml:"version"`
	Entries []CacheEntry `yaml:"entries"`
}

// WriteCache writes entries to w as a YAML document.
func WriteCache(ctx context.Context, w io.Writer, entries []CacheEntry) error {
	data, err := yaml.MarshalContext(ctx, cacheFile{
		Version: cacheVersion,
		Entries: entries,
	})
	if err != nil {
		return ErrCacheStore.Wrap(err).
			With(slog.String("op", "encode"))
	}

	if _, err := w.Write(data); err != nil {
		return ErrCacheStore.Wrap(err).
			With(slog.String("op", "write"))
	}

	return nil
}

// ReadCache reads the entries written by [WriteCache]. An empty input yields
// no entries. Entry contents are not decoded; see [CacheEntry.Decode].
func ReadCache(ctx context.Context, r io.Reader) ([]CacheEntry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrCacheStore.Wrap(err).
			With(slog.String("op", "read"))
	}

	if len(data) == 0 {
		return nil, nil
	}

	var file cacheFile
	if err := yaml.UnmarshalContext(ctx, data, &file); err != nil {
		return nil, ErrCacheStore.Wrap(err).
			With(slog.String("op", "decode"))
	}

	if file.Version != cacheVersion {
		return nil, ErrCacheStore.
			With(slog.String("op", "decode"), slog.Int("version", file.Version))
	}

	return file.Entries, nil
}
