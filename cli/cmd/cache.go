package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/denv/dotenv"
	"github.com/ardnew/denv/log"
	"github.com/ardnew/denv/pkg"
)

// Cache inspects and manages the cache store.
type Cache struct {
	Show  CacheShow  `cmd:"" default:"1" help:"Print the cached env files."`
	Clear CacheClear `cmd:""             help:"Delete the cache store."`
}

// CacheShow prints every entry of the cache store.
type CacheShow struct{}

// Run executes the cache show command.
func (CacheShow) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	path, err := storePath(ctx)
	if err != nil {
		return err
	}

	entries, err := ReadStore(ctx, path)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	for i, entry := range entries {
		vars, err := entry.Decode()
		if err != nil {
			return ErrCacheStore.Wrap(err).With(slog.String("store", path))
		}

		text, _ := dotenv.Marshal(vars)

		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "# %s\n", entry.Path)

		fmt.Fprint(w, text)
	}

	return nil
}

// CacheClear deletes the cache store.
type CacheClear struct{}

// Run executes the cache clear command.
func (CacheClear) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	path, err := storePath(ctx)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.DebugContext(ctx, "cache store absent", slog.String("store", path))

		return nil
	}

	if err != nil {
		return ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}

	log.DebugContext(ctx, "cache store cleared", slog.String("store", path))

	return nil
}

func storePath(ctx context.Context) (string, error) {
	path, ok := kongVar(ctx, StoreIdentifier)
	if !ok || path == "" {
		return "", ErrCacheStore.With(slog.String("reason", "store path undefined"))
	}

	return path, nil
}

// ReadStore returns the cache entries persisted at path. A missing store
// holds no entries.
func ReadStore(ctx context.Context, path string) ([]dotenv.CacheEntry, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}
	defer file.Close()

	entries, err := dotenv.ReadCache(ctx, file)
	if err != nil {
		return nil, ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}

	return entries, nil
}

// WriteStore replaces the cache store at path with entries. The store is
// written to a temporary file first and renamed into place.
func WriteStore(ctx context.Context, path string, entries []dotenv.CacheEntry) (err error) {
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, pkg.DirMode); err != nil {
		return ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := dotenv.WriteCache(ctx, tmp, entries); err != nil {
		_ = tmp.Close()

		return ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}

	if err := tmp.Close(); err != nil {
		return ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return ErrCacheStore.Wrap(err).With(slog.String("store", path))
	}

	return nil
}
