package cli

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/ardnew/denv/cli/cmd"
	"github.com/ardnew/denv/dotenv"
	"github.com/ardnew/denv/log"
)

// loadConfig holds the flags that select and decode the dotenv files.
type loadConfig struct {
	Dir         string   `default:"."                 help:"Directory relative paths are resolved against." short:"d" type:"path"`
	Path        []string `default:"${loadPath}"       help:"Dotenv file(s) to load, in order."                short:"p"`
	Encoding    string   `default:"${loadEncoding}"   help:"Text encoding of the dotenv files."              short:"e"`
	Cache       bool     `default:"false"             help:"Reuse parse results from the cache store."                  negatable:""`
	Debug       bool     `default:"false"             help:"Log each loaded file."                                      negatable:""`
	OverrideEnv bool     `default:"false"             help:"Ignore the process environment."                            negatable:""`
}

func (*loadConfig) vars() kong.Vars {
	return kong.Vars{
		"loadPath":     dotenv.DefaultPath,
		"loadEncoding": dotenv.DefaultEncoding,
	}
}

func (*loadConfig) group() kong.Group {
	var group kong.Group

	group.Key = "load"
	group.Title = "Loading options"

	return group
}

// options returns the [dotenv.Load] options selected by f.
func (f *loadConfig) options() []dotenv.LoadOption {
	return []dotenv.LoadOption{
		dotenv.WithDir(f.Dir),
		dotenv.WithPaths(f.Path...),
		dotenv.WithEncoding(f.Encoding),
		dotenv.WithCache(f.Cache),
		dotenv.WithDebug(f.Debug),
		dotenv.WithLoadLogger(log.Default()),
	}
}

// environ returns the entries the environment is seeded with.
func (f *loadConfig) environ() []string {
	if f.OverrideEnv {
		return nil
	}

	return os.Environ()
}

// loader returns a [cmd.Loader] that loads the environment once.
//
// Unless the process environment is ignored, the loaded pairs are exported
// to it. With caching enabled the entries in the store are replayed first, so
// files already cached are not read again, and the store is rewritten
// afterward. Cache store failures are logged and never fail the load.
func (f *loadConfig) loader(ctx context.Context, store string) cmd.Loader {
	return sync.OnceValues(func() (cmd.Loaded, error) {
		env := dotenv.NewEnv(f.environ())

		var replayed *dotenv.Vars
		if f.Cache {
			replayed = f.replay(ctx, env, store)
		}

		out, err := dotenv.Load(ctx, env, f.options()...)
		if err != nil {
			return cmd.Loaded{}, err
		}

		if !f.OverrideEnv {
			if err := env.Export(os.LookupEnv, os.Setenv); err != nil {
				return cmd.Loaded{}, err
			}
		}

		if replayed != nil {
			replayed.Merge(out.Extracted)
			out.Extracted = replayed
		}

		if f.Cache {
			if err := cmd.WriteStore(ctx, store, env.CacheEntries()); err != nil {
				log.WarnContext(ctx, "unable to save cache", slog.Any("error", err))
			}
		}

		return cmd.Loaded{Env: env, Output: out}, nil
	})
}

// replay restores the entries of store into env and returns the pairs they
// hold, or nil if the store could not be used. Entries whose file changed
// since it was cached are dropped, so the file is read again.
func (f *loadConfig) replay(
	ctx context.Context,
	env *dotenv.Env,
	store string,
) *dotenv.Vars {
	entries, err := cmd.ReadStore(ctx, store)
	if err != nil {
		log.WarnContext(ctx, "unable to read cache", slog.Any("error", err))

		return nil
	}

	fresh := slices.DeleteFunc(slices.Clone(entries), dotenv.CacheEntry.Stale)
	if n := len(entries) - len(fresh); n > 0 {
		log.DebugContext(ctx, "cache entries stale",
			slog.String("store", store),
			slog.Int("stale", n),
		)
	}

	replayed, err := env.Replay(ctx, fresh, dotenv.WithLogger(log.Default()))
	if err != nil {
		log.WarnContext(ctx, "unable to replay cache", slog.Any("error", err))

		return nil
	}

	log.DebugContext(ctx, "cache replayed",
		slog.String("store", store),
		slog.Int("entries", len(fresh)),
	)

	return replayed
}
