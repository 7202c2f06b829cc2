package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/denv/dotenv"
	"github.com/ardnew/denv/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads configuration
// files in dotenv format.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config")
//
// Each assignment sets the flag it names. A flag "--log-level" may be
// written as log-level, log_level, or LOG_LEVEL. Values of repeatable flags
// are separated by commas, and booleans are true or false:
//
//	LOG_LEVEL=debug
//	LOG_PRETTY=false
//	PATH=.env,.env.local
//
// The file is parsed in isolation: references to other keys resolve only
// against keys assigned earlier in the same file, never against the process
// environment.
//
// Command-line flags override config file values.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		vars, err := dotenv.ParseReader(ctx, r, nil)
		if err != nil {
			log.WarnContext(ctx, "unable to read configuration",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		return config(vars.Map()), nil
	}
}

// config implements [kong.Resolver] for dotenv configuration files.
type config map[string]string

// Validate implements [kong.Resolver]. Keys that name no flag are logged
// and otherwise ignored.
func (r config) Validate(app *kong.Application) error {
	known := make(map[string]bool)

	for _, group := range app.AllFlags(false) {
		for _, flag := range group {
			for _, name := range flagKeys(flag.Name) {
				known[name] = true
			}
		}
	}

	for key := range r {
		if !known[key] {
			log.Warn("unknown configuration key", slog.String("key", key))
		}
	}

	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, key := range flagKeys(flag.Name) {
		if value, ok := r[key]; ok {
			return value, nil
		}
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flagKeys returns the configuration keys that may set the flag named name,
// in order of precedence.
func flagKeys(name string) []string {
	snake := strings.ReplaceAll(name, "-", "_")

	return []string{name, snake, strings.ToUpper(snake)}
}
