package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/denv/dotenv"
)

// Get prints the values of the named variables, one per line.
type Get struct {
	Keys []string `arg:"" help:"Names of the variables to print." name:"key"`
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	loaded, err := load(ctx)
	if err != nil {
		return err
	}

	values, err := g.lookup(loaded.Env)
	if err != nil {
		return err
	}

	w := stdout(ctx)
	for _, val := range values {
		if _, err := fmt.Fprintln(w, val); err != nil {
			return err
		}
	}

	return nil
}

// lookup returns the value of each key in order. Nothing is returned unless
// every key is defined.
func (g *Get) lookup(env dotenv.Lookuper) ([]string, error) {
	var (
		values  = make([]string, 0, len(g.Keys))
		missing []string
	)

	for _, key := range g.Keys {
		val, ok := env.Lookup(key)
		if !ok {
			missing = append(missing, key)

			continue
		}

		values = append(values, val)
	}

	if len(missing) > 0 {
		return nil, ErrKeyNotFound.With(slog.Any("keys", missing))
	}

	return values, nil
}
