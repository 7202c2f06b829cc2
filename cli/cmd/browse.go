package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/denv/cli/cmd/browse"
	"github.com/ardnew/denv/log"
)

// Browse interactively filters the loaded variables and prints the chosen
// one as KEY=VALUE.
type Browse struct {
	All bool `help:"Browse the entire environment instead of only the variables loaded from files." short:"a"`
}

// Run executes the browse command. The browser is drawn on stderr so the
// chosen pair may be captured from stdout.
func (b *Browse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	loaded, err := load(ctx)
	if err != nil {
		return err
	}

	vars := loaded.Output.Extracted
	if b.All {
		vars = loaded.Env.Vars()
	}

	item, ok, err := browse.Run(ctx, vars, log.Default(), tea.WithOutput(os.Stderr))
	if err != nil {
		return ErrBrowse.Wrap(err)
	}

	if !ok {
		return nil
	}

	_, err = fmt.Fprintln(stdout(ctx), item)

	return err
}
