package browse

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/denv/dotenv"
	"github.com/ardnew/denv/log"
)

// Item is a single variable shown by the browser.
type Item struct {
	Key   string
	Value string
}

// String returns the item formatted as "KEY=VALUE".
func (i Item) String() string { return i.Key + "=" + i.Value }

// Run displays the pairs of vars in an interactive list with a fuzzy filter.
//
// It returns the item chosen with Enter, or false if the user quit with Esc
// or Ctrl+C. The options are passed to [tea.NewProgram]; the program is
// always bound to ctx.
func Run(
	ctx context.Context,
	vars *dotenv.Vars,
	logger log.Logger,
	opts ...tea.ProgramOption,
) (Item, bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := itemsOf(vars)

	logger.TraceContext(ctx, "browse start", slog.Int("items", len(items)))

	if len(items) == 0 {
		return Item{}, false, ErrEmpty
	}

	m := newModel(ctx, items, logger)

	p := tea.NewProgram(m, append(opts, tea.WithContext(ctx))...)

	final, err := p.Run()
	if err != nil {
		return Item{}, false, err
	}

	fm, ok := final.(model)
	if !ok || fm.chosen == nil {
		logger.TraceContext(ctx, "browse cancelled")

		return Item{}, false, nil
	}

	logger.TraceContext(ctx, "browse chosen", slog.String("key", fm.chosen.Key))

	return *fm.chosen, true, nil
}

func itemsOf(vars *dotenv.Vars) []Item {
	if vars == nil {
		return nil
	}

	items := make([]Item, 0, vars.Len())
	for key, val := range vars.All() {
		items = append(items, Item{Key: key, Value: val})
	}

	return items
}
