package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/denv/log"
)

// Eval evaluates an expression against the loaded environment.
type Eval struct {
	Expr []string `arg:"" help:"Expression to evaluate; arguments are joined with spaces." name:"expr"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	loaded, err := load(ctx)
	if err != nil {
		return err
	}

	result, err := e.evaluate(ctx, loaded)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout(ctx), formatResult(result))

	return err
}

func (e *Eval) evaluate(ctx context.Context, loaded Loaded) (any, error) {
	source := strings.Join(e.Expr, " ")
	env := exprEnv(loaded)

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", source))
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("source", source))
	}

	log.TraceContext(ctx, "evaluated expression",
		slog.String("source", source),
		slog.String("type", fmt.Sprintf("%T", result)),
	)

	return result, nil
}

// formatResult renders an expression result. Collections are rendered as
// JSON, everything else with its default format.
func formatResult(v any) string {
	switch v := v.(type) {
	case nil:
		return ""

	case string:
		return v

	case []any, map[string]any, map[string]string, []string:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)

	default:
		return fmt.Sprint(v)
	}
}
