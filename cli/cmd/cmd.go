package cmd

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/denv/dotenv"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer that command output is printed to.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// kongVar returns the kong variable named id.
func kongVar(ctx context.Context, id string) (string, bool) {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return "", false
	}

	val, ok := ktx.Model.Vars()[id]

	return val, ok
}

// Loaded is the environment shared by all commands of a single run.
type Loaded struct {
	Env    *dotenv.Env
	Output dotenv.Output
}

// Loader loads the environment. Commands call it at most once per run; the
// CLI wraps it with [sync.OnceValues].
type Loader func() (Loaded, error)

type loaderKey struct{}

// WithLoader returns a new context.Context containing the given [Loader].
func WithLoader(ctx context.Context, load Loader) context.Context {
	return context.WithValue(ctx, loaderKey{}, load)
}

// load invokes the [Loader] stored in ctx by [WithLoader].
func load(ctx context.Context) (Loaded, error) {
	fn, ok := ctx.Value(loaderKey{}).(Loader)
	if !ok || fn == nil {
		return Loaded{}, ErrNoLoader
	}

	return fn()
}
