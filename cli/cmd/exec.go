package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"github.com/ardnew/denv/dotenv"
	"github.com/ardnew/denv/log"
)

// Exec runs a command with the loaded environment.
type Exec struct {
	Command []string `arg:"" help:"Command and arguments to run." name:"command" passthrough:""`
}

// Run executes the exec command. The exit status of the child process
// becomes the exit status of denv.
func (e *Exec) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	loaded, err := load(ctx)
	if err != nil {
		return err
	}

	c, err := e.command(ctx, loaded.Env)
	if err != nil {
		return err
	}

	c.Stdin = os.Stdin
	c.Stdout = stdout(ctx)
	c.Stderr = os.Stderr

	log.DebugContext(ctx, "exec",
		slog.String("path", c.Path),
		slog.Any("args", c.Args[1:]),
		slog.Int("env", len(c.Env)),
	)

	err = c.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ktx := kongContextFrom(ctx); ktx != nil && ktx.Exit != nil {
			ktx.Exit(exitErr.ExitCode())

			return nil
		}
	}

	if err != nil {
		return ErrExec.Wrap(err).With(slog.String("command", e.Command[0]))
	}

	return nil
}

// command builds the child process for e with the environment of env.
func (e *Exec) command(ctx context.Context, env *dotenv.Env) (*exec.Cmd, error) {
	if len(e.Command) == 0 {
		return nil, ErrExec.With(slog.String("reason", "no command given"))
	}

	c := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
	c.Env = env.Environ()

	if c.Err != nil {
		return nil, ErrExec.Wrap(c.Err).With(slog.String("command", e.Command[0]))
	}

	return c, nil
}
