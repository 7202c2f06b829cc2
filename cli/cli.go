package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/denv/cli/cmd"
	"github.com/ardnew/denv/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// baseStore is the base name of the cache store file.
const baseStore = "cache.yaml"

// CLI is the top-level command-line interface for denv.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`
	Load  loadConfig  `embed:"" group:"load"`

	Fmt    cmd.Fmt    `cmd:"" default:"withargs" help:"Print loaded variables (default)."`
	Get    cmd.Get    `cmd:""                    help:"Print the values of variables."`
	Eval   cmd.Eval   `cmd:""                    help:"Evaluate an expression against the environment."`
	Exec   cmd.Exec   `cmd:""                    help:"Run a command with the environment."`
	Browse cmd.Browse `cmd:""                    help:"Interactively browse variables."`
	Cache  cmd.Cache  `cmd:""                    help:"Inspect or clear the cache store."`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file."`
}

// Run executes the denv CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.StoreIdentifier:  pkg.CachePath(baseStore),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Load.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Apply logger flags before kong reports any parse error.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), cli.Load.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration, including flags without a
	// TextUnmarshaler and values read from configuration files.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithLoader(ctx, cli.Load.loader(ctx, vars[cmd.StoreIdentifier]))

	return ktx.Run(ctx, &cli)
}
