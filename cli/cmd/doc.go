// Package cmd implements the denv subcommands.
//
// Every command operates on the environment produced by a single load of
// the dotenv files selected by the global flags. The CLI stores a [Loader]
// in the command context with [WithLoader]; commands that need the
// environment invoke it, and commands that do not (init, cache) never touch
// the files.
package cmd

var (
	// ConfigIdentifier is the kong variable identifier containing the path to
	// the dotenv configuration file.
	ConfigIdentifier = "config"

	// StoreIdentifier is the kong variable identifier containing the path to
	// the cache store file.
	StoreIdentifier = "store"
)
