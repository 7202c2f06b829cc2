// Package cli contains the command line interface for denv.
//
// # Usage
//
// Every command operates on the environment produced by loading the
// selected dotenv files into the process environment:
//
//	denv                          # print variables loaded from ./.env
//	denv -p .env -p .env.local json
//	denv get DATABASE_URL
//	denv eval 'get("PORT", "8080")'
//	denv exec -- ./server --verbose
//	denv browse
//
// # Loading Options
//
//   - --dir, -d: Directory relative paths are resolved against
//   - --path, -p: Dotenv file to load; repeat to load several in order
//   - --encoding, -e: Text encoding of the files (utf-8, latin1, utf16le, ...)
//   - --cache: Replay and update the cache store instead of re-reading files
//   - --debug: Log each loaded file
//   - --override-env: Start from an empty environment instead of the
//     process environment
//
// # Configuration Files
//
// Flag defaults are read from two files in the user configuration directory
// (see [pkg.ConfigDir]): config.json, a JSON object keyed by flag name, and
// config, a dotenv file whose keys name flags in any of the forms
// log-level, log_level, or LOG_LEVEL. Run "denv init" to write the latter
// from the current flag values. Command-line flags override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, none, ...)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o denv .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/denv/pprof)
package cli
