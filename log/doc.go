// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is configured at creation time using functional options and
// logs [slog.Attr] values only:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
//	logger.Info("loaded env", slog.String("path", ".env"))
//
// # Levels
//
// In addition to the [log/slog] levels, [LevelTrace] sits below
// [LevelDebug] for very chatty diagnostics. Messages below the configured
// level are discarded.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON] are supported. With
// [WithPretty] enabled, text output is rendered by
// [github.com/lmittmann/tint] and JSON output is indented and colorized.
// Colors are disabled automatically when the output is not a terminal.
//
// # Package-Level Logger
//
// The package-level functions ([Info], [WarnContext], and friends) write to
// a default [Logger] on [os.Stderr], reconfigured with [Config].
// Context-unaware functions and methods use [DefaultContextProvider].
//
// The zero [Logger] discards everything.
package log
