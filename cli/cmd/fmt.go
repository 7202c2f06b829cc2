package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/ardnew/denv/dotenv"
	"github.com/ardnew/denv/log"
)

// Fmt prints the loaded variables in the chosen format.
type Fmt struct {
	Format string `arg:"" default:"env" enum:"env,compat,json,yaml,toml,shell" help:"Output format (${enum})." optional:""`
	All    bool   `help:"Print the entire environment instead of only the variables loaded from files." short:"a"`
	Indent int    `default:"2" help:"Indent width for JSON and YAML output." short:"i"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	loaded, err := load(ctx)
	if err != nil {
		return err
	}

	vars := loaded.Output.Extracted
	if f.All {
		vars = loaded.Env.Vars()
	}

	return f.write(ctx, stdout(ctx), vars)
}

func (f *Fmt) write(ctx context.Context, w io.Writer, vars *dotenv.Vars) error {
	format, ok := formats[f.Format]
	if !ok {
		return ErrUnknownFormat.With(slog.String("format", f.Format))
	}

	if vars == nil {
		vars = dotenv.NewVars()
	}

	data, err := format(ctx, vars, f.Indent)
	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", f.Format))
	}

	_, err = w.Write(data)

	return err
}

type formatFunc func(ctx context.Context, vars *dotenv.Vars, indent int) ([]byte, error)

//nolint:gochecknoglobals
var formats = map[string]formatFunc{
	"env":    formatEnv,
	"compat": formatCompat,
	"json":   formatJSON,
	"yaml":   formatYAML,
	"toml":   formatTOML,
	"shell":  formatShell,
}

func formatEnv(ctx context.Context, vars *dotenv.Vars, _ int) ([]byte, error) {
	text, skipped := dotenv.Marshal(vars)

	for _, key := range skipped {
		log.WarnContext(ctx, "skip variable",
			slog.String("key", key),
			slog.String("reason", "not a valid dotenv key"),
		)
	}

	return []byte(text), nil
}

// formatCompat writes one double-quoted assignment per line in the escaping
// read by other dotenv implementations.
func formatCompat(_ context.Context, vars *dotenv.Vars, _ int) ([]byte, error) {
	var buf bytes.Buffer

	for key, val := range vars.All() {
		line, err := godotenv.Marshal(map[string]string{key: val})
		if err != nil {
			return nil, err
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

func formatJSON(_ context.Context, vars *dotenv.Vars, indent int) ([]byte, error) {
	data, err := vars.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	if indent > 0 {
		err = json.Indent(&buf, data, "", strings.Repeat(" ", indent))
	} else {
		err = json.Compact(&buf, data)
	}

	if err != nil {
		return nil, err
	}

	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func formatYAML(ctx context.Context, vars *dotenv.Vars, indent int) ([]byte, error) {
	doc := make(yaml.MapSlice, 0, vars.Len())
	for key, val := range vars.All() {
		doc = append(doc, yaml.MapItem{Key: key, Value: val})
	}

	return yaml.MarshalContext(ctx, doc,
		yaml.Indent(max(indent, 1)),
		yaml.UseLiteralStyleIfMultiline(true),
	)
}

func formatTOML(_ context.Context, vars *dotenv.Vars, _ int) ([]byte, error) {
	var buf bytes.Buffer

	if err := toml.NewEncoder(&buf).Encode(vars.Map()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func formatShell(ctx context.Context, vars *dotenv.Vars, _ int) ([]byte, error) {
	var buf bytes.Buffer

	for key, val := range vars.All() {
		if !isShellName(key) {
			log.WarnContext(ctx, "skip variable",
				slog.String("key", key),
				slog.String("reason", "not a valid shell identifier"),
			)

			continue
		}

		fmt.Fprintf(&buf, "export %s=%s\n", key, shellQuote(val))
	}

	return buf.Bytes(), nil
}

// isShellName reports whether s is a POSIX shell variable name.
func isShellName(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}

	for i := range len(s) {
		c := s[i]
		if c != '_' && (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') &&
			(c < '0' || c > '9') {
			return false
		}
	}

	return true
}

// shellQuote wraps s in single quotes, splicing any embedded single quote.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
