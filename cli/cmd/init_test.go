package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/denv/dotenv"
)

// initCLI mirrors the shape of the global flags written by init.
type initCLI struct {
	LogLevel string   `default:"warn" name:"log-level"`
	Pretty   bool     `default:"true" name:"log-pretty"`
	Path     []string `name:"path"`
	Encoding string   `name:"encoding"`
	Count    int      `default:"3" name:"count"`
	Secret   string   `default:"x" hidden:"" name:"secret"`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "denv", "config")

			if tt.exists {
				if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
					t.Fatal(err)
				}

				if err := os.WriteFile(confPath, []byte("OLD=1\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := initContext(t, confPath, "--path=.env", "--path=.env.local")

			err := (&Init{Force: tt.force}).Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				if !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want ErrWriteConfig", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			// The generated file is itself a dotenv file.
			got := dotenv.ParseString(t.Context(), string(content), nil).Map()

			want := map[string]string{
				"LOG_LEVEL":  "warn",
				"LOG_PRETTY": "true",
				"PATH":       ".env,.env.local",
				"COUNT":      "3",
			}

			for k, v := range want {
				if got[k] != v {
					t.Errorf("config[%s] = %q, want %q", k, got[k], v)
				}
			}

			for _, k := range []string{"OLD", "ENCODING", "SECRET", "HELP"} {
				if _, ok := got[k]; ok {
					t.Errorf("config should not define %s", k)
				}
			}
		})
	}
}

func TestConfigKey(t *testing.T) {
	tests := map[string]string{
		"log-level":    "LOG_LEVEL",
		"override-env": "OVERRIDE_ENV",
		"dir":          "DIR",
	}

	for in, want := range tests {
		if got := configKey(in); got != want {
			t.Errorf("configKey(%q) = %q, want %q", in, got, want)
		}
	}
}
