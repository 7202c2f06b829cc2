package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/denv/cli/cmd"
	"github.com/ardnew/denv/dotenv"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func testLoadConfig(dir string, paths ...string) loadConfig {
	if len(paths) == 0 {
		paths = []string{dotenv.DefaultPath}
	}

	return loadConfig{
		Dir:         dir,
		Path:        paths,
		Encoding:    dotenv.DefaultEncoding,
		OverrideEnv: true,
	}
}

func TestLoaderOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "A=1\nB=$A$A\n")

	cfg := testLoadConfig(dir)
	load := cfg.loader(t.Context(), filepath.Join(dir, "store.yaml"))

	first, err := load()
	if err != nil {
		t.Fatal(err)
	}

	second, err := load()
	if err != nil {
		t.Fatal(err)
	}

	if first.Env != second.Env {
		t.Error("loader should load the environment once")
	}

	if got := first.Output.Extracted.Get("B"); got != "11" {
		t.Errorf("B = %q, want %q", got, "11")
	}

	if _, err := os.Stat(filepath.Join(dir, "store.yaml")); !os.IsNotExist(err) {
		t.Error("store written without caching enabled")
	}
}

func TestLoaderPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "A=base\nB=base\n")
	writeFile(t, filepath.Join(dir, ".env.local"), "B=local\n")

	cfg := testLoadConfig(dir, ".env", ".env.local", ".env.missing")

	loaded, err := cfg.loader(t.Context(), "")()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"A": "base", "B": "local"}
	for k, v := range want {
		if got, _ := loaded.Env.Lookup(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}

	if n := len(loaded.Output.Failures); n != 0 {
		t.Errorf("Failures = %d, want 0", n)
	}
}

func TestLoaderProcessEnv(t *testing.T) {
	t.Setenv("DENV_TEST_VAR", "process")
	t.Setenv("COPY", "")
	os.Unsetenv("COPY")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "DENV_TEST_VAR=file\nCOPY=$DENV_TEST_VAR\n")

	tests := []struct {
		name     string
		override bool
		want     string
	}{
		{name: "process_wins", want: "process"},
		{name: "override_env", override: true, want: "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testLoadConfig(dir)
			cfg.OverrideEnv = tt.override

			loaded, err := cfg.loader(t.Context(), "")()
			if err != nil {
				t.Fatal(err)
			}

			if got, _ := loaded.Env.Lookup("COPY"); got != tt.want {
				t.Errorf("COPY = %q, want %q", got, tt.want)
			}

			if got := os.Getenv("COPY"); got != "process" {
				t.Errorf("exported COPY = %q, want %q", got, "process")
			}
		})
	}
}

func TestLoaderCache(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "cache", "store.yaml")
	envPath := filepath.Join(dir, ".env")

	writeFile(t, envPath, "A=first\n")

	cfg := testLoadConfig(dir)
	cfg.Cache = true

	loaded, err := cfg.loader(t.Context(), store)()
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := loaded.Env.Lookup("A"); got != "first" {
		t.Fatalf("A = %q, want %q", got, "first")
	}

	entries, err := cmd.ReadStore(t.Context(), store)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 || entries[0].Path != envPath {
		t.Fatalf("store entries = %v, want one entry for %s", entries, envPath)
	}

	info, err := os.Stat(envPath)
	if err != nil {
		t.Fatal(err)
	}

	// An unchanged file is not read again: its cached pairs are replayed.
	writeFile(t, envPath, "A=FIRST\n")

	if err := os.Chtimes(envPath, info.ModTime(), info.ModTime()); err != nil {
		t.Fatal(err)
	}

	loaded, err = cfg.loader(t.Context(), store)()
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := loaded.Env.Lookup("A"); got != "first" {
		t.Errorf("A = %q, want cached %q", got, "first")
	}

	if got := loaded.Output.Extracted.Get("A"); got != "first" {
		t.Errorf("Extracted[A] = %q, want replayed %q", got, "first")
	}

	// A changed file is read again and its entry replaced.
	writeFile(t, envPath, "A=second\n")

	loaded, err = cfg.loader(t.Context(), store)()
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := loaded.Env.Lookup("A"); got != "second" {
		t.Errorf("A = %q, want %q", got, "second")
	}

	entries, err = cmd.ReadStore(t.Context(), store)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 || entries[0].Stale() {
		t.Errorf("store entries = %v, want one fresh entry", entries)
	}

	// Without caching the file is read.
	writeFile(t, envPath, "A=third\n")

	cfg.Cache = false

	loaded, err = cfg.loader(t.Context(), store)()
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := loaded.Env.Lookup("A"); got != "third" {
		t.Errorf("A = %q, want %q", got, "third")
	}
}

func TestLoaderCorruptStore(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "store.yaml")

	writeFile(t, store, "version: [\n")
	writeFile(t, filepath.Join(dir, ".env"), "A=1\n")

	cfg := testLoadConfig(dir)
	cfg.Cache = true

	loaded, err := cfg.loader(t.Context(), store)()
	if err != nil {
		t.Fatalf("loader() error = %v, want corrupt store ignored", err)
	}

	if got, _ := loaded.Env.Lookup("A"); got != "1" {
		t.Errorf("A = %q, want %q", got, "1")
	}

	entries, err := cmd.ReadStore(t.Context(), store)
	if err != nil || len(entries) != 1 {
		t.Errorf("store not rewritten: (%v, %v)", entries, err)
	}
}
