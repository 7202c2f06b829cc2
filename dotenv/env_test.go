package dotenv

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"testing"
)

func TestNewEnv(t *testing.T) {
	env := NewEnv([]string{
		"PATH=/bin",
		"EMPTY=",
		"EQ=a=b",
		"PATH=/usr/bin",
		"NOEQUALS",
		"=hidden",
	})

	want := map[string]string{"PATH": "/bin", "EMPTY": "", "EQ": "a=b"}
	if got := env.Snapshot(); !maps.Equal(got, want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}

	if got := env.Environ(); !slices.Equal(got, []string{"PATH=/bin", "EMPTY=", "EQ=a=b"}) {
		t.Errorf("Environ() = %q", got)
	}
}

func TestEnv_ZeroValue(t *testing.T) {
	var env Env

	if _, ok := env.Lookup("X"); ok {
		t.Error("zero Env defines X")
	}

	added := env.Merge(VarsOf("X", "1"))
	if added.Get("X") != "1" || env.Len() != 1 {
		t.Errorf("Merge into zero Env: added=%v len=%d", added.Map(), env.Len())
	}
}

func TestEnv_Merge_NeverOverwrites(t *testing.T) {
	env := NewEnv([]string{"A=ambient"})

	added := env.Merge(VarsOf("A", "file", "B", "new"))

	if got, _ := env.Lookup("A"); got != "ambient" {
		t.Errorf("A = %q, want ambient", got)
	}

	if !maps.Equal(added.Map(), map[string]string{"B": "new"}) {
		t.Errorf("added = %v, want only B", added.Map())
	}
}

func TestEnv_Export(t *testing.T) {
	env := NewEnv([]string{"SET=1", "NEW=2"})

	process := map[string]string{"SET": "0"}

	lookup := func(k string) (string, bool) {
		v, ok := process[k]

		return v, ok
	}

	setenv := func(k, v string) error {
		process[k] = v

		return nil
	}

	err := env.Export(lookup, setenv)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !maps.Equal(process, map[string]string{"SET": "0", "NEW": "2"}) {
		t.Errorf("process = %v", process)
	}

	boom := errors.New("boom")

	err = NewEnv([]string{"X=1"}).Export(
		func(string) (string, bool) { return "", false },
		func(string, string) error { return boom },
	)
	if !errors.Is(err, boom) {
		t.Errorf("Export err = %v, want boom", err)
	}
}

func TestEnv_Parse_Merges(t *testing.T) {
	env := NewEnv([]string{"HOST=ambient"})

	got := env.Parse(t.Context(), "HOST=file\nURL=http://$HOST/")

	if got.Get("URL") != "http://ambient/" {
		t.Errorf("URL = %q", got.Get("URL"))
	}

	if v, _ := env.Lookup("URL"); v != "http://ambient/" {
		t.Errorf("env URL = %q", v)
	}

	if v, _ := env.Lookup("HOST"); v != "ambient" {
		t.Errorf("env HOST = %q", v)
	}
}

func mustEntry(t *testing.T, path string, kv ...string) CacheEntry {
	t.Helper()

	entry, err := NewCacheEntry(path, VarsOf(kv...))
	if err != nil {
		t.Fatalf("NewCacheEntry: %v", err)
	}

	return entry
}

func TestEnv_Replay(t *testing.T) {
	env := NewEnv([]string{"A=ambient"})

	entries := []CacheEntry{
		mustEntry(t, "/one/.env", "A", "cached", "B", "1", "C", "first"),
		mustEntry(t, "/two/.env", "C", "second", "D", "2"),
	}

	got, err := env.Replay(t.Context(), entries)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	// Cached pairs are not checked against the env, so A is extracted.
	want := map[string]string{"A": "cached", "B": "1", "C": "second", "D": "2"}
	if !maps.Equal(got.Map(), want) {
		t.Errorf("Replay extracted %v, want %v", got.Map(), want)
	}

	if keys := slices.Collect(got.Keys()); !slices.Equal(keys, []string{"A", "B", "C", "D"}) {
		t.Errorf("keys = %v", keys)
	}

	if v, _ := env.Lookup("A"); v != "ambient" {
		t.Errorf("env A = %q, want ambient", v)
	}

	if v, _ := env.Lookup("C"); v != "second" {
		t.Errorf("env C = %q, want second", v)
	}

	if !env.Replayed() {
		t.Error("Replayed() = false after replay")
	}

	if !env.Cached("/one/.env") || !env.Cached("/two/.env") {
		t.Errorf("cache = %v", env.CacheEntries())
	}
}

func TestEnv_Replay_OncePerEnv(t *testing.T) {
	env := NewEnv(nil)

	if _, err := env.Replay(t.Context(), []CacheEntry{mustEntry(t, "a", "X", "1")}); err != nil {
		t.Fatalf("first Replay: %v", err)
	}

	got, err := env.Replay(t.Context(), []CacheEntry{mustEntry(t, "b", "Y", "2")})
	if err != nil {
		t.Fatalf("second Replay: %v", err)
	}

	if got.Len() != 0 {
		t.Errorf("second Replay extracted %v, want nothing", got.Map())
	}

	if _, ok := env.Lookup("Y"); ok {
		t.Error("second Replay merged Y")
	}

	if env.Cached("b") {
		t.Error("second Replay recorded its entry")
	}
}

func TestEnv_Replay_Malformed(t *testing.T) {
	env := NewEnv([]string{"KEEP=1"})

	entries := []CacheEntry{
		mustEntry(t, "good", "X", "1"),
		{Path: "bad", Contents: "{not json"},
	}

	got, err := env.Replay(t.Context(), entries)
	if !errors.Is(err, ErrDecodeCache) {
		t.Fatalf("Replay err = %v, want ErrDecodeCache", err)
	}

	if got != nil {
		t.Errorf("Replay returned %v on error", got.Map())
	}

	if env.Replayed() || env.Len() != 1 || env.Cached("good") {
		t.Errorf("env changed by failed replay: replayed=%v len=%d", env.Replayed(), env.Len())
	}

	// A failed replay does not consume the one-shot guard.
	if _, err := env.Replay(t.Context(), entries[:1]); err != nil {
		t.Errorf("retry Replay: %v", err)
	}
}

func TestEnv_Concurrent(t *testing.T) {
	env := NewEnv(nil)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			env.Merge(VarsOf("K", string(rune('a'+i))))
			_, _ = env.Lookup("K")
			_ = env.Environ()
		})
	}

	wg.Wait()

	if env.Len() != 1 {
		t.Errorf("Len() = %d, want 1", env.Len())
	}
}
