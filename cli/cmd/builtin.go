package cmd

// This file defines the evaluation environment available to expressions of
// the eval command.

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"
)

// exprEnv returns the expr-lang environment for loaded.
//
// "env" holds every variable of the environment and "vars" only those
// loaded from files. Functions "has" and "get" query the environment, and
// the "file", "path", and "mung" groups provide filesystem and PATH-list
// helpers.
func exprEnv(loaded Loaded) map[string]any {
	vars := map[string]string{}
	if loaded.Output.Extracted != nil {
		vars = loaded.Output.Extracted.Map()
	}

	env := map[string]string{}
	if loaded.Env != nil {
		env = loaded.Env.Snapshot()
	}

	return map[string]any{
		"env":  env,
		"vars": vars,

		"has": func(key string) bool {
			_, ok := env[key]

			return ok
		},
		"get": func(key string, fallback ...string) string {
			if val, ok := env[key]; ok {
				return val
			}

			if len(fallback) > 0 {
				return fallback[0]
			}

			return ""
		},

		"file": map[string]any{
			"exists":    fileExists,
			"isDir":     fileIsDir,
			"isRegular": fileIsRegular,
		},

		"path": map[string]any{
			"abs": pathAbs,
			"cat": pathCat,
			"rel": pathRel,
		},

		"mung": map[string]any{
			"prefix":   mungPrefix,
			"prefixif": mungPrefixIf,
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func pathAbs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return path
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	if p, err := filepath.Rel(pathAbs(from), pathAbs(to)); err == nil {
		return p
	}

	return pathCat(from, to)
}

// mungPrefix prepends the items of prefix to the PATH-like list subject,
// removing duplicates.
func mungPrefix(subject string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

// mungPrefixIf is like mungPrefix but keeps only items satisfying keep.
func mungPrefixIf(
	subject string,
	keep func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(subject),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(keep),
	).String()
}
