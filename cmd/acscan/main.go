// Command acscan searches files for a set of literal patterns and prints one
// JSON object per match.
//
// Usage:
//
//	acscan -e "he she hers" [flags] [path ...]
//	acscan -f patterns.yaml [flags] [path ...]
//
// Directories are walked recursively; -include restricts the walk to file
// names matching a glob. Files ending in .gz or .zst are decompressed while
// reading. With no paths, standard input is scanned.
//
// The exit status is 0 when something matched, 1 when nothing did and 2 on
// errors, following grep.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "acscan: %v\n", err)
		return 2
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m, err := opts.compile()
	if err != nil {
		fmt.Fprintf(stderr, "acscan: %v\n", err)
		return 2
	}

	s := newScanner(m, opts, json.NewEncoder(stdout), log)
	if len(opts.paths) == 0 {
		if err := s.scanReader("-", stdin); err != nil {
			s.warn("-", err)
		}
	}
	for _, p := range opts.paths {
		if err := s.scanPath(p); err != nil {
			s.warn(p, err)
		}
	}

	switch {
	case s.failed:
		return 2
	case s.total == 0:
		return 1
	}
	return 0
}
