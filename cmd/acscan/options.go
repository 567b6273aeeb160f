package main

import (
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/coregx/acbridge"
)

type options struct {
	patterns      []string
	caseSensitive bool
	include       string
	maxPerFile    int
	countOnly     bool
	verbose       bool
	paths         []string
}

// patternFile is the layout of the YAML file read by -f. Unlike -e, each
// list entry is one pattern and may contain spaces.
type patternFile struct {
	CaseSensitive bool     `yaml:"case_sensitive"`
	Patterns      []string `yaml:"patterns"`
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("acscan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	var expr, file string
	fs.StringVar(&expr, "e", "", "space-separated patterns")
	fs.StringVar(&file, "f", "", "YAML file with a `patterns` list")
	fs.BoolVar(&o.caseSensitive, "case-sensitive", false, "match ASCII letters exactly")
	fs.StringVar(&o.include, "include", "", "when walking directories, scan only file names matching this glob")
	fs.IntVar(&o.maxPerFile, "max", 0, "stop after this many matches per file (0 means no limit)")
	fs.BoolVar(&o.countOnly, "count", false, "print one count record per file instead of the matches")
	fs.BoolVar(&o.verbose, "v", false, "log skipped and scanned files")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if expr != "" {
		o.patterns = append(o.patterns, acbridge.ParsePatterns(expr)...)
	}
	if file != "" {
		pf, err := loadPatternFile(file)
		if err != nil {
			return nil, err
		}
		o.patterns = append(o.patterns, pf.Patterns...)
		o.caseSensitive = o.caseSensitive || pf.CaseSensitive
	}
	if len(o.patterns) == 0 {
		return nil, errors.New("no patterns given, use -e or -f")
	}
	if o.maxPerFile < 0 {
		return nil, errors.Errorf("-max must be >= 0, got %d", o.maxPerFile)
	}
	o.paths = fs.Args()
	return &o, nil
}

func loadPatternFile(path string) (*patternFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read pattern file")
	}
	var pf patternFile
	if err := yaml.UnmarshalStrict(data, &pf); err != nil {
		return nil, errors.Wrapf(err, "parse pattern file %s", path)
	}
	for i, p := range pf.Patterns {
		if p == "" {
			return nil, errors.Errorf("pattern file %s: entry %d is empty", path, i)
		}
	}
	return &pf, nil
}

func (o *options) compile() (*acbridge.Matcher, error) {
	config := acbridge.DefaultConfig()
	config.ASCIICaseInsensitive = !o.caseSensitive
	m, err := acbridge.CompileWithConfig(config, o.patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "compile patterns")
	}
	return m, nil
}
