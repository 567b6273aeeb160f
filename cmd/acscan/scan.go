package main

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/tidwall/match"

	"github.com/coregx/acbridge"
)

// matchRecord is printed for every match.
type matchRecord struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Pattern string `json:"pattern"`
	Text    string `json:"text"`
}

// countRecord is printed once per input with -count.
type countRecord struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

type scanner struct {
	matcher  *acbridge.Matcher
	patterns []string
	opts     *options
	enc      *json.Encoder
	log      *slog.Logger

	total  int
	failed bool
}

func newScanner(m *acbridge.Matcher, opts *options, enc *json.Encoder, log *slog.Logger) *scanner {
	return &scanner{
		matcher:  m,
		patterns: m.Patterns(),
		opts:     opts,
		enc:      enc,
		log:      log,
	}
}

func (s *scanner) warn(name string, err error) {
	s.failed = true
	s.log.Warn("scan failed", slog.String("file", name), slog.Any("err", err))
}

// scanPath scans a file, or every file below a directory. Paths named
// explicitly are scanned regardless of -include.
func (s *scanner) scanPath(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrap(err, "stat")
	}
	if !info.IsDir() {
		return s.scanFile(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.warn(path, err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if s.opts.include != "" && !match.Match(d.Name(), s.opts.include) {
			s.log.Debug("skipped", slog.String("file", path))
			return nil
		}
		if err := s.scanFile(path); err != nil {
			s.warn(path, err)
		}
		return nil
	})
}

func (s *scanner) scanFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open")
	}
	defer f.Close()

	r, err := decoder(path, f)
	if err != nil {
		return err
	}
	defer r.Close()
	return s.scanReader(path, r)
}

// decoder picks a decompressor from the file extension.
func decoder(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		return zr, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		return zr.IOReadCloser(), nil
	}
	return io.NopCloser(r), nil
}

// scanReader reads the whole input and reports its matches. Line numbers
// are 1-based and count the line a match starts on.
func (s *scanner) scanReader(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "read")
	}

	count, line, last := 0, 1, 0
	for m := range s.matcher.FindIter(data) {
		if s.opts.maxPerFile > 0 && count == s.opts.maxPerFile {
			break
		}
		count++
		if s.opts.countOnly {
			continue
		}
		line += bytes.Count(data[last:m.Start], []byte{'\n'})
		last = m.Start
		rec := matchRecord{
			File:    name,
			Line:    line,
			Start:   m.Start,
			End:     m.End,
			Pattern: s.patterns[m.Pattern],
			Text:    string(data[m.Start:m.End]),
		}
		if err := s.enc.Encode(rec); err != nil {
			return errors.Wrap(err, "write")
		}
	}
	if s.opts.countOnly {
		if err := s.enc.Encode(countRecord{File: name, Count: count}); err != nil {
			return errors.Wrap(err, "write")
		}
	}

	s.total += count
	s.log.Debug("scanned", slog.String("file", name), slog.Int("bytes", len(data)), slog.Int("matches", count))
	return nil
}
