// Package scan walks a directory tree and extracts parametric records by
// matching file paths against a single regular expression with named
// capture groups. Scanning is the only place pscan touches the
// filesystem; the index package consumes the records it produces.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/harrison/pscan/internal/index"
)

// Report summarizes one scan.
type Report struct {
	Walked  int `json:"walked"`  // regular files visited
	Matched int `json:"matched"` // files that produced a record
	Skipped int `json:"skipped"` // files whose match missed a named group
}

// Scanner matches files under a base directory against a parameter
// expression. A Scanner is reusable; every Scan walks the tree afresh.
type Scanner struct {
	re       *regexp.Regexp
	basePath string
	names    []string // named capture groups, in group order
}

// New compiles the expression and validates that it defines at least one
// parameter. Paths are matched in slash-separated form relative to
// basePath, so expressions stay portable across platforms.
func New(expr, basePath string) (*Scanner, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile expression: %w", err)
	}

	var names []string
	for _, name := range re.SubexpNames() {
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("expression %q has no named groups; use (?P<name>...) to define parameters", expr)
	}

	return &Scanner{re: re, basePath: filepath.Clean(basePath), names: names}, nil
}

// Params returns the parameter names defined by the expression.
func (s *Scanner) Params() []string {
	return s.names
}

// BasePath returns the directory the scanner walks.
func (s *Scanner) BasePath() string {
	return s.basePath
}

// Scan walks the base directory and returns a record for every file whose
// relative path matches the expression with a value for every named
// group. Matches that leave a group empty-handed (optional groups that
// did not participate) are counted in Report.Skipped rather than
// producing a record with a hole in it. The walk checks ctx between
// entries and aborts with ctx.Err on cancellation.
func (s *Scanner) Scan(ctx context.Context) ([]index.Record, Report, error) {
	var (
		records []index.Record
		report  Report
	)

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		report.Walked++

		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}

		m := s.re.FindStringSubmatch(filepath.ToSlash(rel))
		if m == nil {
			return nil
		}

		values := make(map[string]string, len(s.names))
		complete := true
		for i, name := range s.re.SubexpNames() {
			if name == "" {
				continue
			}
			// FindStringSubmatch reports a non-participating group
			// as "", indistinguishable from a genuine empty match;
			// either way the record would not be resolvable.
			if m[i] == "" {
				complete = false
				break
			}
			values[name] = m[i]
		}
		if !complete {
			report.Skipped++
			return nil
		}

		report.Matched++
		records = append(records, index.Record{Values: values, Path: path})
		return nil
	})
	if err != nil {
		return nil, Report{}, fmt.Errorf("scan %s: %w", s.basePath, err)
	}

	return records, report, nil
}
