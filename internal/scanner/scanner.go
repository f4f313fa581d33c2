// Package scanner checks recorded receipt paths against the live filesystem.
package scanner

import (
	"errors"
	"io/fs"
	"os"

	"github.com/mordilloSan/go_logger/logger"

	"github.com/blackwell-systems/pkgman/internal/pkgutil"
)

// Scanner resolves path entries under a package root and records whether
// each one still exists. It performs one stat per entry.
type Scanner struct {
	stat       func(name string) (os.FileInfo, error)
	onProgress func(done, total int)
}

// New creates a Scanner backed by os.Stat.
func New() *Scanner {
	return &Scanner{stat: os.Stat}
}

// WithStat replaces the stat function. Used by tests.
func (s *Scanner) WithStat(stat func(name string) (os.FileInfo, error)) *Scanner {
	s.stat = stat
	return s
}

// OnProgress registers a callback invoked after every checked entry.
func (s *Scanner) OnProgress(fn func(done, total int)) *Scanner {
	s.onProgress = fn
	return s
}

// Check writes Exists or NotExists into every entry, in place. The absolute
// path is root + "/" + entry.Path without normalization. A stat error of any
// kind counts as NotExists.
func (s *Scanner) Check(root string, entries []pkgutil.PathEntry) {
	stat := s.stat
	if stat == nil {
		stat = os.Stat
	}

	for i := range entries {
		full := pkgutil.JoinRoot(root, entries[i].Path)
		if _, err := stat(full); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Debugf("stat %s: %v", full, err)
			}
			entries[i].Exists = pkgutil.NotExists
		} else {
			entries[i].Exists = pkgutil.Exists
		}

		if s.onProgress != nil {
			s.onProgress(i+1, len(entries))
		}
	}
}

// Check runs a default Scanner over entries.
func Check(root string, entries []pkgutil.PathEntry) {
	New().Check(root, entries)
}

// Summary counts entries by existence state.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Exists  int `json:"exists" yaml:"exists"`
	Missing int `json:"missing" yaml:"missing"`
	Unknown int `json:"unknown" yaml:"unknown"`
}

// Summarize tallies the existence states of entries.
func Summarize(entries []pkgutil.PathEntry) Summary {
	sum := Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Exists {
		case pkgutil.Exists:
			sum.Exists++
		case pkgutil.NotExists:
			sum.Missing++
		default:
			sum.Unknown++
		}
	}
	return sum
}
