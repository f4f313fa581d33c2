package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/pkgman/internal/pkgutil"
	"github.com/blackwell-systems/pkgman/internal/scanner"
)

// Description labels, in output order.
const (
	labelID       = "package-id: "
	labelVolume   = "volume: "
	labelLocation = "location: "
	labelTime     = "install-time: "
)

// TimeLayout formats install times in Description.
const TimeLayout = "2006-01-02 15:04:05 -0700"

// Detail holds the metadata and recorded paths of the selected package.
type Detail struct {
	runner  pkgutil.Runner
	catalog *Catalog
	scanner *scanner.Scanner

	id       string
	meta     pkgutil.PackageMetadata
	entries  []pkgutil.PathEntry
	selected bool
}

// NewDetail creates a Detail with nothing selected. When cat is non-nil and
// has been refreshed, Select rejects ids the catalog does not list.
func NewDetail(runner pkgutil.Runner, cat *Catalog) *Detail {
	return &Detail{runner: runner, catalog: cat, scanner: scanner.New()}
}

// WithScanner replaces the scanner used by CheckExistence.
func (d *Detail) WithScanner(s *scanner.Scanner) *Detail {
	d.scanner = s
	return d
}

// Select makes id the current package. Re-selecting the current package is
// a no-op and keeps existing existence results. Otherwise the metadata and
// the path list are fetched; the held state is replaced only when both
// succeed.
func (d *Detail) Select(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("empty package id: %w", pkgutil.ErrUnknownPackage)
	}
	if d.selected && d.id == id {
		return nil
	}
	if d.catalog != nil && d.catalog.Refreshed() && !d.catalog.Contains(id) {
		return fmt.Errorf("%s: %w", id, pkgutil.ErrUnknownPackage)
	}

	infoOut, err := pkgutil.RunCommand(ctx, d.runner, pkgutil.PackageInfo{ID: id, AsPlist: true})
	if err != nil {
		return fmt.Errorf("failed to read info for %s: %w", id, err)
	}
	if strings.TrimSpace(infoOut) == "" {
		return fmt.Errorf("%s: %w", id, pkgutil.ErrUnknownPackage)
	}
	meta, err := pkgutil.ParseInfo(infoOut)
	if err != nil {
		return fmt.Errorf("failed to parse info for %s: %w", id, err)
	}

	receiptOut, err := pkgutil.RunCommand(ctx, d.runner, pkgutil.ExportReceipt{ID: id})
	if err != nil {
		return fmt.Errorf("failed to read paths for %s: %w", id, err)
	}
	if strings.TrimSpace(receiptOut) == "" {
		return fmt.Errorf("%s: %w", id, pkgutil.ErrUnknownPackage)
	}
	_, entries, err := pkgutil.ParseReceipt(receiptOut)
	if err != nil {
		return fmt.Errorf("failed to parse paths for %s: %w", id, err)
	}

	if meta.ID == "" {
		meta.ID = id
	}

	d.id = id
	d.meta = meta
	d.entries = entries
	d.selected = true
	return nil
}

// Selected reports whether a package is selected.
func (d *Detail) Selected() bool {
	return d.selected
}

// Current returns the metadata of the selected package.
func (d *Detail) Current() pkgutil.PackageMetadata {
	return d.meta
}

// Root returns the directory the selected package's paths are relative to.
func (d *Detail) Root() string {
	return d.meta.Root()
}

// FullPath returns the absolute location of entry under the current root.
func (d *Detail) FullPath(entry pkgutil.PathEntry) string {
	return pkgutil.JoinRoot(d.Root(), entry.Path)
}

// Description renders the selected package as four labelled lines. It is
// empty until a package is selected.
func (d *Detail) Description() string {
	if !d.selected {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(labelID + d.meta.ID + "\n")
	sb.WriteString(labelVolume + d.meta.Volume + "\n")
	sb.WriteString(labelLocation + d.meta.InstallLocation + "\n")
	sb.WriteString(labelTime + d.meta.InstallTime.Format(TimeLayout))
	return sb.String()
}

// AllPaths returns every recorded path in parser order.
func (d *Detail) AllPaths() []pkgutil.PathEntry {
	return d.filter(func(pkgutil.PathMode) bool { return true })
}

// FilesOnly returns regular files, executables and symlinks.
func (d *Detail) FilesOnly() []pkgutil.PathEntry {
	return d.filter(pkgutil.PathMode.IsFileLike)
}

// DirsOnly returns directories.
func (d *Detail) DirsOnly() []pkgutil.PathEntry {
	return d.filter(pkgutil.PathMode.IsDir)
}

// CheckExistence stats every held path and records the result on the
// entries. It must be called again after selecting another package.
func (d *Detail) CheckExistence() scanner.Summary {
	d.scanner.Check(d.Root(), d.entries)
	return scanner.Summarize(d.entries)
}

func (d *Detail) filter(keep func(pkgutil.PathMode) bool) []pkgutil.PathEntry {
	out := make([]pkgutil.PathEntry, 0, len(d.entries))
	for _, e := range d.entries {
		if keep(e.Mode) {
			out = append(out, e)
		}
	}
	return out
}
