// Package catalog holds the installed-package list and the currently
// selected package, both read from pkgutil.
//
// A Catalog and a Detail are single-owner values. They do no locking; a
// caller that shares them across goroutines must serialize access.
package catalog

import (
	"context"
	"fmt"

	"github.com/mordilloSan/go_logger/logger"

	"github.com/blackwell-systems/pkgman/internal/pkgutil"
)

// Catalog is the list of installed packages, split into Apple and
// non-Apple packages.
type Catalog struct {
	runner pkgutil.Runner

	all       []string
	apple     []string
	nonApple  []string
	index     map[string]struct{}
	refreshed bool
}

// New creates an empty Catalog. Call Refresh to populate it.
func New(runner pkgutil.Runner) *Catalog {
	return &Catalog{runner: runner}
}

// Refresh replaces the package lists with the current output of pkgutil.
// On failure the previous lists are kept and the error is returned.
func (c *Catalog) Refresh(ctx context.Context) error {
	out, err := pkgutil.RunCommand(ctx, c.runner, pkgutil.ListPackages{})
	if err != nil {
		return fmt.Errorf("failed to list packages: %w", err)
	}

	lines := pkgutil.ParseLines(out)
	all := make([]string, 0, len(lines))
	var apple, nonApple []string
	index := make(map[string]struct{}, len(lines))

	for _, id := range lines {
		if id == "" {
			continue
		}
		all = append(all, id)
		index[id] = struct{}{}
		if pkgutil.IsApplePackage(id) {
			apple = append(apple, id)
		} else {
			nonApple = append(nonApple, id)
		}
	}

	c.all, c.apple, c.nonApple, c.index = all, apple, nonApple, index
	c.refreshed = true

	logger.Debugf("catalog refreshed: %d packages (%d apple, %d other)", len(all), len(apple), len(nonApple))
	return nil
}

// Refreshed reports whether at least one Refresh has succeeded.
func (c *Catalog) Refreshed() bool {
	return c.refreshed
}

// IsApplePackage reports whether id carries the Apple vendor prefix.
func (c *Catalog) IsApplePackage(id string) bool {
	return pkgutil.IsApplePackage(id)
}

// Contains reports whether the last refresh listed id.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// ListAll returns every package id in pkgutil order.
func (c *Catalog) ListAll() []string {
	return clone(c.all)
}

// ListApple returns the Apple package ids in pkgutil order.
func (c *Catalog) ListApple() []string {
	return clone(c.apple)
}

// ListNonApple returns the non-Apple package ids in pkgutil order.
func (c *Catalog) ListNonApple() []string {
	return clone(c.nonApple)
}

// Groups lists the package groups known to pkgutil.
func (c *Catalog) Groups(ctx context.Context) ([]string, error) {
	out, err := pkgutil.RunCommand(ctx, c.runner, pkgutil.ListGroups{})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return nonEmpty(pkgutil.ParseLines(out)), nil
}

// GroupPackages lists the package ids belonging to group.
func (c *Catalog) GroupPackages(ctx context.Context, group string) ([]string, error) {
	out, err := pkgutil.RunCommand(ctx, c.runner, pkgutil.GroupPackages{Group: group})
	if err != nil {
		return nil, fmt.Errorf("failed to list packages of group %s: %w", group, err)
	}
	return nonEmpty(pkgutil.ParseLines(out)), nil
}

// Forget is reserved for removing a package receipt. It does not invoke
// pkgutil and always returns ErrNotImplemented.
func (c *Catalog) Forget(ctx context.Context, id string) error {
	return fmt.Errorf("forget %s: %w", id, pkgutil.ErrNotImplemented)
}

// nonEmpty drops blank lines, which are never valid ids.
func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func clone(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
