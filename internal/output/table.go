// Package output provides terminal output utilities for pkgman.
//
// This package includes:
//   - Table rendering for package lists, groups and receipt paths
//   - Existence markers for checked paths
//   - Progress bars and spinners for long-running pkgutil calls
//   - json and yaml encoders for machine-readable output
//
// Table rendering uses plain characters and ANSI color codes; colors are
// emitted only on a terminal, when NO_COLOR is unset and color is enabled.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/pkgman/internal/pkgutil"
	"github.com/blackwell-systems/pkgman/internal/scanner"
)

// ANSI color codes for existence display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

var colorDisabled bool

// SetColor turns color output on or off regardless of the terminal.
func SetColor(enabled bool) {
	colorDisabled = !enabled
}

// IsColorEnabled returns true if ANSI color codes should be emitted.
func IsColorEnabled() bool {
	if colorDisabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderPackageList renders package ids one per row with their vendor.
// Rows keep the order pkgutil reported.
func RenderPackageList(ids []string) string {
	if len(ids) == 0 {
		return "No packages found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-60s %s\n", "Package", "Vendor"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	apple := 0
	for _, id := range ids {
		vendor := "third-party"
		if pkgutil.IsApplePackage(id) {
			vendor = colorize(colorGray, "apple")
			apple++
		}
		sb.WriteString(fmt.Sprintf("%-60s %s\n", truncate(id, 60), vendor))
	}

	sb.WriteString(fmt.Sprintf("\n%d packages (%d apple, %d third-party)\n", len(ids), apple, len(ids)-apple))
	return sb.String()
}

// RenderList renders plain lines, used for groups and group members.
func RenderList(items []string, empty string) string {
	if len(items) == 0 {
		return empty + "\n"
	}
	return strings.Join(items, "\n") + "\n"
}

// RenderPathTable renders receipt paths. With showExistence set, each row
// is prefixed by a marker for the entry's existence state.
func RenderPathTable(entries []pkgutil.PathEntry, showExistence bool) string {
	if len(entries) == 0 {
		return "No paths recorded.\n"
	}

	var sb strings.Builder
	if showExistence {
		sb.WriteString(fmt.Sprintf("%-8s %-11s %s\n", "Status", "Mode", "Path"))
	} else {
		sb.WriteString(fmt.Sprintf("%-11s %s\n", "Mode", "Path"))
	}
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, e := range entries {
		if showExistence {
			sb.WriteString(fmt.Sprintf("%s %-11s %s\n", formatExistence(e.Exists), e.Mode, e.Path))
		} else {
			sb.WriteString(fmt.Sprintf("%-11s %s\n", e.Mode, e.Path))
		}
	}

	return sb.String()
}

// RenderSummary renders the one-line result of an existence check.
// Format: "12 paths · 10 present · 2 missing"
func RenderSummary(s scanner.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d paths · %s present · ", s.Total, colorize(colorGreen, fmt.Sprint(s.Exists))))
	if s.Missing > 0 {
		sb.WriteString(colorize(colorRed, fmt.Sprintf("%d missing", s.Missing)))
	} else {
		sb.WriteString("0 missing")
	}
	if s.Unknown > 0 {
		sb.WriteString(fmt.Sprintf(" · %d unchecked", s.Unknown))
	}
	return sb.String()
}

// RenderInfo renders the package description followed by the version and
// the relative install age.
func RenderInfo(meta pkgutil.PackageMetadata, description string) string {
	var sb strings.Builder
	sb.WriteString(description)
	sb.WriteString("\n")
	if meta.Version != "" {
		sb.WriteString("version: " + meta.Version + "\n")
	}
	sb.WriteString(colorize(colorGray, fmt.Sprintf("(installed %s, root %s)", formatRelativeTime(meta.InstallTime), meta.Root())))
	sb.WriteString("\n")
	return sb.String()
}

// formatExistence returns a fixed-width marker for an existence state.
func formatExistence(e pkgutil.Existence) string {
	switch e {
	case pkgutil.Exists:
		return colorize(colorGreen, fmt.Sprintf("%-8s", "✓ ok"))
	case pkgutil.NotExists:
		return colorize(colorRed, fmt.Sprintf("%-8s", "✗ gone"))
	default:
		return colorize(colorYellow, fmt.Sprintf("%-8s", "?"))
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
