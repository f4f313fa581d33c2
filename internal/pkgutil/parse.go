package pkgutil

import (
	"math"
	"sort"
	"strings"
	"time"

	"howett.net/plist"
)

// Receipt keys used by pkgutil's property list output.
const (
	keyID              = "pkgid"
	keyVersion         = "pkg-version"
	keyVolume          = "volume"
	keyInstallLocation = "install-location"
	keyInstallTime     = "install-time"
	keyPaths           = "paths"
	keyMode            = "mode"
)

// ParseLines splits line-oriented pkgutil output. pkgutil terminates its
// output with a newline, so exactly one trailing empty element is dropped.
// Output without a final newline keeps its last line.
func ParseLines(out string) []string {
	lines := strings.Split(out, "\n")
	if n := len(lines); lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// ParseFileList parses a --files listing. A leading "." entry, standing for
// the install root itself, is dropped.
func ParseFileList(out string) []string {
	lines := ParseLines(out)
	if len(lines) > 0 && lines[0] == "." {
		lines = lines[1:]
	}
	return lines
}

// ParseInfo parses the output of --pkg-info-plist.
func ParseInfo(payload string) (PackageMetadata, error) {
	dict, err := decodeDict(payload)
	if err != nil {
		return PackageMetadata{}, err
	}
	return parseMetadata(dict)
}

// ParseReceipt parses the output of --export-plist into the package metadata
// and its recorded paths. Entries are sorted by path since the payload has no
// ordering of its own.
func ParseReceipt(payload string) (PackageMetadata, []PathEntry, error) {
	dict, err := decodeDict(payload)
	if err != nil {
		return PackageMetadata{}, nil, err
	}

	meta, err := parseMetadata(dict)
	if err != nil {
		return PackageMetadata{}, nil, err
	}

	raw, ok := dict[keyPaths]
	if !ok {
		return PackageMetadata{}, nil, malformed(keyPaths, "missing")
	}
	paths, ok := raw.(map[string]interface{})
	if !ok {
		return PackageMetadata{}, nil, malformed(keyPaths, "not a dictionary")
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]PathEntry, 0, len(names))
	for _, name := range names {
		record, ok := paths[name].(map[string]interface{})
		if !ok {
			return PackageMetadata{}, nil, malformed(keyPaths+"."+name, "not a dictionary")
		}
		rawMode, ok := record[keyMode]
		if !ok {
			return PackageMetadata{}, nil, malformed(keyPaths+"."+name+"."+keyMode, "missing")
		}
		code, ok := toInt64(rawMode)
		if !ok {
			return PackageMetadata{}, nil, malformed(keyPaths+"."+name+"."+keyMode, "not a number")
		}
		entries = append(entries, NewPathEntry(name, ModeFromCode(code)))
	}

	return meta, entries, nil
}

func decodeDict(payload string) (map[string]interface{}, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, malformed("", "empty payload")
	}

	var root interface{}
	if _, err := plist.Unmarshal([]byte(payload), &root); err != nil {
		return nil, &MalformedPayloadError{Reason: "cannot decode property list", Err: err}
	}

	dict, ok := root.(map[string]interface{})
	if !ok {
		return nil, malformed("", "top-level value is not a dictionary")
	}
	return dict, nil
}

func parseMetadata(dict map[string]interface{}) (PackageMetadata, error) {
	var meta PackageMetadata
	var err error

	if meta.ID, err = optionalString(dict, keyID); err != nil {
		return PackageMetadata{}, err
	}
	if meta.Version, err = optionalString(dict, keyVersion); err != nil {
		return PackageMetadata{}, err
	}
	if meta.Volume, err = requiredString(dict, keyVolume); err != nil {
		return PackageMetadata{}, err
	}
	if meta.InstallLocation, err = requiredString(dict, keyInstallLocation); err != nil {
		return PackageMetadata{}, err
	}

	raw, ok := dict[keyInstallTime]
	if !ok {
		return PackageMetadata{}, malformed(keyInstallTime, "missing")
	}
	seconds, ok := toInt64(raw)
	if !ok {
		return PackageMetadata{}, malformed(keyInstallTime, "not a number")
	}
	meta.InstallTime = time.Unix(seconds, 0).UTC()

	return meta, nil
}

func requiredString(dict map[string]interface{}, key string) (string, error) {
	raw, ok := dict[key]
	if !ok {
		return "", malformed(key, "missing")
	}
	s, ok := raw.(string)
	if !ok {
		return "", malformed(key, "not a string")
	}
	return s, nil
}

func optionalString(dict map[string]interface{}, key string) (string, error) {
	raw, ok := dict[key]
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", malformed(key, "not a string")
	}
	return s, nil
}

// toInt64 accepts the numeric types the plist decoder produces.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	case float64:
		// Reals must be whole and inside the int64 range.
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
