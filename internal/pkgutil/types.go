package pkgutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplePrefix marks packages shipped by Apple.
const ApplePrefix = "com.apple."

// IsApplePackage reports whether id carries the Apple vendor prefix.
func IsApplePackage(id string) bool {
	return strings.HasPrefix(id, ApplePrefix)
}

// PackageMetadata is the receipt of an installed package.
type PackageMetadata struct {
	ID              string    `json:"id" yaml:"id"`
	Version         string    `json:"version,omitempty" yaml:"version,omitempty"`
	Volume          string    `json:"volume" yaml:"volume"`
	InstallLocation string    `json:"install_location" yaml:"install_location"`
	InstallTime     time.Time `json:"install_time" yaml:"install_time"`
}

// Root is the directory every recorded path is relative to: the volume
// followed directly by the install location.
func (m PackageMetadata) Root() string {
	return m.Volume + m.InstallLocation
}

// PathMode classifies a recorded path.
type PathMode int

const (
	ModeUnknown PathMode = iota
	ModeFile
	ModeDirectory
	ModeExecutable
	ModeSymlink
)

// Mode values as pkgutil records them in a receipt.
const (
	modeCodeDirectory  = 16877 // 040755
	modeCodeFile       = 33188 // 0100644
	modeCodeExecutable = 33261 // 0100755
	modeCodeSymlink    = 41471 // 0120777
)

// ModeFromCode maps a receipt mode value to a PathMode.
func ModeFromCode(code int64) PathMode {
	switch code {
	case modeCodeDirectory:
		return ModeDirectory
	case modeCodeFile:
		return ModeFile
	case modeCodeExecutable:
		return ModeExecutable
	case modeCodeSymlink:
		return ModeSymlink
	default:
		return ModeUnknown
	}
}

// IsFileLike is true for regular files, executables and symlinks.
func (m PathMode) IsFileLike() bool {
	return m == ModeFile || m == ModeExecutable || m == ModeSymlink
}

// IsDir is true only for directories.
func (m PathMode) IsDir() bool {
	return m == ModeDirectory
}

func (m PathMode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeDirectory:
		return "directory"
	case ModeExecutable:
		return "executable"
	case ModeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode by name in json and yaml output.
func (m PathMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Existence is the result of checking a path against the filesystem.
// The zero value means the path has not been checked.
type Existence int

const (
	ExistenceUnknown Existence = iota
	Exists
	NotExists
)

func (e Existence) String() string {
	switch e {
	case Exists:
		return "exists"
	case NotExists:
		return "missing"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in json and yaml output.
func (e Existence) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// PathEntry is one file or directory recorded in a receipt, relative to the
// package root.
type PathEntry struct {
	ID     uuid.UUID `json:"-" yaml:"-"`
	Path   string    `json:"path" yaml:"path"`
	Mode   PathMode  `json:"mode" yaml:"mode"`
	Exists Existence `json:"exists" yaml:"exists"`
}

// NewPathEntry returns an unchecked entry with a fresh id.
func NewPathEntry(path string, mode PathMode) PathEntry {
	return PathEntry{ID: uuid.New(), Path: path, Mode: mode}
}

// JoinRoot builds the absolute location of a recorded path. Duplicate
// slashes are kept as is.
func JoinRoot(root, path string) string {
	return fmt.Sprintf("%s/%s", root, path)
}
