package pkgutil

// Executable is the package database tool every Command is run against.
const Executable = "/usr/sbin/pkgutil"

// Command is one pkgutil invocation. The set of implementations is closed;
// each maps to the literal flags pkgutil expects.
type Command interface {
	Args() []string
	isCommand()
}

// ListPackages lists the ids of all installed packages (--pkgs).
type ListPackages struct{}

// ListGroups lists all package groups (--groups).
type ListGroups struct{}

// GroupPackages lists the packages belonging to a group (--group-pkgs).
type GroupPackages struct {
	Group string
}

// ListPaths lists the files and directories recorded for a package (--files).
// OnlyFiles takes precedence when both filters are set.
type ListPaths struct {
	ID        string
	OnlyFiles bool
	OnlyDirs  bool
}

// PackageInfo reads the receipt metadata of a package, either as plain text
// (--pkg-info) or as a property list (--pkg-info-plist).
type PackageInfo struct {
	ID      string
	AsPlist bool
}

// ExportReceipt exports the full receipt, including every recorded path and
// its mode, as a property list (--export-plist).
type ExportReceipt struct {
	ID string
}

// ForgetPackage removes a receipt from the package database (--forget).
// Nothing in this module executes it yet.
type ForgetPackage struct {
	ID string
}

func (ListPackages) Args() []string { return []string{"--pkgs"} }

func (ListGroups) Args() []string { return []string{"--groups"} }

func (c GroupPackages) Args() []string { return []string{"--group-pkgs", c.Group} }

func (c ListPaths) Args() []string {
	switch {
	case c.OnlyFiles:
		return []string{"--only-files", "--files", c.ID}
	case c.OnlyDirs:
		return []string{"--only-dirs", "--files", c.ID}
	default:
		return []string{"--files", c.ID}
	}
}

func (c PackageInfo) Args() []string {
	if c.AsPlist {
		return []string{"--pkg-info-plist", c.ID}
	}
	return []string{"--pkg-info", c.ID}
}

func (c ExportReceipt) Args() []string { return []string{"--export-plist", c.ID} }

func (c ForgetPackage) Args() []string { return []string{"--forget", c.ID} }

func (ListPackages) isCommand()  {}
func (ListGroups) isCommand()    {}
func (GroupPackages) isCommand() {}
func (ListPaths) isCommand()     {}
func (PackageInfo) isCommand()   {}
func (ExportReceipt) isCommand() {}
func (ForgetPackage) isCommand() {}
