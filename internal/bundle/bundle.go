// Package bundle locates the executable inside an unpacked application
// bundle directory.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// Location is the resolved position of the executable within the bundle.
type Location struct {
	Root    string // bundle root, e.g. .../Payload
	AppDir  string // .../Payload/Name.app
	BinName string
	BinPath string
}

// infoPlist carries the keys consulted for executable resolution.
type infoPlist struct {
	CFBundleExecutable string `plist:"CFBundleExecutable"`
}

// Locate finds the first .app directory under root and resolves the
// executable path. Name precedence: explicit override, Info.plist
// CFBundleExecutable, the .app directory's base name. A bundle without an
// .app directory resolves to a non-existent location rather than an error.
func Locate(root, executableName string) (*Location, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle root: %w", err)
	}

	loc := &Location{Root: root, AppDir: root}
	var appName string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), ".app") {
			appName = entry.Name()
			loc.AppDir = filepath.Join(root, appName)
			break
		}
	}

	switch {
	case executableName != "":
		loc.BinName = executableName
	case appName != "":
		if name := executableFromPlist(filepath.Join(loc.AppDir, "Info.plist")); name != "" {
			loc.BinName = name
		} else {
			loc.BinName = strings.TrimSuffix(appName, ".app")
		}
	}
	loc.BinPath = filepath.Join(loc.AppDir, loc.BinName)
	return loc, nil
}

// Exists reports whether the resolved executable is a regular file.
func (l *Location) Exists() bool {
	fi, err := os.Stat(l.BinPath)
	return err == nil && fi.Mode().IsRegular()
}

func executableFromPlist(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	var info infoPlist
	if err := plist.NewDecoder(f).Decode(&info); err != nil {
		return ""
	}
	return info.CFBundleExecutable
}
