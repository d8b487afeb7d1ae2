// Package tools resolves which external inspection utility serves a given
// evidence request on the current host, honoring operator overrides and a
// bundled tools directory.
package tools

import (
	"os"
	"path/filepath"

	"github.com/machoscan/machoscan/internal/utils"
)

// EvidenceKind identifies the kind of textual evidence requested from an
// external inspection utility.
type EvidenceKind string

const (
	EvidenceLibraries EvidenceKind = "libraries"
	EvidenceHeader    EvidenceKind = "header"
	EvidenceSymbols   EvidenceKind = "symbols"
)

// Command is a single external process invocation.
type Command struct {
	Path string
	Args []string
}

// Invocation is a resolved utility call. Commands holds one argv per process
// to spawn; their outputs are concatenated in order. Symbol evidence on the
// linux capability needs two passes (direct and lazy bindings).
type Invocation struct {
	Commands []Command
}

// Resolver selects an inspection utility for an evidence kind. The second
// return value is false when the host capability has no utility mapping;
// callers must treat that as absent evidence, not an error.
type Resolver interface {
	Resolve(kind EvidenceKind) (Invocation, bool)
}

// NewResolver returns the resolver strategy for the host capability
// identified by goos ("darwin" or "linux"). Any other value yields a
// resolver that reports every kind as unsupported.
func NewResolver(goos string, overrides utils.ToolPaths, toolsDir, binPath string) Resolver {
	switch goos {
	case "darwin":
		return &darwinResolver{overrides: overrides, binPath: binPath}
	case "linux":
		return &linuxResolver{overrides: overrides, toolsDir: toolsDir, binPath: binPath}
	}
	return unsupportedResolver{}
}

// PickBinary returns the operator override when it names an existing file,
// otherwise the platform default path.
func PickBinary(override, fallback string) string {
	if override != "" {
		if fi, err := os.Stat(override); err == nil && fi.Mode().IsRegular() {
			return override
		}
	}
	return fallback
}

type darwinResolver struct {
	overrides utils.ToolPaths
	binPath   string
}

func (r *darwinResolver) Resolve(kind EvidenceKind) (Invocation, bool) {
	otool := PickBinary(r.overrides.Otool, "otool")
	switch kind {
	case EvidenceLibraries:
		return invocation(otool, "-L", r.binPath), true
	case EvidenceHeader:
		return invocation(otool, "-hv", r.binPath), true
	case EvidenceSymbols:
		return invocation(otool, "-Iv", r.binPath), true
	}
	return Invocation{}, false
}

type linuxResolver struct {
	overrides utils.ToolPaths
	toolsDir  string
	binPath   string
}

// JtoolPath resolves the jtool binary used for every linux evidence kind.
func JtoolPath(overrides utils.ToolPaths, toolsDir string) string {
	return PickBinary(overrides.Jtool, filepath.Join(toolsDir, "jtool.ELF64"))
}

func (r *linuxResolver) Resolve(kind EvidenceKind) (Invocation, bool) {
	jtool := JtoolPath(r.overrides, r.toolsDir)
	switch kind {
	case EvidenceLibraries:
		return invocation(jtool, "-arch", "arm", "-L", "-v", r.binPath), true
	case EvidenceHeader:
		return invocation(jtool, "-arch", "arm", "-h", "-v", r.binPath), true
	case EvidenceSymbols:
		return Invocation{Commands: []Command{
			{Path: jtool, Args: []string{"-arch", "arm", "-bind", "-v", r.binPath}},
			{Path: jtool, Args: []string{"-arch", "arm", "-lazy_bind", "-v", r.binPath}},
		}}, true
	}
	return Invocation{}, false
}

type unsupportedResolver struct{}

func (unsupportedResolver) Resolve(EvidenceKind) (Invocation, bool) {
	return Invocation{}, false
}

func invocation(path string, args ...string) Invocation {
	return Invocation{Commands: []Command{{Path: path, Args: args}}}
}
