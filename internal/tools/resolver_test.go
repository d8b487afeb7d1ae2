package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machoscan/machoscan/internal/utils"
)

func TestDarwinResolver(t *testing.T) {
	r := NewResolver("darwin", utils.ToolPaths{}, "tools", "/apps/Payload/Demo.app/Demo")

	tests := []struct {
		kind EvidenceKind
		args []string
	}{
		{EvidenceLibraries, []string{"-L", "/apps/Payload/Demo.app/Demo"}},
		{EvidenceHeader, []string{"-hv", "/apps/Payload/Demo.app/Demo"}},
		{EvidenceSymbols, []string{"-Iv", "/apps/Payload/Demo.app/Demo"}},
	}
	for _, tt := range tests {
		inv, ok := r.Resolve(tt.kind)
		require.True(t, ok)
		require.Len(t, inv.Commands, 1)
		assert.Equal(t, "otool", inv.Commands[0].Path)
		assert.Equal(t, tt.args, inv.Commands[0].Args)
	}
}

func TestLinuxResolver_SymbolsNeedsTwoPasses(t *testing.T) {
	r := NewResolver("linux", utils.ToolPaths{}, "/opt/tools", "/apps/Demo.app/Demo")

	inv, ok := r.Resolve(EvidenceSymbols)
	require.True(t, ok)
	require.Len(t, inv.Commands, 2)
	assert.Equal(t, filepath.Join("/opt/tools", "jtool.ELF64"), inv.Commands[0].Path)
	assert.Contains(t, inv.Commands[0].Args, "-bind")
	assert.Contains(t, inv.Commands[1].Args, "-lazy_bind")
}

func TestUnsupportedPlatform(t *testing.T) {
	r := NewResolver("windows", utils.ToolPaths{}, "tools", "/apps/Demo.app/Demo")
	for _, kind := range []EvidenceKind{EvidenceLibraries, EvidenceHeader, EvidenceSymbols} {
		_, ok := r.Resolve(kind)
		assert.False(t, ok, "kind %s must be unsupported", kind)
	}
}

func TestPickBinary(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "otool")
	require.NoError(t, os.WriteFile(override, []byte("#!/bin/sh\n"), 0o755))

	assert.Equal(t, override, PickBinary(override, "otool"))
	assert.Equal(t, "otool", PickBinary(filepath.Join(dir, "missing"), "otool"))
	assert.Equal(t, "otool", PickBinary("", "otool"))
}

func TestResolverHonorsOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "otool-custom")
	require.NoError(t, os.WriteFile(override, []byte{0x01}, 0o755))

	r := NewResolver("darwin", utils.ToolPaths{Otool: override}, "tools", "/bin/app")
	inv, ok := r.Resolve(EvidenceLibraries)
	require.True(t, ok)
	assert.Equal(t, override, inv.Commands[0].Path)
}
