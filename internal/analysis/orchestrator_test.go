package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machoscan/machoscan/internal/classdump"
	"github.com/machoscan/machoscan/internal/evidence"
	"github.com/machoscan/machoscan/internal/scan"
	"github.com/machoscan/machoscan/internal/tools"
	"github.com/machoscan/machoscan/internal/utils"
)

// machoHeader64 is a minimal 64-bit arm64 Mach-O prologue followed by some
// embedded strings for the extractor.
var binaryFixture = append([]byte{
	0xcf, 0xfa, 0xed, 0xfe, // MH_CIGAM_64
	0x0c, 0x00, 0x00, 0x01, // ARM64
	0x00, 0x00, 0x00, 0x00, // subtype ALL
	0x02, 0x00, 0x00, 0x00, // executable
	0x00, 0x01, 0x02, 0x03,
}, []byte("embedded-secret-token\x00https://api.example.com\x00")...)

// cannedResolver resolves every evidence kind to a fake command whose first
// argument names the kind, so cannedRunner can answer per kind.
type cannedResolver struct{}

func (cannedResolver) Resolve(kind tools.EvidenceKind) (tools.Invocation, bool) {
	return tools.Invocation{Commands: []tools.Command{{Path: "fake", Args: []string{string(kind)}}}}, true
}

type cannedRunner struct {
	byKind map[string][]byte
	calls  []string
}

func (r *cannedRunner) Run(_ context.Context, path string, args []string) ([]byte, error) {
	key := args[0]
	switch key {
	case "libraries", "header", "symbols":
	default:
		// class-dump invocations pass the binary path, not a kind.
		key = "classdump"
	}
	r.calls = append(r.calls, key)
	if out, ok := r.byKind[key]; ok {
		return out, nil
	}
	return nil, fmt.Errorf("no canned output for %q", key)
}

func writeBundle(t *testing.T, binary []byte) string {
	t.Helper()
	root := t.TempDir()
	appDir := filepath.Join(root, "Demo.app")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	if binary != nil {
		require.NoError(t, os.WriteFile(filepath.Join(appDir, "Demo"), binary, 0o755))
	}
	return root
}

func newTestAnalyzer(goos string, runner evidence.Runner) *Analyzer {
	a := New(utils.DefaultConfig(), utils.NewDefaultLogger())
	a.goos = goos
	if runner != nil {
		a.runner = runner
	}
	a.newResolver = func(string, utils.ToolPaths, string, string) tools.Resolver {
		return cannedResolver{}
	}
	return a
}

func TestAnalyze_MissingExecutable(t *testing.T) {
	root := writeBundle(t, nil)
	runner := &cannedRunner{}
	a := newTestAnalyzer("darwin", runner)

	report, err := a.Analyze(context.Background(), Options{BundleRoot: root})
	require.NoError(t, err)
	assert.Empty(t, report.Libraries)
	assert.Empty(t, report.Findings)
	assert.Empty(t, report.Strings)
	assert.Nil(t, report.Macho)
	assert.Empty(t, runner.calls, "no external utility may run without an executable")
}

func TestAnalyze_MalformedHeaderIsFatal(t *testing.T) {
	root := writeBundle(t, []byte("#!/bin/sh\necho not a macho\n"))
	a := newTestAnalyzer("darwin", &cannedRunner{})

	_, err := a.Analyze(context.Background(), Options{BundleRoot: root})
	assert.Error(t, err)
}

func TestAnalyze_FullPipeline(t *testing.T) {
	root := writeBundle(t, binaryFixture)
	runner := &cannedRunner{byKind: map[string][]byte{
		"libraries": []byte("Demo:\n\t@rpath/libswiftCore.dylib (compatibility version 1.0.0)\n\t/usr/lib/libSystem.B.dylib\n"),
		"header":    []byte("MH_MAGIC_64 ARM64 EXECUTE NOUNDEFS DYLDLINK TWOLEVEL PIE\n"),
		"symbols":   []byte("___stack_chk_guard\n_objc_release\n_strcpy\n_NSLog\n"),
		"classdump": []byte("@interface Demo : UIViewController\nUIWebView *legacy;\n"),
	}}
	workDir := t.TempDir()
	a := newTestAnalyzer("darwin", runner)

	report, err := a.Analyze(context.Background(), Options{BundleRoot: root, WorkDir: workDir})
	require.NoError(t, err)

	// Header metadata
	require.NotNil(t, report.Macho)
	assert.Equal(t, "ARM64", report.Macho.Arch)
	assert.Equal(t, 64, report.Macho.Bits)

	// Libraries preserved in order
	require.Len(t, report.Libraries, 3)
	assert.Contains(t, report.Libraries[1], "libswiftCore.dylib")

	// Swift runtime detected from library list
	assert.Equal(t, scan.BinaryTypeSwift, report.BinaryType)

	// Findings: PIE secure, canary secure, ARC secure, banned API, logging,
	// plus the class-dump webview finding.
	issues := make(map[string]scan.Finding)
	for _, f := range report.Findings {
		issues[f.Issue] = f
	}
	assert.Contains(t, issues, "fPIE -pie flag is Found")
	assert.Contains(t, issues, "fstack-protector-all flag is Found")
	assert.Contains(t, issues, "fobjc-arc flag is Found")
	assert.Contains(t, issues, "Binary make use of banned API(s)")
	assert.Contains(t, issues, "Binary make use of Logging Function")
	assert.Contains(t, issues, "Binary uses WebView Component.")

	// Strings extracted from the executable bytes
	assert.Contains(t, report.Strings, "embedded-secret-token")
	assert.Contains(t, report.Strings, "https://api.example.com")

	// Class-dump artifact written under the working directory
	assert.FileExists(t, filepath.Join(workDir, classdump.ArtifactName))
}

func TestAnalyze_UnsupportedPlatformStillReports(t *testing.T) {
	root := writeBundle(t, binaryFixture)
	a := newTestAnalyzer("windows", &cannedRunner{})
	a.newResolver = tools.NewResolver // real resolver: windows is unsupported

	report, err := a.Analyze(context.Background(), Options{BundleRoot: root})
	require.NoError(t, err)
	assert.Empty(t, report.Libraries)
	assert.Empty(t, report.Findings)
	require.NotNil(t, report.Macho)
	assert.Equal(t, "ARM64", report.Macho.Arch)
	// Strings come from the raw bytes, no external tooling involved.
	assert.Contains(t, report.Strings, "embedded-secret-token")
}

func TestAnalyze_ClassDumpFailureKeepsCompletedPhases(t *testing.T) {
	root := writeBundle(t, binaryFixture)
	runner := &cannedRunner{byKind: map[string][]byte{
		"libraries": []byte("/usr/lib/libobjc.A.dylib\n"),
		"header":    []byte("flags PIE\n"),
		"symbols":   []byte("___stack_chk_guard\n"),
		// no "classdump" entry: the invocation fails
	}}
	a := newTestAnalyzer("darwin", runner)

	report, err := a.Analyze(context.Background(), Options{BundleRoot: root})
	require.NoError(t, err)
	assert.NotEmpty(t, report.Findings, "signature findings survive a class-dump fault")
	assert.Equal(t, scan.BinaryTypeObjC, report.BinaryType)
}

func TestAnalyze_ExecutableNameOverride(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "Demo.app")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "Renamed"), binaryFixture, 0o755))

	runner := &cannedRunner{byKind: map[string][]byte{
		"libraries": []byte(""),
		"header":    []byte(""),
		"symbols":   []byte(""),
		"classdump": []byte(""),
	}}
	a := newTestAnalyzer("darwin", runner)

	report, err := a.Analyze(context.Background(), Options{BundleRoot: root, ExecutableName: "Renamed"})
	require.NoError(t, err)
	require.NotNil(t, report.Macho)
}

func TestAnalyze_MissingBundleRoot(t *testing.T) {
	a := newTestAnalyzer("darwin", &cannedRunner{})
	_, err := a.Analyze(context.Background(), Options{BundleRoot: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}
