// Package classdump reconstructs class metadata from the executable with a
// runtime-specific dump utility and persists it as a report artifact.
package classdump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/machoscan/machoscan/internal/evidence"
	"github.com/machoscan/machoscan/internal/scan"
	"github.com/machoscan/machoscan/internal/tools"
	"github.com/machoscan/machoscan/internal/utils"
)

// ArtifactName is the dump file written under the working directory.
const ArtifactName = "classdump.txt"

// noSourceSentinel in the dump output means the Objective-C dumper found no
// class information and the Swift dumper should be tried instead.
const noSourceSentinel = "Source: (null)"

// webViewToken flags usage of the legacy UIWebView component.
const webViewToken = "UIWebView"

// Extractor dumps class metadata for one executable.
type Extractor struct {
	goos      string
	overrides utils.ToolPaths
	toolsDir  string
	workDir   string
	binPath   string
	runner    evidence.Runner
	log       *logrus.Entry
}

// New creates an extractor for the host capability identified by goos.
func New(goos string, overrides utils.ToolPaths, toolsDir, workDir, binPath string, runner evidence.Runner, log *logrus.Entry) *Extractor {
	return &Extractor{
		goos:      goos,
		overrides: overrides,
		toolsDir:  toolsDir,
		workDir:   workDir,
		binPath:   binPath,
		runner:    runner,
		log:       log,
	}
}

// Extract runs the class-dump utility for the classified runtime, writes the
// raw dump to the working directory, and returns an informational finding
// when the dump shows legacy web-view usage. An unsupported host capability
// yields (nil, nil).
func (e *Extractor) Extract(ctx context.Context, binType scan.BinaryType) (*scan.Finding, error) {
	cmd, ok := e.command(binType)
	if !ok {
		e.log.Warn("class-dump is not supported on this platform")
		return nil, nil
	}

	out, err := e.runner.Run(ctx, cmd.Path, cmd.Args)
	if err != nil {
		return nil, fmt.Errorf("class-dump invocation failed: %w", err)
	}

	// The Objective-C dumper reports binaries it cannot read instead of
	// failing; fall back to the Swift dumper. The retry happens only on
	// darwin, matching the behavior the signature catalog was built
	// against.
	if e.goos == "darwin" && strings.Contains(string(out), noSourceSentinel) {
		e.log.Info("Class dump found no source information, retrying with Swift dumper")
		fallback := filepath.Join(e.toolsDir, "class-dump-swift")
		out, err = e.runner.Run(ctx, fallback, []string{e.binPath})
		if err != nil {
			return nil, fmt.Errorf("fallback class-dump invocation failed: %w", err)
		}
	}

	dump := evidence.Decode(string(out))
	artifact := filepath.Join(e.workDir, ArtifactName)
	if err := os.WriteFile(artifact, []byte(dump), 0o644); err != nil {
		// The artifact is a deliverable for external consumers, not an
		// input to later phases; losing it must not lose the finding.
		e.log.WithError(err).Warnf("Failed to write %s", artifact)
	}

	if strings.Contains(dump, webViewToken) {
		return &scan.Finding{
			Issue:       "Binary uses WebView Component.",
			Status:      scan.StatusInfo,
			Description: "The binary may use WebView Component.",
		}, nil
	}
	return nil, nil
}

// command selects the dump utility and argument shape for the classified
// runtime on the current host capability.
func (e *Extractor) command(binType scan.BinaryType) (tools.Command, bool) {
	switch e.goos {
	case "darwin":
		var path string
		if binType == scan.BinaryTypeSwift {
			path = tools.PickBinary(e.overrides.ClassdumpSwift, filepath.Join(e.toolsDir, "class-dump-swift"))
		} else {
			path = tools.PickBinary(e.overrides.Classdump, filepath.Join(e.toolsDir, "class-dump-z"))
		}
		return tools.Command{Path: path, Args: []string{e.binPath}}, true
	case "linux":
		jtool := tools.JtoolPath(e.overrides, e.toolsDir)
		return tools.Command{Path: jtool, Args: []string{"-arch", "arm", "-d", "objc", "-v", e.binPath}}, true
	}
	return tools.Command{}, false
}
