// Package analysis sequences the evidence collection, signature scanning
// and metadata extraction phases for one executable and assembles the
// final report.
package analysis

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/machoscan/machoscan/internal/bundle"
	"github.com/machoscan/machoscan/internal/classdump"
	"github.com/machoscan/machoscan/internal/evidence"
	"github.com/machoscan/machoscan/internal/macho"
	"github.com/machoscan/machoscan/internal/scan"
	"github.com/machoscan/machoscan/internal/tools"
	"github.com/machoscan/machoscan/internal/utils"
)

// Options are the inputs for one analysis run.
type Options struct {
	// BundleRoot is the unpacked bundle directory containing the .app dir.
	BundleRoot string
	// ToolsDir is the fallback location for bundled inspection utilities.
	// Empty falls back to the configured tools_dir.
	ToolsDir string
	// WorkDir receives the class-dump artifact. Empty falls back to
	// BundleRoot. Concurrent runs need distinct working directories since
	// the artifact path is derived from it.
	WorkDir string
	// ExecutableName overrides executable resolution when set.
	ExecutableName string
}

// Analyzer runs the analysis pipeline. Phases run sequentially; every phase
// after header parsing degrades to absent evidence on failure instead of
// aborting the run.
type Analyzer struct {
	cfg    *utils.Config
	log    *utils.Logger
	goos   string
	runner evidence.Runner

	// newResolver is swapped in tests for a canned-evidence double.
	newResolver func(goos string, overrides utils.ToolPaths, toolsDir, binPath string) tools.Resolver
}

// New creates an analyzer for the current host.
func New(cfg *utils.Config, log *utils.Logger) *Analyzer {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	if log == nil {
		log = utils.NewDefaultLogger()
	}
	return &Analyzer{
		cfg:         cfg,
		log:         log,
		goos:        runtime.GOOS,
		runner:      evidence.ExecRunner{Timeout: cfg.ToolTimeout},
		newResolver: tools.NewResolver,
	}
}

// Analyze runs the full pipeline and returns the assembled report.
//
// A missing executable is not an error: the result is an explicitly empty
// report. The only fatal pipeline failure is an unreadable or malformed
// structural header, since no downstream evidence can be trusted without it.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*AnalysisReport, error) {
	log := a.log.WithComponent("analysis")

	loc, err := bundle.Locate(opts.BundleRoot, opts.ExecutableName)
	if err != nil {
		return nil, err
	}
	if !loc.Exists() {
		log.Warnf("Cannot find binary in %s", loc.BinPath)
		log.Warn("Skipping object analysis, class dump and string extraction")
		return emptyReport(), nil
	}

	log.Infof("Starting binary analysis of %s", loc.BinName)
	data, err := os.ReadFile(loc.BinPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read executable: %w", err)
	}
	header, err := macho.ParseHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", loc.BinPath, err)
	}

	report := emptyReport()
	report.Macho = &header

	toolsDir := opts.ToolsDir
	if toolsDir == "" {
		toolsDir = a.cfg.ToolsDir
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = opts.BundleRoot
	}

	log.Infof("Running object analysis of binary %s", loc.BinName)
	resolver := a.newResolver(a.goos, a.cfg.Tools, toolsDir, loc.BinPath)
	collector := evidence.NewCollector(resolver, a.runner, loc.AppDir, log)

	if libs := collector.Libraries(ctx); libs != nil {
		report.Libraries = libs
	}
	headerText := collector.Header(ctx)
	symbolText := collector.Symbols(ctx)

	report.Findings = scan.Evaluate(a.rules(), symbolText, headerText)
	if report.Findings == nil {
		report.Findings = []scan.Finding{}
	}
	report.BinaryType = scan.DetectBinaryType(report.Libraries)

	extractor := classdump.New(a.goos, a.cfg.Tools, toolsDir, workDir, loc.BinPath, a.runner, log)
	if finding, err := extractor.Extract(ctx, report.BinaryType); err != nil {
		log.WithError(err).Warn("Class dump failed on this binary")
	} else if finding != nil {
		report.Findings = append(report.Findings, *finding)
	}

	log.Info("Running strings extraction against the binary")
	report.Strings = evidence.ExtractStrings(data)
	if report.Strings == nil {
		report.Strings = []string{}
	}

	return report, nil
}

// rules returns the builtin catalog plus any operator-supplied extras.
func (a *Analyzer) rules() []scan.SignatureRule {
	rules := scan.DefaultRules()
	if a.cfg.RulesFile == "" {
		return rules
	}
	extra, err := scan.LoadRules(a.cfg.RulesFile)
	if err != nil {
		a.log.WithComponent("analysis").WithError(err).Warnf("Ignoring rules file %s", a.cfg.RulesFile)
		return rules
	}
	return append(rules, extra...)
}
