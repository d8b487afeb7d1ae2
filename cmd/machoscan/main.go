package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/machoscan/machoscan/internal/analysis"
	"github.com/machoscan/machoscan/internal/scan"
	"github.com/machoscan/machoscan/internal/utils"
)

var (
	// Version information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machoscan",
		Short: "Static security scanner for iOS application executables",
		Long: `machoscan performs static security analysis of the native executable inside
an unpacked iOS application bundle, without executing it.

It inspects the Mach-O header, collects linked-library and symbol-table
evidence through platform inspection utilities (otool on macOS, jtool on
Linux), evaluates a catalog of security signatures (PIE, stack protection,
ARC, banned APIs, weak crypto and hashes, insecure randomness, logging,
anti-debugging), dumps class metadata, and extracts embedded strings.

Signature matches are heuristic indicators, not proof of exploitability.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		toolsDir   string
		workDir    string
		executable string
		configFile string
		jsonOutput bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "scan <bundle-root>",
		Short: "Analyze the executable inside an unpacked application bundle",
		Long: `Scan locates the .app directory under <bundle-root>, resolves the executable
and runs the full analysis pipeline against it.

Exit codes:
  0 - Analysis completed (findings, if any, are in the report)
  1 - Analysis could not run (malformed header, unreadable bundle)
  2 - Invalid arguments or configuration error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0], toolsDir, workDir, executable, configFile, jsonOutput, verbose)
		},
	}

	cmd.Flags().StringVar(&toolsDir, "tools-dir", "", "Directory holding bundled inspection utilities")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "Directory for the class-dump artifact (default: bundle root)")
	cmd.Flags().StringVar(&executable, "executable", "", "Executable name override")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("machoscan version %s\n", version)
			fmt.Printf("Commit: %s\n", commit)
			fmt.Printf("Built: %s\n", buildDate)
		},
	}
}

func runScan(bundleRoot, toolsDir, workDir, executable, configFile string, jsonOutput, verbose bool) error {
	manager := utils.NewConfigManager(nil)
	if err := manager.LoadConfig(configFile); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	cfg := manager.Config()

	level := utils.ParseLogLevel(cfg.LogLevel)
	if verbose {
		level = utils.LogLevelDebug
	}
	logger := utils.NewLogger(utils.LoggerConfig{
		Level:  level,
		Format: utils.ParseLogFormat(cfg.LogFormat),
	})

	analyzer := analysis.New(cfg, logger)
	report, err := analyzer.Analyze(context.Background(), analysis.Options{
		BundleRoot:     bundleRoot,
		ToolsDir:       toolsDir,
		WorkDir:        workDir,
		ExecutableName: executable,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(report)
	}
	printText(report)
	return nil
}

func printJSON(report *analysis.AnalysisReport) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printText(report *analysis.AnalysisReport) {
	bold := color.New(color.Bold)

	if report.Macho != nil {
		bold.Println("Binary")
		fmt.Printf("  Arch: %s (%s), %d-bit, %s endian\n\n",
			report.Macho.Arch, report.Macho.SubArch, report.Macho.Bits, report.Macho.Endianness)
	}
	if report.BinaryType != "" {
		fmt.Printf("Binary type: %s\n\n", report.BinaryType)
	}

	bold.Printf("Findings (%d)\n", len(report.Findings))
	for _, f := range report.Findings {
		fmt.Printf("  [%s] %s", statusColor(f.Status).Sprint(f.Status), f.Issue)
		if f.CWE != "" {
			fmt.Printf(" (%s)", f.CWE)
		}
		if f.Severity > 0 {
			fmt.Printf(" severity %.1f", f.Severity)
		}
		fmt.Printf("\n      %s\n", f.Description)
	}

	fmt.Printf("\nLinked libraries: %d\n", len(report.Libraries))
	for _, lib := range report.Libraries {
		fmt.Printf("  %s\n", lib)
	}
	fmt.Printf("\nExtracted strings: %d\n", len(report.Strings))
}

func statusColor(status scan.Status) *color.Color {
	switch status {
	case scan.StatusSecure:
		return color.New(color.FgGreen)
	case scan.StatusInsecure:
		return color.New(color.FgRed)
	case scan.StatusWarning:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgCyan)
}
