// Package evidence invokes external inspection utilities and normalizes
// their textual output into the evidence values the signature scanner and
// report consume.
package evidence

import (
	"context"
	"html"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/machoscan/machoscan/internal/tools"
)

// Runner executes an external utility and returns its combined output.
type Runner interface {
	Run(ctx context.Context, path string, args []string) ([]byte, error)
}

// ExecRunner spawns real OS processes with a bounded wait. A zero Timeout
// disables the bound.
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, path string, args []string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	// Bundled utilities ship without the execute bit set.
	if strings.ContainsRune(path, os.PathSeparator) {
		_ = os.Chmod(path, 0o777)
	}
	return exec.CommandContext(ctx, path, args...).CombinedOutput()
}

// Collector gathers evidence for one executable. Failures degrade to absent
// evidence for that kind only; the collector never returns an error.
type Collector struct {
	resolver tools.Resolver
	runner   Runner
	binDir   string
	log      *logrus.Entry
}

// NewCollector creates a collector. binDir is the executable's containing
// directory, stripped from library listing lines.
func NewCollector(resolver tools.Resolver, runner Runner, binDir string, log *logrus.Entry) *Collector {
	return &Collector{resolver: resolver, runner: runner, binDir: binDir, log: log}
}

// Libraries returns the ordered linked-library list, or nil when the
// evidence is absent.
func (c *Collector) Libraries(ctx context.Context) []string {
	out, ok := c.collect(ctx, tools.EvidenceLibraries)
	if !ok {
		return nil
	}
	out = strings.ReplaceAll(out, c.binDir+string(os.PathSeparator), "")
	out = html.EscapeString(out)
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Header returns the structural-header dump text, or "" when absent.
func (c *Collector) Header(ctx context.Context) string {
	out, _ := c.collect(ctx, tools.EvidenceHeader)
	return out
}

// Symbols returns the symbol/bind-table dump text, or "" when absent. On
// hosts whose utility needs two passes the outputs are concatenated.
func (c *Collector) Symbols(ctx context.Context) string {
	out, _ := c.collect(ctx, tools.EvidenceSymbols)
	return out
}

func (c *Collector) collect(ctx context.Context, kind tools.EvidenceKind) (string, bool) {
	inv, ok := c.resolver.Resolve(kind)
	if !ok {
		c.log.Warnf("%s evidence is not supported on this platform", kind)
		return "", false
	}
	var buf strings.Builder
	for _, cmd := range inv.Commands {
		out, err := c.runner.Run(ctx, cmd.Path, cmd.Args)
		if err != nil {
			c.log.WithError(err).Warnf("%s invocation failed, continuing without %s evidence", cmd.Path, kind)
			return "", false
		}
		buf.Write(out)
	}
	return Decode(buf.String()), true
}

// Decode recovers a usable string from tool output, dropping invalid UTF-8
// sequences instead of failing.
func Decode(s string) string {
	return strings.ToValidUTF8(s, "")
}
