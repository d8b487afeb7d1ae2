package analysis

import (
	"github.com/machoscan/machoscan/internal/macho"
	"github.com/machoscan/machoscan/internal/scan"
)

// AnalysisReport is the terminal value of one analysis run. It is handed to
// the caller as-is and never mutated afterwards; storage and presentation
// belong to the caller.
type AnalysisReport struct {
	// Libraries preserves the linked-library listing order for display.
	Libraries []string `json:"libs"`
	// Findings holds only categories that actually produced a result.
	Findings []scan.Finding `json:"bin_res"`
	// Strings is the deduplicated, escaped printable-string set.
	Strings    []string          `json:"strings"`
	Macho      *macho.HeaderInfo `json:"macho,omitempty"`
	BinaryType scan.BinaryType   `json:"bin_type,omitempty"`
}

func emptyReport() *AnalysisReport {
	return &AnalysisReport{
		Libraries: []string{},
		Findings:  []scan.Finding{},
		Strings:   []string{},
	}
}
