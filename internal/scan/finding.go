// Package scan evaluates a catalog of security signatures against the
// textual evidence dumped from an executable.
package scan

import "strings"

// Status is the outcome classification of a finding.
type Status string

const (
	StatusSecure   Status = "Secure"
	StatusInsecure Status = "Insecure"
	StatusInfo     Status = "Info"
	StatusWarning  Status = "Warning"
)

// Finding is one severity-ranked analysis result. Immutable once built.
type Finding struct {
	Issue       string  `json:"issue"`
	Status      Status  `json:"status"`
	Description string  `json:"description"`
	Severity    float64 `json:"cvss"`
	CWE         string  `json:"cwe"`
}

// BinaryType is the language runtime the executable was compiled with.
type BinaryType string

const (
	BinaryTypeSwift BinaryType = "Swift"
	BinaryTypeObjC  BinaryType = "Objective C"
)

// swiftRuntimeLib is the shared library whose presence marks a Swift binary.
const swiftRuntimeLib = "libswiftCore.dylib"

// DetectBinaryType classifies the executable from its linked-library list.
// First match wins; the default is Objective-C.
func DetectBinaryType(libs []string) BinaryType {
	for _, lib := range libs {
		if strings.Contains(lib, swiftRuntimeLib) {
			return BinaryTypeSwift
		}
	}
	return BinaryTypeObjC
}
