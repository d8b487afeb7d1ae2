package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - category: jailbreak_detection
    tokens: ["_fork", "cydia"]
    issue: Binary may detect jailbreak
    status: Warning
    description: "The binary may check for a jailbroken device using %s."
  - category: keychain_api
    tokens: ["SecItemAdd"]
    issue: Binary uses Keychain API
    description: The binary may store secrets in the Keychain.
`)

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, StatusWarning, rules[0].MatchedStatus)
	assert.Equal(t, SourceSymbols, rules[0].Source)
	// Status defaults to Info when omitted.
	assert.Equal(t, StatusInfo, rules[1].MatchedStatus)

	findings := Evaluate(rules, "_fork SecItemAdd", "")
	require.Len(t, findings, 2)
	assert.Equal(t, "The binary may check for a jailbroken device using _fork.", findings[0].Description)
}

func TestLoadRules_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing tokens", content: "rules:\n  - category: x\n    issue: y\n"},
		{name: "unknown status", content: "rules:\n  - category: x\n    tokens: [a]\n    issue: y\n    status: Broken\n"},
		{name: "negative severity", content: "rules:\n  - category: x\n    tokens: [a]\n    issue: y\n    severity: -1\n"},
		{name: "not yaml", content: "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRules(writeRulesFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
