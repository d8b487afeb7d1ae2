package scan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlRule is the on-disk shape of an operator-supplied signature rule.
type yamlRule struct {
	Category    string   `yaml:"category"`
	Source      string   `yaml:"source"`
	Tokens      []string `yaml:"tokens"`
	Issue       string   `yaml:"issue"`
	Status      string   `yaml:"status"`
	Description string   `yaml:"description"`
	Severity    float64  `yaml:"severity"`
	CWE         string   `yaml:"cwe"`
}

type yamlRuleFile struct {
	Rules []yamlRule `yaml:"rules"`
}

// LoadRules reads extra signature rules from a YAML file. Loaded rules are
// presence-only (no absent-case finding) and are evaluated with the same
// engine as the builtin catalog.
func LoadRules(path string) ([]SignatureRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var file yamlRuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	rules := make([]SignatureRule, 0, len(file.Rules))
	for i, yr := range file.Rules {
		if yr.Category == "" || len(yr.Tokens) == 0 || yr.Issue == "" {
			return nil, fmt.Errorf("rule %d: category, tokens and issue are required", i)
		}
		status, err := parseStatus(yr.Status)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", yr.Category, err)
		}
		if yr.Severity < 0 {
			return nil, fmt.Errorf("rule %q: severity must not be negative", yr.Category)
		}
		source := SourceSymbols
		if yr.Source == string(SourceHeader) {
			source = SourceHeader
		}
		rules = append(rules, SignatureRule{
			Category:           yr.Category,
			Source:             source,
			Tokens:             yr.Tokens,
			MatchedIssue:       yr.Issue,
			MatchedStatus:      status,
			MatchedDescription: yr.Description,
			MatchedSeverity:    yr.Severity,
			MatchedCWE:         yr.CWE,
		})
	}
	return rules, nil
}

func parseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusSecure, StatusInsecure, StatusInfo, StatusWarning:
		return Status(s), nil
	case "":
		return StatusInfo, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}
