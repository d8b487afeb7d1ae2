package scan

import (
	"fmt"
	"strings"
)

// Evaluate runs every rule against its evidence text and returns the matched
// findings. Rules are pure over the immutable inputs, so evaluation order
// does not affect the outcome; results keep catalog order.
//
// A rule whose evidence text is absent (empty) is skipped entirely: missing
// evidence means "no data", never an absent-token finding.
func Evaluate(rules []SignatureRule, symbols, header string) []Finding {
	var findings []Finding
	for _, rule := range rules {
		text := symbols
		if rule.Source == SourceHeader {
			text = header
		}
		if text == "" {
			continue
		}
		if f, ok := rule.apply(text); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

// apply evaluates one rule. The match condition is an explicit count test:
// at least one distinct token present in the text.
func (r SignatureRule) apply(text string) (Finding, bool) {
	matched := r.matchedTokens(text)
	if len(matched) >= 1 {
		desc := r.MatchedDescription
		if strings.Contains(desc, "%s") {
			desc = fmt.Sprintf(desc, strings.Join(matched, ", "))
		}
		return Finding{
			Issue:       r.MatchedIssue,
			Status:      r.MatchedStatus,
			Description: desc,
			Severity:    r.MatchedSeverity,
			CWE:         r.MatchedCWE,
		}, true
	}
	if r.AbsentIssue == "" {
		return Finding{}, false
	}
	return Finding{
		Issue:       r.AbsentIssue,
		Status:      r.AbsentStatus,
		Description: r.AbsentDescription,
		Severity:    r.AbsentSeverity,
		CWE:         r.AbsentCWE,
	}, true
}

// matchedTokens returns the distinct catalog tokens present in text,
// in catalog order.
func (r SignatureRule) matchedTokens(text string) []string {
	var matched []string
	seen := make(map[string]struct{})
	for _, token := range r.Tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		if strings.Contains(text, token) {
			seen[token] = struct{}{}
			matched = append(matched, token)
		}
	}
	return matched
}
