package query

import (
	"regexp"
	"strings"
)

// structuredPatterns match spend/aggregation phrasing, explicit currency
// amounts, relative time windows, and dollar-amount comparisons. Any hit
// routes the query to the structured path.
var structuredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:how much|total|sum|spent|spend)\b`),
	regexp.MustCompile(`\$\d+(?:\.\d{1,2})?`),
	regexp.MustCompile(`\b(?:last|this|past)\s+(?:week|month|year)\b`),
	regexp.MustCompile(`\b(?:over|under|above|below|more than|less than)\s+\$?\d`),
	regexp.MustCompile(`\b(?:how many|count)\b`),
	regexp.MustCompile(`\b(?:average|avg)\b`),
	regexp.MustCompile(`\bin\s+(?:19|20)\d{2}\b`),
}

// timeRangePattern detects a recognizable time range for the vendor+time rule.
var timeRangePattern = regexp.MustCompile(
	`\b(?:last|this|past)\s+(?:week|month|year)\b|\b(?:19|20)\d{2}\b|\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\b`,
)

// complexKeywords route analytical/comparative queries to the complex path.
var complexKeywords = []string{
	"compare", "comparison", "versus",
	"trend", "pattern", "analyze", "analysis",
	"why", "explain", "breakdown",
	"highest", "lowest", "most expensive", "cheapest",
	"increase", "decrease", "change over",
}

// vsPattern matches "vs" as a standalone word, so it also fires at the start
// or end of a query where a space-padded substring would miss.
var vsPattern = regexp.MustCompile(`\bvs\b`)

// rule is one (predicate, classification) pair. Rules are evaluated in
// order; the first match wins.
type rule struct {
	name  string
	match func(lowered string) bool
	class Classification
}

// rules is the ordered classification table. Structured-amount detection runs
// before complex-keyword detection so that "total spent, compare to last
// year" style queries land on the structured path.
var rules = []rule{
	{
		name: "structured_pattern",
		match: func(q string) bool {
			for _, p := range structuredPatterns {
				if p.MatchString(q) {
					return true
				}
			}
			return false
		},
		class: Structured,
	},
	{
		name: "vendor_with_time_range",
		match: func(q string) bool {
			return containsKnownVendor(q) && timeRangePattern.MatchString(q)
		},
		class: Structured,
	},
	{
		name: "complex_keyword",
		match: func(q string) bool {
			for _, kw := range complexKeywords {
				if strings.Contains(q, kw) {
					return true
				}
			}
			return vsPattern.MatchString(q)
		},
		class: Complex,
	},
}

// Classify routes a sanitized query to structured, semantic, or complex
// handling. Deterministic: a pure function of the query text.
func Classify(q string) Classification {
	lowered := strings.ToLower(q)
	for _, r := range rules {
		if r.match(lowered) {
			return r.class
		}
	}
	return Semantic
}

func containsKnownVendor(lowered string) bool {
	for alias := range VendorAliases {
		if strings.Contains(lowered, alias) {
			return true
		}
	}
	return false
}
