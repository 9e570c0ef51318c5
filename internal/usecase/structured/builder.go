// Package structured extracts vendor/category/date/amount filters from
// query text and builds parameterized SQL. Every extraction rule is
// independent and best-effort: a missing match leaves its filter unset,
// never an error.
package structured

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/docquery/internal/domain/query"
)

// MaxRows caps the built statement's LIMIT.
const MaxRows = 100

var (
	minAmountPattern = regexp.MustCompile(`(?:over|above|more than)\s+\$?(\d+(?:\.\d{1,2})?)`)
	maxAmountPattern = regexp.MustCompile(`(?:under|below|less than)\s+\$?(\d+(?:\.\d{1,2})?)`)
	yearPattern      = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
	vendorPhrase     = regexp.MustCompile(`\b(?:at|from|on)\s+([a-z0-9][a-z0-9 '&-]*)`)
)

// vendorStopWords bound the free-form vendor phrase.
var vendorStopWords = map[string]struct{}{
	"last": {}, "this": {}, "past": {}, "in": {}, "for": {}, "over": {},
	"under": {}, "above": {}, "below": {}, "during": {}, "since": {},
	"week": {}, "month": {}, "year": {}, "today": {}, "yesterday": {},
}

// Builder turns query text into a filter set plus parameterized SQL. The
// clock is injectable so relative date ranges are testable.
type Builder struct {
	now func() time.Time
}

// New creates a builder.
func New() *Builder {
	return &Builder{now: time.Now}
}

// WithClock overrides the time source (tests).
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// extractor is one best-effort filter rule.
type extractor func(f *query.FilterSet, lowered string, now time.Time)

// Build extracts filters from the query and renders the statement. All
// predicate values are bound as parameters, never interpolated.
func (b *Builder) Build(q string) (query.FilterSet, string, []any) {
	lowered := strings.ToLower(q)
	now := b.now()

	var filters query.FilterSet
	for _, extract := range []extractor{
		extractVendor,
		extractCategory,
		extractAmounts,
		extractDateRange,
		extractAggregation,
	} {
		extract(&filters, lowered, now)
	}

	sql, params := render(&filters)
	return filters, sql, params
}

// render builds the parameterized SELECT from the filter set.
func render(f *query.FilterSet) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM documents WHERE 1=1")
	params := make([]any, 0, 6)

	if f.Vendor() != "" {
		sb.WriteString(" AND vendor LIKE ?")
		params = append(params, "%"+f.Vendor()+"%")
	}
	if f.Category() != "" {
		sb.WriteString(" AND category = ?")
		params = append(params, f.Category())
	}
	if f.DateStart() != nil {
		sb.WriteString(" AND transaction_date >= ?")
		params = append(params, f.DateStart().Format("2006-01-02"))
	}
	if f.DateEnd() != nil {
		sb.WriteString(" AND transaction_date <= ?")
		params = append(params, f.DateEnd().Format("2006-01-02"))
	}
	if f.MinAmount() != nil {
		sb.WriteString(" AND amount >= ?")
		params = append(params, *f.MinAmount())
	}
	if f.MaxAmount() != nil {
		sb.WriteString(" AND amount <= ?")
		params = append(params, *f.MaxAmount())
	}

	sb.WriteString(" ORDER BY transaction_date DESC LIMIT ")
	sb.WriteString(strconv.Itoa(MaxRows))
	return sb.String(), params
}

// extractVendor matches the alias table first, then falls back to the
// phrase following a preposition, bounded by a stop word or end of string.
// The fallback is accepted only at 2-30 characters.
func extractVendor(f *query.FilterSet, lowered string, _ time.Time) {
	for alias, canonical := range query.VendorAliases {
		if strings.Contains(lowered, alias) {
			// Prefer the longest alias hit ("whole foods" over "foods").
			if len(alias) > len(f.Vendor()) || f.Vendor() == "" {
				f.SetVendor(canonical)
			}
		}
	}
	if f.Vendor() != "" {
		return
	}

	m := vendorPhrase.FindStringSubmatch(lowered)
	if m == nil {
		return
	}
	words := strings.Fields(m[1])
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := vendorStopWords[w]; stop {
			break
		}
		kept = append(kept, w)
	}
	phrase := strings.Join(kept, " ")
	if len(phrase) < 2 || len(phrase) > 30 {
		return
	}
	f.SetVendor(titleCase(phrase))
}

// extractCategory substring-matches the fixed category vocabulary.
func extractCategory(f *query.FilterSet, lowered string, _ time.Time) {
	for _, cat := range query.Categories {
		if strings.Contains(lowered, cat) {
			f.SetCategory(canonicalCategory(cat))
			return
		}
	}
}

// extractAmounts parses "over/above/more than $N" and "under/below/less
// than $N" bounds.
func extractAmounts(f *query.FilterSet, lowered string, _ time.Time) {
	if m := minAmountPattern.FindStringSubmatch(lowered); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			f.SetMinAmount(v)
		}
	}
	if m := maxAmountPattern.FindStringSubmatch(lowered); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			f.SetMaxAmount(v)
		}
	}
}

// dateRule is one named relative-range rule. Only the first matching rule
// applies.
type dateRule struct {
	phrase string
	apply  func(f *query.FilterSet, now time.Time)
}

var dateRules = []dateRule{
	{"last week", func(f *query.FilterSet, now time.Time) {
		f.SetDateRange(now.AddDate(0, 0, -7), now, "last 7 days")
	}},
	{"this week", func(f *query.FilterSet, now time.Time) {
		start := now.AddDate(0, 0, -int(now.Weekday()))
		f.SetDateRange(startOfDay(start), now, "this week")
	}},
	{"last month", func(f *query.FilterSet, now time.Time) {
		f.SetDateRange(now.AddDate(0, 0, -30), now, "last 30 days")
	}},
	{"this month", func(f *query.FilterSet, now time.Time) {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		f.SetDateRange(start, now, "this month")
	}},
	{"last year", func(f *query.FilterSet, now time.Time) {
		f.SetDateRange(now.AddDate(-1, 0, 0), now, "last 12 months")
	}},
	{"this year", func(f *query.FilterSet, now time.Time) {
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		f.SetDateRange(start, now, "this year")
	}},
}

// extractDateRange applies the first matching named range, or an explicit
// 4-digit year as a full-year range.
func extractDateRange(f *query.FilterSet, lowered string, now time.Time) {
	for _, r := range dateRules {
		if strings.Contains(lowered, r.phrase) {
			r.apply(f, now)
			return
		}
	}
	if m := yearPattern.FindStringSubmatch(lowered); m != nil {
		year, _ := strconv.Atoi(m[1])
		start := time.Date(year, 1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(year, 12, 31, 23, 59, 59, 0, now.Location())
		f.SetDateRange(start, end, m[1])
	}
}

// extractAggregation sets sum/average/count flags from their trigger words.
func extractAggregation(f *query.FilterSet, lowered string, _ time.Time) {
	sum := strings.Contains(lowered, "total") ||
		strings.Contains(lowered, "how much") ||
		strings.Contains(lowered, "sum")
	average := strings.Contains(lowered, "average") || strings.Contains(lowered, "avg")
	count := strings.Contains(lowered, "how many") || strings.Contains(lowered, "count")
	f.SetAggregation(sum, average, count)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// canonicalCategory folds plural/synonym spellings onto the stored value.
func canonicalCategory(cat string) string {
	switch cat {
	case "groceries":
		return "grocery"
	case "dining":
		return "restaurant"
	case "fuel":
		return "gas"
	default:
		return cat
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
