package query

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		q    string
		want Classification
	}{
		{"spend_with_vendor_and_range", "how much did I spend at Kroger last month", Structured},
		{"semantic_default", "show me medical bills", Semantic},
		{"complex_compare", "compare my grocery spending across months", Complex},
		{"explicit_amount", "receipts for $42.50", Structured},
		{"relative_window", "bills from last week", Structured},
		{"amount_comparison", "purchases over $100", Structured},
		{"count", "how many receipts do I have", Structured},
		{"average", "average grocery bill", Structured},
		{"explicit_year", "what did I buy in 2024", Structured},
		{"vendor_plus_month", "Amazon orders from january", Structured},
		{"vendor_without_range", "my amazon orders", Semantic},
		{"vs_midword", "groceries vs restaurants", Complex},
		{"vs_trailing", "what are my groceries vs", Complex},
		{"trend", "trend in my utility bills", Complex},
		{"why", "why is my electric bill high", Complex},
		{"highest", "highest restaurant bill", Complex},
		{"plain_lookup", "find my car insurance documents", Semantic},
		{"empty", "", Semantic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.q); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.q, got, tc.want)
			}
		})
	}
}

// Structured-amount detection runs before complex-keyword detection, so
// aggregation phrasing wins over a comparative keyword in the same query.
func TestClassify_StructuredBeatsComplex(t *testing.T) {
	if got := Classify("total spent, compare to last year"); got != Structured {
		t.Fatalf("expected Structured, got %v", got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	if got := Classify("HOW MUCH DID I SPEND AT KROGER LAST MONTH"); got != Structured {
		t.Fatalf("expected Structured, got %v", got)
	}
}

func TestClassificationIsValid(t *testing.T) {
	for _, c := range []Classification{Structured, Semantic, Complex} {
		if !c.IsValid() {
			t.Errorf("%v should be valid", c)
		}
	}
	if Classification("other").IsValid() {
		t.Error("unknown classification should be invalid")
	}
}
