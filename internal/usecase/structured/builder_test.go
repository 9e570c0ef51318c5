package structured

import (
	"strings"
	"testing"
	"time"
)

// fixedNow pins relative date ranges.
var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testBuilder() *Builder {
	return New().WithClock(func() time.Time { return fixedNow })
}

func TestBuild_VendorAndLastMonth(t *testing.T) {
	filters, sql, params := testBuilder().Build("how much did I spend at Kroger last month")

	if filters.Vendor() != "Kroger" {
		t.Errorf("expected vendor Kroger, got %q", filters.Vendor())
	}
	if filters.DateStart() == nil || filters.DateEnd() == nil {
		t.Fatal("expected a date range")
	}
	wantStart := fixedNow.AddDate(0, 0, -30)
	if !filters.DateStart().Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, filters.DateStart())
	}
	if filters.DateLabel() != "last 30 days" {
		t.Errorf("expected label 'last 30 days', got %q", filters.DateLabel())
	}
	if !filters.WantsAggregation() {
		t.Error(`"how much" should set the sum flag`)
	}

	wantSQL := "SELECT * FROM documents WHERE 1=1 AND vendor LIKE ?" +
		" AND transaction_date >= ? AND transaction_date <= ?" +
		" ORDER BY transaction_date DESC LIMIT 100"
	if sql != wantSQL {
		t.Errorf("unexpected SQL:\ngot:  %q\nwant: %q", sql, wantSQL)
	}
	if len(params) != 3 {
		t.Fatalf("expected 3 params, got %d: %v", len(params), params)
	}
	if params[0] != "%Kroger%" {
		t.Errorf("expected vendor param %%Kroger%%, got %v", params[0])
	}
}

func TestBuild_CategoryCanonicalized(t *testing.T) {
	cases := []struct {
		q    string
		want string
	}{
		{"groceries from last week", "grocery"},
		{"dining receipts", "restaurant"},
		{"fuel purchases", "gas"},
		{"medical bills", "medical"},
	}
	for _, tc := range cases {
		filters, _, _ := testBuilder().Build(tc.q)
		if filters.Category() != tc.want {
			t.Errorf("Build(%q): category %q, want %q", tc.q, filters.Category(), tc.want)
		}
	}
}

func TestBuild_AmountBounds(t *testing.T) {
	filters, sql, params := testBuilder().Build("purchases over $50 and under $200")

	if filters.MinAmount() == nil || *filters.MinAmount() != 50 {
		t.Errorf("expected min amount 50, got %v", filters.MinAmount())
	}
	if filters.MaxAmount() == nil || *filters.MaxAmount() != 200 {
		t.Errorf("expected max amount 200, got %v", filters.MaxAmount())
	}
	if !strings.Contains(sql, "amount >= ?") || !strings.Contains(sql, "amount <= ?") {
		t.Errorf("expected both amount predicates in %q", sql)
	}
	if len(params) != 2 {
		t.Fatalf("expected 2 params, got %v", params)
	}
}

func TestBuild_ExplicitYear(t *testing.T) {
	filters, _, _ := testBuilder().Build("what did I buy in 2024")

	if filters.DateStart() == nil || filters.DateStart().Year() != 2024 {
		t.Fatalf("expected 2024 range start, got %v", filters.DateStart())
	}
	if filters.DateEnd().Year() != 2024 || filters.DateEnd().Month() != time.December {
		t.Errorf("expected end of 2024, got %v", filters.DateEnd())
	}
	if filters.DateLabel() != "2024" {
		t.Errorf("expected label 2024, got %q", filters.DateLabel())
	}
}

func TestBuild_NamedRangeBeatsYear(t *testing.T) {
	// "this year" must apply the named rule, not the year regex.
	filters, _, _ := testBuilder().Build("spending this year")
	wantStart := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if filters.DateStart() == nil || !filters.DateStart().Equal(wantStart) {
		t.Fatalf("expected start %v, got %v", wantStart, filters.DateStart())
	}
	if filters.DateLabel() != "this year" {
		t.Errorf("expected label 'this year', got %q", filters.DateLabel())
	}
}

func TestBuild_VendorPhraseFallback(t *testing.T) {
	filters, _, params := testBuilder().Build("receipts from corner bakery last week")

	if filters.Vendor() != "Corner Bakery" {
		t.Errorf("expected phrase vendor Corner Bakery, got %q", filters.Vendor())
	}
	if len(params) == 0 || params[0] != "%Corner Bakery%" {
		t.Errorf("expected bound vendor param, got %v", params)
	}
}

func TestBuild_LongestAliasWins(t *testing.T) {
	filters, _, _ := testBuilder().Build("whole foods receipt")
	if filters.Vendor() != "Whole Foods" {
		t.Errorf("expected Whole Foods, got %q", filters.Vendor())
	}
}

func TestBuild_EmptyFilters(t *testing.T) {
	filters, sql, params := testBuilder().Build("documents")

	if !filters.IsEmpty() {
		t.Error("expected an empty filter set")
	}
	if sql != "SELECT * FROM documents WHERE 1=1 ORDER BY transaction_date DESC LIMIT 100" {
		t.Errorf("unexpected SQL: %q", sql)
	}
	if len(params) != 0 {
		t.Errorf("expected no params, got %v", params)
	}
}

func TestBuild_AggregationFlags(t *testing.T) {
	cases := []struct {
		q                 string
		sum, avg, countof bool
	}{
		{"total grocery spend", true, false, false},
		{"average utility bill", false, true, false},
		{"how many receipts", false, false, true},
		{"recent documents", false, false, false},
	}
	for _, tc := range cases {
		filters, _, _ := testBuilder().Build(tc.q)
		if filters.WantSum() != tc.sum || filters.WantAverage() != tc.avg || filters.WantCount() != tc.countof {
			t.Errorf("Build(%q): flags sum=%v avg=%v count=%v, want %v/%v/%v",
				tc.q, filters.WantSum(), filters.WantAverage(), filters.WantCount(),
				tc.sum, tc.avg, tc.countof)
		}
	}
}
