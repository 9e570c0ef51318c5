package query

import "time"

// FilterSet holds the structured filters extracted from a query. Constructed
// per request by the structured builder, discarded after execution. Every
// field is optional — absence of a match leaves the filter unset.
type FilterSet struct {
	vendor    string
	category  string
	dateStart *time.Time
	dateEnd   *time.Time
	minAmount *float64
	maxAmount *float64
	dateLabel string

	wantSum     bool
	wantAverage bool
	wantCount   bool
}

// Vendor returns the canonical vendor filter ("" when unset).
func (f *FilterSet) Vendor() string { return f.vendor }

// Category returns the category filter ("" when unset).
func (f *FilterSet) Category() string { return f.category }

// DateStart returns the inclusive range start, nil when unset.
func (f *FilterSet) DateStart() *time.Time { return f.dateStart }

// DateEnd returns the inclusive range end, nil when unset.
func (f *FilterSet) DateEnd() *time.Time { return f.dateEnd }

// MinAmount returns the amount lower bound, nil when unset.
func (f *FilterSet) MinAmount() *float64 { return f.minAmount }

// MaxAmount returns the amount upper bound, nil when unset.
func (f *FilterSet) MaxAmount() *float64 { return f.maxAmount }

// DateLabel returns the human-readable date range label ("" when unset).
func (f *FilterSet) DateLabel() string { return f.dateLabel }

// WantSum reports whether a sum aggregation was requested.
func (f *FilterSet) WantSum() bool { return f.wantSum }

// WantAverage reports whether an average aggregation was requested.
func (f *FilterSet) WantAverage() bool { return f.wantAverage }

// WantCount reports whether a count aggregation was requested.
func (f *FilterSet) WantCount() bool { return f.wantCount }

// WantsAggregation reports whether any aggregation flag is set.
func (f *FilterSet) WantsAggregation() bool {
	return f.wantSum || f.wantAverage || f.wantCount
}

// IsEmpty reports whether no filter was extracted.
func (f *FilterSet) IsEmpty() bool {
	return f.vendor == "" && f.category == "" &&
		f.dateStart == nil && f.dateEnd == nil &&
		f.minAmount == nil && f.maxAmount == nil
}

// SetVendor sets the vendor filter.
func (f *FilterSet) SetVendor(v string) { f.vendor = v }

// SetCategory sets the category filter.
func (f *FilterSet) SetCategory(c string) { f.category = c }

// SetDateRange sets the inclusive date range and its display label.
func (f *FilterSet) SetDateRange(start, end time.Time, label string) {
	f.dateStart = &start
	f.dateEnd = &end
	f.dateLabel = label
}

// SetMinAmount sets the amount lower bound.
func (f *FilterSet) SetMinAmount(v float64) { f.minAmount = &v }

// SetMaxAmount sets the amount upper bound.
func (f *FilterSet) SetMaxAmount(v float64) { f.maxAmount = &v }

// SetAggregation sets the aggregation flags.
func (f *FilterSet) SetAggregation(sum, average, count bool) {
	f.wantSum = sum
	f.wantAverage = average
	f.wantCount = count
}
