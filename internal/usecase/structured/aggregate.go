package structured

import (
	"strings"

	domdoc "github.com/kailas-cloud/docquery/internal/domain/document"
	"github.com/kailas-cloud/docquery/internal/domain/query"
)

// Aggregation summarizes amounts over a returned row set, with the filter
// labels attached for display.
type Aggregation struct {
	TotalAmount    float64 `json:"total"`
	AverageAmount  float64 `json:"average"`
	DocumentCount  int     `json:"count"`
	Vendor         string  `json:"vendor,omitempty"`
	Category       string  `json:"category,omitempty"`
	DateRangeLabel string  `json:"date_range_label,omitempty"`
}

// Aggregate computes sum/average/count over the returned rows when any
// aggregation flag is set or the raw query asks "how much"/"total". Null
// amounts count as zero. Returns nil when no aggregation applies.
func Aggregate(docs []domdoc.Document, filters *query.FilterSet, rawQuery string) *Aggregation {
	lowered := strings.ToLower(rawQuery)
	wanted := filters.WantsAggregation() ||
		strings.Contains(lowered, "how much") ||
		strings.Contains(lowered, "total")
	if !wanted {
		return nil
	}

	var total float64
	for i := range docs {
		if amt := docs[i].Amount(); amt != nil {
			total += *amt
		}
	}

	agg := &Aggregation{
		TotalAmount:    total,
		DocumentCount:  len(docs),
		Vendor:         filters.Vendor(),
		Category:       filters.Category(),
		DateRangeLabel: filters.DateLabel(),
	}
	if len(docs) > 0 {
		agg.AverageAmount = total / float64(len(docs))
	}
	return agg
}
