package search

import (
	domdoc "github.com/kailas-cloud/docquery/internal/domain/document"
	"github.com/kailas-cloud/docquery/internal/domain/query"
	"github.com/kailas-cloud/docquery/internal/usecase/structured"
)

// Outcome is the terminal state of one request.
type Outcome string

// Terminal states.
const (
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"
	OutcomeFailed    Outcome = "failed"
)

// Result is the caller-facing response for one query. Either the full
// validated result set is returned or none is — no partial sets.
type Result struct {
	Classification  query.Classification    `json:"classification,omitempty"`
	Documents       []domdoc.Summary        `json:"documents"`
	Aggregation     *structured.Aggregation `json:"aggregation,omitempty"`
	Analysis        string                  `json:"analysis,omitempty"`
	Confidence      *float64                `json:"confidence,omitempty"`
	Success         bool                    `json:"success"`
	Message         string                  `json:"message,omitempty"`
	ExecutionTimeMs int64                   `json:"execution_time_ms"`
}
