package search

import (
	"context"

	"github.com/kailas-cloud/docquery/internal/domain"
	domdoc "github.com/kailas-cloud/docquery/internal/domain/document"
	"github.com/kailas-cloud/docquery/internal/domain/query"
	"github.com/kailas-cloud/docquery/internal/domain/sqlguard"
	"github.com/kailas-cloud/docquery/internal/repository/vectors"
)

// Gateway executes validated read-only SQL and hydrates documents.
type Gateway interface {
	Execute(ctx context.Context, stmt sqlguard.SafeSQL, params []any) ([]domdoc.Document, error)
	GetMany(ctx context.Context, ids []string) ([]domdoc.Document, error)
}

// VectorSearcher ranks stored embeddings against a query text.
type VectorSearcher interface {
	SearchSimilar(ctx context.Context, queryText string, k int, minSimilarity float64) ([]vectors.Match, error)
}

// Validator is the single chokepoint every generated statement passes
// through before execution.
type Validator interface {
	Validate(sql string) (sqlguard.SafeSQL, error)
}

// Builder extracts structured filters and renders parameterized SQL.
type Builder interface {
	Build(q string) (query.FilterSet, string, []any)
}

// Limiter admits or rejects a request under the sliding-window quotas.
type Limiter interface {
	Admit() error
}

// LLM is the optional analysis oracle. Failures must be catchable without
// crashing the caller.
type LLM interface {
	IsReady() bool
	GenerateSQL(ctx context.Context, naturalLanguageQuery string) (string, error)
	Analyze(ctx context.Context, q string, docs []domdoc.Document) (domain.Analysis, error)
}
