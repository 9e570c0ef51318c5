// Package search orchestrates one request/response cycle:
// sanitize → rate-check → classify → execute → (analyze) → audit.
package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/audit"
	"github.com/kailas-cloud/docquery/internal/domain"
	domdoc "github.com/kailas-cloud/docquery/internal/domain/document"
	"github.com/kailas-cloud/docquery/internal/domain/query"
	"github.com/kailas-cloud/docquery/internal/logger"
	"github.com/kailas-cloud/docquery/internal/metrics"
	"github.com/kailas-cloud/docquery/internal/repository/vectors"
	"github.com/kailas-cloud/docquery/internal/usecase/structured"
)

// Options tune the search paths.
type Options struct {
	TopK          int
	MinSimilarity float64
}

// Service is the query orchestrator. Every terminal state produces exactly
// one audit entry.
type Service struct {
	gateway   Gateway
	vectors   VectorSearcher
	validator Validator
	builder   Builder
	limiter   Limiter
	llm       LLM
	recorder  *audit.Recorder
	opts      Options
}

// New creates the orchestrator. Components are constructed once at
// application start and passed in explicitly — no hidden global state.
func New(
	gateway Gateway, vs VectorSearcher, validator Validator,
	builder Builder, limiter Limiter, llm LLM,
	recorder *audit.Recorder, opts Options,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = vectors.DefaultTopK
	}
	if opts.MinSimilarity <= 0 {
		opts.MinSimilarity = vectors.DefaultMinSimilarity
	}
	return &Service{
		gateway: gateway, vectors: vs, validator: validator,
		builder: builder, limiter: limiter, llm: llm,
		recorder: recorder, opts: opts,
	}
}

// Search runs one query through the state machine. Rejections short-circuit
// before any store access; execution and analysis errors are caught here,
// converted to a safe Result, and always audited with full context
// server-side.
func (s *Service) Search(ctx context.Context, raw string) (Result, error) {
	start := time.Now()
	entry := audit.NewEntry(raw)

	// Received → Sanitized
	sanitized, err := query.Sanitize(raw)
	if err != nil {
		return s.reject(ctx, entry, start, err)
	}
	entry.Suspicious = query.IsSuspicious(sanitized)

	// Sanitized → RateChecked
	if err := s.limiter.Admit(); err != nil {
		return s.reject(ctx, entry, start, err)
	}

	// RateChecked → Classified
	class := query.Classify(sanitized)
	entry.Classification = string(class)

	// Classified → Executing → (Analyzing)
	var result Result
	switch class {
	case query.Structured:
		result, err = s.runStructured(ctx, sanitized, &entry)
	case query.Semantic:
		result, err = s.runSemantic(ctx, sanitized, &entry)
	case query.Complex:
		result, err = s.runComplex(ctx, sanitized, &entry)
	}
	if err != nil {
		return s.fail(ctx, entry, class, start, err)
	}

	// → Completed
	result.Classification = class
	result.Success = true
	result.ExecutionTimeMs = time.Since(start).Milliseconds()

	entry.ResultCount = len(result.Documents)
	entry.Success = true
	entry.Duration = time.Since(start)
	s.recorder.Record(ctx, entry)

	metrics.QueriesTotal.WithLabelValues(string(class), string(OutcomeCompleted)).Inc()
	metrics.QueryDuration.WithLabelValues(string(class)).Observe(time.Since(start).Seconds())

	logger.FromContext(ctx).Info("query completed",
		zap.String("classification", string(class)),
		zap.Int("documents", len(result.Documents)),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// RecentAudit exposes the in-memory audit ring for the operator endpoint.
func (s *Service) RecentAudit(limit int) []audit.Entry {
	return s.recorder.RecentEntries(limit)
}

// runStructured builds parameterized SQL from extracted filters, validates
// it, executes it, and computes any requested aggregation.
func (s *Service) runStructured(ctx context.Context, q string, entry *audit.Entry) (Result, error) {
	filters, sqlText, params := s.builder.Build(q)

	safe, err := s.validator.Validate(sqlText)
	if err != nil {
		// The builder emits a fixed statement shape; a validation failure
		// here is a bug, not user error, but it still never executes.
		return Result{}, err
	}
	entry.GeneratedQuery = safe.String()

	docs, err := s.gateway.Execute(ctx, safe, params)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Documents:   summarize(docs, nil),
		Aggregation: structured.Aggregate(docs, &filters, q),
	}, nil
}

// runSemantic ranks stored embeddings and hydrates the matching documents.
func (s *Service) runSemantic(ctx context.Context, q string, entry *audit.Entry) (Result, error) {
	docs, similarity, err := s.semanticDocs(ctx, q, entry)
	if err != nil {
		return Result{}, err
	}
	return Result{Documents: summarize(docs, similarity)}, nil
}

// semanticDocs runs the similarity search and loads the matching documents
// from the relational store. Matches whose document no longer exists are
// dropped, honoring the invariant that every returned document exists at
// query time.
func (s *Service) semanticDocs(ctx context.Context, q string, entry *audit.Entry) ([]domdoc.Document, map[string]float64, error) {
	matches, err := s.vectors.SearchSimilar(ctx, q, s.opts.TopK, s.opts.MinSimilarity)
	if err != nil {
		logger.FromContext(ctx).Error("vector search failed", zap.Error(err))
		return nil, nil, domain.ErrQueryExecution
	}
	metrics.VectorSearchCandidates.Observe(float64(len(matches)))
	entry.GeneratedQuery = "vector_similarity_search"

	ids := make([]string, len(matches))
	similarity := make(map[string]float64, len(matches))
	for i, m := range matches {
		ids[i] = m.DocumentID
		similarity[m.DocumentID] = m.Similarity
	}

	docs, err := s.gateway.GetMany(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return docs, similarity, nil
}

// runComplex retrieves via the semantic path (optionally upgraded by
// LLM-generated SQL) and adds an analysis pass. Analysis failure degrades
// back to the retrieved result set with no analysis rather than failing the
// request.
func (s *Service) runComplex(ctx context.Context, q string, entry *audit.Entry) (Result, error) {
	log := logger.FromContext(ctx)

	docs, result, err := s.complexRetrieve(ctx, q, entry)
	if err != nil {
		return Result{}, err
	}

	if !s.llm.IsReady() {
		log.Debug("llm not ready, returning retrieval-only result")
		return result, nil
	}

	// Analyzing
	analysis, err := s.llm.Analyze(ctx, q, docs)
	if err != nil {
		log.Warn("analysis degraded", zap.Error(err))
		return result, nil
	}
	result.Analysis = analysis.Answer
	confidence := analysis.Confidence
	result.Confidence = &confidence
	return result, nil
}

// complexRetrieve prefers LLM-generated SQL when the adapter is ready, with
// the validator as the mandatory chokepoint; any failure in that chain falls
// back to semantic retrieval.
func (s *Service) complexRetrieve(ctx context.Context, q string, entry *audit.Entry) ([]domdoc.Document, Result, error) {
	log := logger.FromContext(ctx)

	if s.llm.IsReady() {
		generated, err := s.llm.GenerateSQL(ctx, q)
		if err == nil {
			safe, verr := s.validator.Validate(generated)
			if verr != nil {
				// Untrusted model output failed static analysis; never
				// executed. Flag and fall through to the semantic path.
				entry.SecurityEvent = true
				log.Warn("generated sql rejected", zap.Error(verr))
			} else {
				docs, xerr := s.gateway.Execute(ctx, safe, nil)
				if xerr == nil {
					entry.GeneratedQuery = safe.String()
					return docs, Result{Documents: summarize(docs, nil)}, nil
				}
				log.Warn("generated sql execution degraded", zap.Error(xerr))
			}
		} else {
			log.Warn("sql generation degraded", zap.Error(err))
		}
	}

	docs, similarity, err := s.semanticDocs(ctx, q, entry)
	if err != nil {
		return nil, Result{}, err
	}
	return docs, Result{Documents: summarize(docs, similarity)}, nil
}

// reject terminates in Rejected: fast, no execution attempted.
func (s *Service) reject(ctx context.Context, entry audit.Entry, start time.Time, err error) (Result, error) {
	entry.Duration = time.Since(start)
	entry.ErrorDetail = err.Error()
	entry.SecurityEvent = errors.Is(err, domain.ErrSecurity)
	s.recorder.Record(ctx, entry)

	reason := "validation"
	switch {
	case errors.Is(err, domain.ErrSecurity):
		reason = "security"
	case errors.Is(err, domain.ErrRateLimited):
		reason = "rate_limit"
	}
	metrics.RejectionsTotal.WithLabelValues(reason).Inc()
	metrics.QueriesTotal.WithLabelValues("none", string(OutcomeRejected)).Inc()

	return Result{
		Documents:       []domdoc.Summary{},
		Message:         safeMessage(err),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, err
}

// fail terminates in Failed: the audit entry records the failure before the
// error surfaces.
func (s *Service) fail(ctx context.Context, entry audit.Entry, class query.Classification, start time.Time, err error) (Result, error) {
	entry.Duration = time.Since(start)
	entry.ErrorDetail = err.Error()
	entry.SecurityEvent = errors.Is(err, domain.ErrSecurity)
	s.recorder.Record(ctx, entry)

	metrics.QueriesTotal.WithLabelValues(string(class), string(OutcomeFailed)).Inc()

	return Result{
		Classification:  class,
		Documents:       []domdoc.Summary{},
		Message:         safeMessage(err),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, err
}

// safeMessage maps an error to caller-safe text. Internal detail stays in
// the audit log.
func safeMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "query is empty or malformed"
	case errors.Is(err, domain.ErrSecurity):
		return "query rejected by security policy"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate limit exceeded, retry later"
	case errors.Is(err, domain.ErrTimeout):
		return "query timed out, retry later"
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "analysis is temporarily unavailable"
	default:
		return "query could not be executed"
	}
}

// summarize projects documents to summaries, attaching similarity scores
// when present.
func summarize(docs []domdoc.Document, similarity map[string]float64) []domdoc.Summary {
	out := make([]domdoc.Summary, 0, len(docs))
	for i := range docs {
		sum := docs[i].Summarize()
		if similarity != nil {
			if score, ok := similarity[sum.ID]; ok {
				s := score
				sum.Similarity = &s
			}
		}
		out = append(out, sum)
	}
	return out
}
