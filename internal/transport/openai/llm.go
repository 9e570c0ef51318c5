// Package openai adapts an OpenAI-compatible chat API as the engine's LLM
// oracle: natural-language-to-SQL generation and document-set analysis.
// Everything it returns is untrusted — generated SQL must pass the validator
// before the gateway will touch it.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docquery/internal/domain"
	domdoc "github.com/kailas-cloud/docquery/internal/domain/document"
	"github.com/kailas-cloud/docquery/internal/metrics"
)

// DefaultTimeout is the per-call budget. Deliberately longer than the SQL
// gateway timeout: the model is the slowest external dependency.
const DefaultTimeout = 30 * time.Second

// maxAnalysisDocs caps how many documents are serialized into the analysis
// prompt.
const maxAnalysisDocs = 20

const sqlSystemPrompt = `You translate natural-language questions about personal documents into a single SQLite SELECT statement.
Schema: documents(id, title, extracted_text, category, vendor, amount, transaction_date, tags, created_at, updated_at).
Rules: exactly one SELECT, no subqueries, no UNION, no writes, include a LIMIT. Reply with the SQL only.`

const analysisSystemPrompt = `You analyze a set of personal documents to answer the user's question.
Reply with JSON: {"answer": "<concise answer>", "confidence": <0.0-1.0>}.`

// Config holds the adapter settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Adapter is the LLM client. A failed call marks the adapter not ready until
// the next successful health check, so one bad request never poisons the
// orchestrator for subsequent queries.
type Adapter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
	healthy atomic.Bool
}

// New creates an adapter. An empty API key leaves it permanently not ready;
// the orchestrator degrades gracefully.
func New(cfg *Config) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	a := &Adapter{
		model:   cfg.Model,
		timeout: timeout,
		logger:  cfg.Logger,
	}
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		a.client = openai.NewClientWithConfig(clientCfg)
		a.healthy.Store(true)
	}
	return a
}

// IsReady reports whether the adapter is configured and its last interaction
// succeeded.
func (a *Adapter) IsReady() bool {
	return a.client != nil && a.healthy.Load()
}

// GenerateSQL asks the model for a SELECT statement answering the query.
// The result is raw untrusted text.
func (a *Adapter) GenerateSQL(ctx context.Context, naturalLanguageQuery string) (string, error) {
	content, err := a.complete(ctx, "generate_sql", sqlSystemPrompt, naturalLanguageQuery)
	if err != nil {
		return "", err
	}
	return stripCodeFence(content), nil
}

// Analyze asks the model to answer the query over the retrieved documents.
func (a *Adapter) Analyze(ctx context.Context, query string, docs []domdoc.Document) (domain.Analysis, error) {
	prompt := buildAnalysisPrompt(query, docs)
	content, err := a.complete(ctx, "analyze", analysisSystemPrompt, prompt)
	if err != nil {
		return domain.Analysis{}, err
	}

	var parsed domain.Analysis
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil || parsed.Answer == "" {
		// The model drifted off format; keep the text, admit low confidence.
		return domain.Analysis{Answer: strings.TrimSpace(content), Confidence: 0.5}, nil
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed, nil
}

// HealthCheck verifies API availability via ListModels and restores
// readiness on success.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.client == nil {
		return fmt.Errorf("adapter not configured: %w", domain.ErrLLMUnavailable)
	}
	if _, err := a.client.ListModels(ctx); err != nil {
		a.healthy.Store(false)
		return fmt.Errorf("list models: %w", domain.ErrLLMUnavailable)
	}
	a.healthy.Store(true)
	return nil
}

// complete runs one chat completion under the adapter's own timeout.
func (a *Adapter) complete(ctx context.Context, op, system, user string) (string, error) {
	if a.client == nil {
		return "", fmt.Errorf("adapter not configured: %w", domain.ErrLLMUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
	})
	duration := time.Since(start)

	if err != nil {
		a.healthy.Store(false)
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", a.parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrLLMUnavailable)
	}

	a.healthy.Store(true)
	metrics.LLMRequestsTotal.WithLabelValues(op, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(op).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable error from the API response. All
// errors are wrapped with domain.ErrLLMUnavailable so the orchestrator can
// degrade instead of failing.
func (a *Adapter) parseAPIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("llm call timed out after %s: %w", a.timeout, domain.ErrLLMUnavailable)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		a.logger.Warn("llm api error",
			zap.Int("status", apiErr.HTTPStatusCode),
			zap.String("message", apiErr.Message),
		)
		return fmt.Errorf("llm API error %d: %w", apiErr.HTTPStatusCode, domain.ErrLLMUnavailable)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		a.logger.Warn("llm request error", zap.Int("status", reqErr.HTTPStatusCode))
		return fmt.Errorf("llm request error %d: %w", reqErr.HTTPStatusCode, domain.ErrLLMUnavailable)
	}

	return fmt.Errorf("llm request failed: %w", domain.ErrLLMUnavailable)
}

// buildAnalysisPrompt serializes the query and the retrieved documents.
func buildAnalysisPrompt(query string, docs []domdoc.Document) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nDocuments:\n")

	n := len(docs)
	if n > maxAnalysisDocs {
		n = maxAnalysisDocs
	}
	for i := 0; i < n; i++ {
		d := &docs[i]
		fmt.Fprintf(&b, "- [%s] %s", d.ID(), d.Title())
		if d.Vendor() != "" {
			fmt.Fprintf(&b, " | vendor: %s", d.Vendor())
		}
		if d.Category() != "" {
			fmt.Fprintf(&b, " | category: %s", d.Category())
		}
		if d.Amount() != nil {
			fmt.Fprintf(&b, " | amount: %.2f", *d.Amount())
		}
		if d.TransactionAt() != nil {
			fmt.Fprintf(&b, " | date: %s", d.TransactionAt().Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stripCodeFence removes a markdown ``` fence around model output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
