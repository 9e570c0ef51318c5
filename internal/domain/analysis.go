package domain

// Analysis is a natural-language answer produced by the LLM adapter over a
// retrieved document set.
type Analysis struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}
