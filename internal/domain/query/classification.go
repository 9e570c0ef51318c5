package query

// Classification is the routing decision for a sanitized query.
type Classification string

// Classification constants.
const (
	// Structured queries are answered by filtering/aggregating structured
	// fields (vendor, amount, date) via SQL.
	Structured Classification = "structured"
	// Semantic queries are answered by nearest-neighbor search over text
	// embeddings.
	Semantic Classification = "semantic"
	// Complex queries need multi-step reasoning, optionally assisted by an
	// LLM analysis pass over retrieved documents.
	Complex Classification = "complex"
)

// IsValid checks if the classification is one of the supported values.
func (c Classification) IsValid() bool {
	return c == Structured || c == Semantic || c == Complex
}
