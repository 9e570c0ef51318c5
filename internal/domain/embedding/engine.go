// Package embedding turns text into fixed-dimension vectors without an
// external model. The embedding is locality-sensitive, not learned:
// near-duplicate wording and shared domain vocabulary push vectors closer.
// Given the same input text the output is reproducible bit-for-bit.
package embedding

import (
	"crypto/md5" //nolint:gosec // non-cryptographic use: stable hash projection
	"encoding/binary"
	"regexp"
	"strings"
)

// Dimension is the fixed embedding vector size.
const Dimension = 384

// Component weights: trigrams / words / domain signals.
const (
	trigramWeight = 0.2
	wordWeight    = 0.5
	signalWeight  = 0.3
)

// projections is the number of hash-derived (index, sign) pairs each token
// contributes to the accumulator.
const projections = 4

var (
	nonAlnum      = regexp.MustCompile(`[^a-z0-9\s]+`)
	dollarPattern = regexp.MustCompile(`\$\d+(?:\.\d{1,2})?|\b\d+\s*dollars?\b`)
	datePattern   = regexp.MustCompile(`\b(?:19|20)\d{2}\b|\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b|\b(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\b`)
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "been": {}, "i": {}, "my": {}, "me": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "do": {}, "did": {},
	"how": {}, "what": {}, "when": {}, "where": {}, "all": {}, "any": {},
	"show": {}, "find": {}, "get": {},
}

// signalGroup names a keyword group and the vocabulary that triggers it. A
// match adds weighted mass to the group's hash-derived positions, so documents
// and queries sharing category terms land near each other.
type signalGroup struct {
	group string
	terms []string
}

// signalLexicon is an ordered table, not a map: groups can collide on
// accumulator indices, and float32 addition order must be fixed for the
// embedding to stay reproducible.
var signalLexicon = []signalGroup{
	{"grocery", []string{"grocery", "groceries", "food", "supermarket", "produce"}},
	{"medical", []string{"medical", "doctor", "hospital", "pharmacy", "prescription", "clinic", "dental"}},
	{"utilities", []string{"utility", "utilities", "electric", "electricity", "water", "internet", "phone"}},
	{"restaurant", []string{"restaurant", "dining", "cafe", "coffee", "lunch", "dinner", "takeout"}},
	{"fuel", []string{"gas", "fuel", "gasoline", "station"}},
	{"travel", []string{"travel", "flight", "hotel", "airline", "rental"}},
	{"retail", []string{"store", "shop", "purchase", "order", "receipt"}},
	{"finance", []string{"invoice", "bill", "payment", "tax", "insurance", "statement", "refund"}},
	{"electronics", []string{"electronics", "computer", "laptop", "phone", "appliance"}},
	{"home", []string{"home", "furniture", "hardware", "repair", "improvement"}},
}

// Engine is the deterministic, model-free text-to-vector function. Stateless:
// it owns no data and performs no I/O.
type Engine struct {
	dim int
}

// NewEngine creates an embedding engine at the fixed dimension.
func NewEngine() *Engine {
	return &Engine{dim: Dimension}
}

// Dim returns the vector dimension.
func (e *Engine) Dim() int { return e.dim }

// Embed computes the L2-normalized embedding of the text. Pure function:
// embed(t) == embed(t) for all t.
func (e *Engine) Embed(text string) []float32 {
	lowered := strings.ToLower(text)
	normalized := normalizeText(lowered)
	vec := make([]float32, e.dim)

	e.addTrigrams(vec, normalized)
	e.addWords(vec, normalized)
	// Detectors look at the lowered raw text: punctuation stripping would
	// erase the $ and date separators they key on.
	e.addSignals(vec, normalized, lowered)

	normalize(vec)
	return vec
}

// addTrigrams hashes each character trigram into the accumulator.
func (e *Engine) addTrigrams(vec []float32, text string) {
	compact := strings.ReplaceAll(text, " ", "")
	if len(compact) < 3 {
		return
	}
	for i := 0; i+3 <= len(compact); i++ {
		e.project(vec, "3g:"+compact[i:i+3], trigramWeight)
	}
}

// addWords hashes word unigrams and bigrams after stop-word removal,
// weighted higher than trigrams.
func (e *Engine) addWords(vec []float32, text string) {
	words := make([]string, 0, 16)
	for _, w := range strings.Fields(text) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	for i, w := range words {
		e.project(vec, "w:"+w, wordWeight)
		if i+1 < len(words) {
			e.project(vec, "b:"+w+" "+words[i+1], wordWeight)
		}
	}
}

// addSignals adds keyword-group mass plus boolean detectors for
// dollar-amount and date-looking content.
func (e *Engine) addSignals(vec []float32, normalized, raw string) {
	for _, sg := range signalLexicon {
		for _, term := range sg.terms {
			if strings.Contains(normalized, term) {
				e.project(vec, "sig:"+sg.group, signalWeight)
				break
			}
		}
	}
	if dollarPattern.MatchString(raw) {
		e.project(vec, "sig:has_amount", signalWeight)
	}
	if datePattern.MatchString(raw) {
		e.project(vec, "sig:has_date", signalWeight)
	}
}

// project folds a token into the accumulator via hash-derived (index, sign)
// pairs. The MD5 digest yields four independent 4-byte projections.
func (e *Engine) project(vec []float32, token string, weight float64) {
	digest := md5.Sum([]byte(token)) //nolint:gosec // stable projection hash
	for p := 0; p < projections; p++ {
		chunk := binary.LittleEndian.Uint32(digest[p*4 : p*4+4])
		idx := int(chunk>>1) % e.dim
		sign := float64(1)
		if chunk&1 == 1 {
			sign = -1
		}
		vec[idx] += float32(sign * weight)
	}
}

// normalizeText strips punctuation from already-lowered text, collapsing
// whitespace runs.
func normalizeText(lowered string) string {
	cleaned := nonAlnum.ReplaceAllString(lowered, " ")
	return strings.Join(strings.Fields(cleaned), " ")
}
