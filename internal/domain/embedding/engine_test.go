package embedding

import (
	"math"
	"testing"
)

func TestEmbed_Deterministic(t *testing.T) {
	e := NewEngine()
	text := "Grocery receipt from Kroger for $54.12 on 2024-03-15"

	a := e.Embed(text)
	b := e.Embed(text)

	if len(a) != Dimension {
		t.Fatalf("expected dimension %d, got %d", Dimension, len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not reproducible at index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestEmbed_DeterministicAcrossSignalGroups(t *testing.T) {
	e := NewEngine()
	// Fires several signal groups at once. Groups may collide on an
	// accumulator index with opposite signs, and float32 addition does not
	// commute, so this catches any unordered signal pass.
	text := "doctor visit copay and electric bill payment from the grocery store"

	first := e.Embed(text)
	for i := 0; i < 500; i++ {
		got := e.Embed(text)
		for j := range first {
			if got[j] != first[j] {
				t.Fatalf("run %d: embedding differs at index %d: %v != %v", i, j, got[j], first[j])
			}
		}
	}
}

func TestEmbed_UnitLength(t *testing.T) {
	e := NewEngine()
	for _, text := range []string{
		"medical bill from the clinic",
		"kroger",
		"electric utility statement for january",
	} {
		vec := e.Embed(text)
		var sum float64
		for _, v := range vec {
			sum += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
			t.Errorf("Embed(%q) norm = %f, want 1.0", text, math.Sqrt(sum))
		}
	}
}

func TestEmbed_SelfSimilarityIsOne(t *testing.T) {
	e := NewEngine()
	vec := e.Embed("restaurant dinner receipt")
	if sim := Cosine(vec, vec); math.Abs(sim-1.0) > 1e-5 {
		t.Fatalf("self similarity = %f, want 1.0", sim)
	}
}

func TestEmbed_SharedVocabularyIsCloserThanUnrelated(t *testing.T) {
	e := NewEngine()
	grocery1 := e.Embed("grocery receipt from the supermarket")
	grocery2 := e.Embed("supermarket grocery shopping receipt")
	flight := e.Embed("airline flight booking confirmation hotel")

	related := Cosine(grocery1, grocery2)
	unrelated := Cosine(grocery1, flight)
	if related <= unrelated {
		t.Fatalf("related pair (%f) should score above unrelated pair (%f)", related, unrelated)
	}
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	e := NewEngine()
	vec := e.Embed("")
	if len(vec) != Dimension {
		t.Fatalf("expected dimension %d, got %d", Dimension, len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector, found %f at index %d", v, i)
		}
	}
}

// Dollar and date detectors run against the raw lowered text, since
// punctuation stripping removes the "$" and "/" they depend on.
func TestEmbed_AmountDetectorFires(t *testing.T) {
	e := NewEngine()
	with := e.Embed("payment of $25.00 received")
	without := e.Embed("payment of received")

	diff := false
	for i := range with {
		if with[i] != without[i] {
			diff = true
			break
		}
	}
	if !diff {
		t.Fatal("amount-bearing text should embed differently from the same text without it")
	}
}

func TestDim(t *testing.T) {
	if d := NewEngine().Dim(); d != Dimension {
		t.Fatalf("Dim() = %d, want %d", d, Dimension)
	}
}
