package document

import "time"

// Document is a read-only view of a record in the external document store
// (immutable value object). The engine never mutates documents; records are
// hydrated per request and discarded with it.
type Document struct {
	id            string
	title         string
	extractedText string
	category      string
	vendor        string
	amount        *float64
	transactionAt *time.Time
	tags          []string
	createdAt     time.Time
	updatedAt     time.Time
}

// Reconstruct creates a Document from storage (no validation — the external
// store owns the schema).
func Reconstruct(
	id, title, extractedText, category, vendor string,
	amount *float64, transactionAt *time.Time, tags []string,
	createdAt, updatedAt time.Time,
) Document {
	return Document{
		id: id, title: title, extractedText: extractedText,
		category: category, vendor: vendor,
		amount: amount, transactionAt: transactionAt, tags: tags,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// ExtractedText returns the OCR-extracted text.
func (d *Document) ExtractedText() string { return d.extractedText }

// Category returns the document category.
func (d *Document) Category() string { return d.category }

// Vendor returns the vendor name.
func (d *Document) Vendor() string { return d.vendor }

// Amount returns the currency amount, nil when the document has none.
func (d *Document) Amount() *float64 { return d.amount }

// TransactionAt returns the transaction date, nil when unknown.
func (d *Document) TransactionAt() *time.Time { return d.transactionAt }

// Tags returns the document tags.
func (d *Document) Tags() []string { return d.tags }

// CreatedAt returns the record creation time.
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the record update time.
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }

// EmbeddingText returns the text the embedding and its content hash are
// computed over.
func (d *Document) EmbeddingText() string {
	return d.title + "\n" + d.extractedText
}

// Summary is the caller-facing projection of a document in search results.
type Summary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Category      string     `json:"category,omitempty"`
	Vendor        string     `json:"vendor,omitempty"`
	Amount        *float64   `json:"amount,omitempty"`
	TransactionAt *time.Time `json:"transaction_date,omitempty"`
	Similarity    *float64   `json:"similarity,omitempty"`
}

// Summarize projects a document into its result summary.
func (d *Document) Summarize() Summary {
	return Summary{
		ID:            d.id,
		Title:         d.title,
		Category:      d.category,
		Vendor:        d.vendor,
		Amount:        d.amount,
		TransactionAt: d.transactionAt,
	}
}
