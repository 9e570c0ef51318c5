package documents

import (
	"database/sql"
	"strings"
	"time"

	domdoc "github.com/kailas-cloud/docquery/internal/domain/document"
)

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// dateLayouts are the text date formats the store is known to hold.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// scanDocument hydrates one document row.
func scanDocument(s scanner) (domdoc.Document, error) {
	var (
		id, title, text, category, vendor sql.NullString
		amount                            sql.NullFloat64
		txDate, createdAt, updatedAt      sql.NullString
		tags                              sql.NullString
	)
	if err := s.Scan(&id, &title, &text, &category, &vendor,
		&amount, &txDate, &tags, &createdAt, &updatedAt); err != nil {
		return domdoc.Document{}, err
	}

	var amountPtr *float64
	if amount.Valid {
		v := amount.Float64
		amountPtr = &v
	}

	return domdoc.Reconstruct(
		id.String, title.String, text.String, category.String, vendor.String,
		amountPtr, parseDatePtr(txDate), splitTags(tags.String),
		parseDate(createdAt), parseDate(updatedAt),
	), nil
}

func parseDate(s sql.NullString) time.Time {
	if t := parseDatePtr(s); t != nil {
		return *t
	}
	return time.Time{}
}

func parseDatePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s.String); err == nil {
			return &t
		}
	}
	return nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
