// Package sqlguard statically validates generated SQL before execution. It
// is the single chokepoint for every generated query — structured-builder
// output and LLM output alike — and the only producer of SafeSQL.
package sqlguard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/docquery/internal/domain"
)

// DefaultRowCap is the LIMIT applied when a statement has none, and the
// ceiling an existing LIMIT is rewritten down to.
const DefaultRowCap = 100

// SafeSQL is a statement that passed validation and is authorized for
// execution. Only Validator.Validate can produce a non-zero value.
type SafeSQL struct {
	stmt string
}

// String returns the validated statement text.
func (s SafeSQL) String() string { return s.stmt }

// IsZero reports whether the value was never produced by the validator.
func (s SafeSQL) IsZero() bool { return s.stmt == "" }

// blockedKeywords reject a statement when present as a whole word.
// Word-boundary matching avoids false positives like created_at.
var blockedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "TRUNCATE",
	"REPLACE", "EXEC", "EXECUTE", "PRAGMA", "ATTACH", "DETACH", "VACUUM",
	"SAVEPOINT", "RELEASE", "ROLLBACK", "COMMIT", "BEGIN",
}

var (
	blockedPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(blockedKeywords, "|") + `)\b`)
	selectPattern  = regexp.MustCompile(`(?i)\bSELECT\b`)
	unionPattern   = regexp.MustCompile(`(?i)\bUNION\b`)
	tableRefs      = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	limitClause    = regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)\b`)
)

// Validator performs whitelist-based static analysis of SQL text.
type Validator struct {
	allowedTables map[string]struct{}
	rowCap        int
}

// NewValidator creates a validator permitting only the given tables.
func NewValidator(allowedTables []string, rowCap int) *Validator {
	if rowCap <= 0 {
		rowCap = DefaultRowCap
	}
	allowed := make(map[string]struct{}, len(allowedTables))
	for _, t := range allowedTables {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	return &Validator{allowedTables: allowed, rowCap: rowCap}
}

// Validate checks the statement against the whitelist rules and returns a
// SafeSQL with a LIMIT at or below the row cap. Any violation returns a
// security error; nothing is ever partially accepted.
func (v *Validator) Validate(sql string) (SafeSQL, error) {
	stmt := strings.TrimSpace(sql)
	if stmt == "" {
		return SafeSQL{}, fmt.Errorf("empty statement: %w", domain.ErrValidation)
	}

	if !strings.HasPrefix(strings.ToUpper(stmt), "SELECT") {
		return SafeSQL{}, domain.NewSecurityError("non_select_statement", "statement does not start with SELECT")
	}

	if m := blockedPattern.FindString(stmt); m != "" {
		return SafeSQL{}, domain.NewSecurityError(
			"blocked_keyword",
			fmt.Sprintf("statement contains %s", strings.ToUpper(m)),
		)
	}

	// A second SELECT means a subquery; reject.
	if len(selectPattern.FindAllStringIndex(stmt, -1)) > 1 {
		return SafeSQL{}, domain.NewSecurityError("multiple_select", "statement contains more than one SELECT")
	}

	if unionPattern.MatchString(stmt) {
		return SafeSQL{}, domain.NewSecurityError("union_clause", "statement contains UNION")
	}

	for _, m := range tableRefs.FindAllStringSubmatch(stmt, -1) {
		table := strings.ToLower(m[1])
		if _, ok := v.allowedTables[table]; !ok {
			return SafeSQL{}, domain.NewSecurityError(
				"table_not_allowed",
				fmt.Sprintf("statement references table %q", table),
			)
		}
	}

	return SafeSQL{stmt: v.capLimit(stmt)}, nil
}

// capLimit appends a LIMIT when the statement has none, and rewrites an
// existing LIMIT down to the cap when it exceeds it.
func (v *Validator) capLimit(stmt string) string {
	m := limitClause.FindStringSubmatch(stmt)
	if m == nil {
		return stmt + fmt.Sprintf(" LIMIT %d", v.rowCap)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > v.rowCap {
		return limitClause.ReplaceAllString(stmt, fmt.Sprintf("LIMIT %d", v.rowCap))
	}
	return stmt
}
