package db

// Op constants name store operations for error context.
const (
	OpPing   = "ping"
	OpQuery  = "query"
	OpGet    = "get"
	OpUpsert = "upsert"
	OpScan   = "scan"
)

// Error wraps an underlying error with the operation name for diagnostics.
// It stays server-side: the gateway converts store errors to an opaque
// domain error before they reach a caller.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
