package casework

// RedactionStatus is a row of the fixed redaction-status catalogue
// (redacted, unredacted, no redaction required). The catalogue is
// reference data: read-mostly, loaded from the database and cached.
type RedactionStatus struct {
	ID   int64  `json:"id" db:"id"`
	Key  string `json:"key" db:"key"`
	Name string `json:"name" db:"name"`
}

// Well-known redaction status keys.
const (
	RedactionKeyRedacted    = "redacted"
	RedactionKeyUnredacted  = "unredacted"
	RedactionKeyNotRequired = "no_redaction_required"
)
