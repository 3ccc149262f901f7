package casework

import (
	"time"
)

// AuditAction identifies the user-visible mutation being recorded.
type AuditAction string

const (
	AuditActionCreate AuditAction = "Create"
	AuditActionUpdate AuditAction = "Update"
	AuditActionDelete AuditAction = "Delete"
)

// Valid reports whether a is one of the recognised audit actions.
func (a AuditAction) Valid() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete:
		return true
	}
	return false
}

// AuditRecord is one append-only audit-trail entry.
type AuditRecord struct {
	ID       int64     `json:"id" db:"id"`
	CaseID   int64     `json:"appealId" db:"case_id"`
	UserID   string    `json:"userId" db:"user_id"`
	Details  string    `json:"details" db:"details"`
	LoggedAt time.Time `json:"loggedAt" db:"logged_at"`
}

// VersionAudit links an audit-trail record to a specific document version.
type VersionAudit struct {
	DocumentGUID string       `json:"documentGuid" db:"document_guid"`
	Version      int          `json:"version" db:"version"`
	Action       AuditAction  `json:"action" db:"action"`
	AuditTrailID int64        `json:"auditTrailId" db:"audit_trail_id"`
	Record       *AuditRecord `json:"record,omitempty"`
}
