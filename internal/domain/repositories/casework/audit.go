package casework

import (
	"context"

	models "casedocs/internal/domain/models/casework"
)

// AuditRepository appends to the audit trail. Entries are never updated
// or removed.
type AuditRepository interface {
	// CreateAuditTrail appends one audit-trail record and fills its ID
	// and LoggedAt.
	CreateAuditTrail(ctx context.Context, rec *models.AuditRecord) (*models.AuditRecord, error)

	// CreateVersionAudit links an audit-trail record to a document
	// version.
	CreateVersionAudit(ctx context.Context, va *models.VersionAudit) error

	// ListVersionAudit returns the audit entries for a document, newest
	// first, with their audit-trail records attached.
	ListVersionAudit(ctx context.Context, guid string) ([]models.VersionAudit, error)
}
