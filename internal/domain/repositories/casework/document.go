package casework

import (
	"context"
	"time"

	models "casedocs/internal/domain/models/casework"
)

// DocumentUpdate is one item of a bulk metadata update.
type DocumentUpdate struct {
	GUID              string
	ReceivedAt        *time.Time
	RedactionStatusID *int64
}

// AVStatusUpdate records an externally reported virus-scan verdict
// against a specific version.
type AVStatusUpdate struct {
	GUID    string
	Version int
	Status  models.VirusCheckStatus
}

// DocumentRepository defines data access for documents and their version
// chains. All writes to document/version rows go through this contract;
// nothing else mutates them, which is what keeps the version-numbering
// and soft-delete invariants enforceable.
type DocumentRepository interface {
	// CreateDocument persists a new document together with its version 1
	// row. Returns the created version. A display-name collision within
	// the folder surfaces as domain.ErrDuplicateName.
	CreateDocument(ctx context.Context, doc *models.Document, v *models.DocumentVersion) (*models.DocumentVersion, error)

	// NextVersion computes max(version)+1 for a document, locking the
	// owning document row when called inside a transaction so no two
	// concurrent callers can allocate the same number.
	NextVersion(ctx context.Context, guid string) (int, error)

	// CreateVersion appends a version row with a pre-allocated number.
	// The (document_guid, version) primary key backstops NextVersion
	// under concurrency.
	CreateVersion(ctx context.Context, v *models.DocumentVersion) (*models.DocumentVersion, error)

	// SoftDeleteVersion marks a single version deleted. Returns the
	// deleted version, or nil when guid+version does not resolve.
	SoftDeleteVersion(ctx context.Context, guid string, version int) (*models.DocumentVersion, error)

	// SoftDeleteDocument marks the owning document deleted.
	SoftDeleteDocument(ctx context.Context, guid string) error

	// CountLiveVersions counts non-deleted versions of a document.
	CountLiveVersions(ctx context.Context, guid string) (int, error)

	// GetByGUID retrieves a non-deleted document without its version
	// chain. Deleted documents read as not found.
	GetByGUID(ctx context.Context, guid string) (*models.Document, error)

	// GetWithVersions retrieves a non-deleted document with all of its
	// versions, deleted ones included, ordered by ascending version.
	GetWithVersions(ctx context.Context, guid string) (*models.Document, error)

	// ListByFolder lists non-deleted documents in a folder, each carrying
	// its latest live version.
	ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error)

	// UpdateDocuments applies a bulk metadata update to the latest
	// version of each named document.
	UpdateDocuments(ctx context.Context, batch []DocumentUpdate) error

	// CreateAVStatuses records initial scan verdicts in bulk.
	CreateAVStatuses(ctx context.Context, batch []AVStatusUpdate) error

	// UpdateAVStatus records a single scan verdict.
	UpdateAVStatus(ctx context.Context, item AVStatusUpdate) error
}
