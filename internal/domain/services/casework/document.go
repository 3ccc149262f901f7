package casework

import (
	"context"
	"time"

	models "casedocs/internal/domain/models/casework"
)

// DocumentService is the orchestrator for the document/version lifecycle:
// uploads, new versions, soft deletion, folder queries and audit recording.
type DocumentService interface {
	// AddDocuments maps an upload batch into persisted documents and
	// version-1 rows, fanning out over the repository with bounded
	// concurrency. The batch fails fast on the first persistence error.
	AddDocuments(ctx context.Context, req *AddDocumentsRequest) ([]CreatedVersion, error)

	// AddVersion appends a version to an existing, non-deleted document.
	// An empty (nil) result means nothing was added; callers must not
	// treat it as success.
	AddVersion(ctx context.Context, req *AddVersionRequest) (*CreatedVersion, error)

	// DeleteVersion soft-deletes one version; deleting the sole live
	// version soft-deletes the owning document too. Returns false when
	// the version did not exist.
	DeleteVersion(ctx context.Context, guid string, version int) (bool, error)

	// CreateCaseFolders instantiates and persists the default folder set
	// for a newly created case.
	CreateCaseFolders(ctx context.Context, caseID int64) ([]models.Folder, error)

	// GetFolder returns the folder scoped to the case, or nil when it
	// does not exist or belongs to a different case.
	GetFolder(ctx context.Context, caseID, folderID int64) (*models.Folder, error)

	// GetFoldersForCase lists folders for a case, optionally narrowed to
	// one stage's catalogue paths.
	GetFoldersForCase(ctx context.Context, caseID int64, stage string) ([]models.Folder, error)

	// GetDocument returns a non-deleted document with its latest version.
	GetDocument(ctx context.Context, guid string) (*models.Document, error)

	// GetDocumentWithVersions returns a non-deleted document with its
	// full version chain.
	GetDocumentWithVersions(ctx context.Context, guid string) (*models.Document, error)

	// RecordScanResult records an externally reported virus-scan verdict
	// for one version. Only scanned/affected are accepted.
	RecordScanResult(ctx context.Context, guid string, version int, status models.VirusCheckStatus) error

	// RecordScanResults records a batch of scan verdicts. The batch is
	// validated up front and applied both-or-neither.
	RecordScanResults(ctx context.Context, results []ScanResult) error

	// UpdateDocuments applies a validated bulk metadata update.
	UpdateDocuments(ctx context.Context, req *UpdateDocumentsRequest) error

	// RecordAudit appends an audit entry for a document version.
	RecordAudit(ctx context.Context, guid string, version int, rec *models.AuditRecord, action models.AuditAction) error
}

// UploadItem is one file in an upload batch.
type UploadItem struct {
	FolderID          int64     `json:"folderId"`
	DocumentName      string    `json:"documentName"`
	OriginalFilename  string    `json:"originalFilename"`
	Mime              string    `json:"mimeType"`
	Size              int64     `json:"documentSize"`
	DocumentType      string    `json:"documentType"`
	Stage             string    `json:"stage"`
	DateReceived      time.Time `json:"receivedDate"`
	RedactionStatusID int64     `json:"redactionStatusId"`
	UserID            string    `json:"-"`
}

// AddDocumentsRequest is an upload batch plus the case context captured
// at receipt time. AppealStatus is the status at this instant; late-entry
// classification uses it, never the status at read time.
type AddDocumentsRequest struct {
	CaseID        int64        `json:"caseId"`
	CaseReference string       `json:"caseReference"`
	AppealStatus  string       `json:"appealStatus"`
	Items         []UploadItem `json:"documents"`
}

// AddVersionRequest asks for a new version of an existing document.
type AddVersionRequest struct {
	DocumentGUID  string     `json:"documentGuid"`
	CaseReference string     `json:"caseReference"`
	AppealStatus  string     `json:"appealStatus"`
	Upload        UploadItem `json:"document"`
}

// ScanResult is one verdict in a batch scanner callback.
type ScanResult struct {
	DocumentGUID     string                  `json:"documentGuid"`
	Version          int                     `json:"version"`
	VirusCheckStatus models.VirusCheckStatus `json:"virusCheckStatus"`
}

// UpdateDocumentsRequest is a bulk metadata update across documents.
type UpdateDocumentsRequest struct {
	Items []UpdateDocumentItem `json:"documents"`
}

// UpdateDocumentItem updates the latest version of one document.
type UpdateDocumentItem struct {
	GUID              string     `json:"id"`
	ReceivedAt        *time.Time `json:"receivedDate,omitempty"`
	RedactionStatusID *int64     `json:"redactionStatus,omitempty"`
}

// CreatedVersion is the storage-facing projection of a freshly persisted
// version, returned to upload callers.
type CreatedVersion struct {
	GUID                 string    `json:"guid"`
	Version              int       `json:"version"`
	Name                 string    `json:"name"`
	FolderID             int64     `json:"folderId"`
	CaseID               int64     `json:"caseId"`
	BlobStorageContainer string    `json:"blobStorageContainer"`
	BlobStoragePath      string    `json:"blobStoragePath"`
	DocumentURI          string    `json:"documentURI"`
	DateReceived         time.Time `json:"dateReceived"`
	IsLateEntry          bool      `json:"isLateEntry"`
}
