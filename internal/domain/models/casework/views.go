package casework

import (
	"time"
)

// View projections served verbatim by the HTTP layer. Display names have
// the de-duplication GUID prefix stripped and soft-deleted documents are
// filtered out before these shapes are built.

// FolderView is the outward shape of a folder and its live documents.
type FolderView struct {
	FolderID  int64          `json:"folderId"`
	Path      string         `json:"path"`
	CaseID    int64          `json:"caseId"`
	Documents []DocumentView `json:"documents"`
}

// DocumentView is the outward shape of a document.
type DocumentView struct {
	ID                    string                `json:"id"`
	CaseID                int64                 `json:"caseId"`
	FolderID              int64                 `json:"folderId"`
	Name                  string                `json:"name"`
	IsDeleted             bool                  `json:"isDeleted"`
	CreatedAt             time.Time             `json:"createdAt"`
	LatestDocumentVersion *DocumentVersionView  `json:"latestDocumentVersion,omitempty"`
	AllVersions           []DocumentVersionView `json:"allVersions,omitempty"`
	VersionAudit          []VersionAudit        `json:"versionAudit"`
}

// DocumentVersionView is the outward shape of one version.
type DocumentVersionView struct {
	DocumentID           string           `json:"documentId"`
	Version              int              `json:"version"`
	FileName             string           `json:"fileName"`
	OriginalFilename     string           `json:"originalFilename"`
	DateReceived         time.Time        `json:"dateReceived"`
	RedactionStatus      string           `json:"redactionStatus"`
	VirusCheckStatus     VirusCheckStatus `json:"virusCheckStatus"`
	Size                 int64            `json:"size"`
	Mime                 string           `json:"mime"`
	IsLateEntry          bool             `json:"isLateEntry"`
	IsDeleted            bool             `json:"isDeleted"`
	DocumentType         string           `json:"documentType"`
	Stage                string           `json:"stage"`
	BlobStorageContainer string           `json:"blobStorageContainer"`
	BlobStoragePath      string           `json:"blobStoragePath"`
	DocumentURI          string           `json:"documentURI"`
}
