package casework

import (
	"time"
)

// VirusCheckStatus is the recorded verdict of the external malware scan.
type VirusCheckStatus string

const (
	// VirusCheckNotScanned is the implicit initial state of every new version.
	VirusCheckNotScanned VirusCheckStatus = "not_scanned"
	// VirusCheckScanned means the scan completed and found the file safe.
	VirusCheckScanned VirusCheckStatus = "scanned"
	// VirusCheckAffected means the scan found malware. Terminal.
	VirusCheckAffected VirusCheckStatus = "affected"
)

// Valid reports whether s is one of the known scan states.
func (s VirusCheckStatus) Valid() bool {
	switch s {
	case VirusCheckNotScanned, VirusCheckScanned, VirusCheckAffected:
		return true
	}
	return false
}

// DocumentVersion is one immutable entry in a document's version chain.
// Version numbers start at 1 and are never reused, even after deletion.
type DocumentVersion struct {
	DocumentGUID         string           `json:"documentGuid" db:"document_guid"`
	Version              int              `json:"version" db:"version"`
	FileName             string           `json:"fileName" db:"file_name"`
	OriginalFilename     string           `json:"originalFilename" db:"original_filename"`
	Mime                 string           `json:"mime" db:"mime"`
	Size                 int64            `json:"size" db:"size"`
	DocumentType         string           `json:"documentType" db:"document_type"`
	Stage                string           `json:"stage" db:"stage"`
	BlobStorageContainer string           `json:"blobStorageContainer" db:"blob_storage_container"`
	BlobStoragePath      string           `json:"blobStoragePath" db:"blob_storage_path"`
	DocumentURI          string           `json:"documentURI" db:"document_uri"`
	DateReceived         time.Time        `json:"dateReceived" db:"date_received"`
	RedactionStatusID    int64            `json:"redactionStatusId" db:"redaction_status_id"`
	IsLateEntry          bool             `json:"isLateEntry" db:"is_late_entry"`
	VirusCheckStatus     VirusCheckStatus `json:"virusCheckStatus" db:"virus_check_status"`
	IsDeleted            bool             `json:"isDeleted" db:"is_deleted"`
}

// EffectiveVirusCheckStatus never exposes an unset scan status: an empty
// stored value reads as not_scanned.
func (v *DocumentVersion) EffectiveVirusCheckStatus() VirusCheckStatus {
	if v.VirusCheckStatus == "" {
		return VirusCheckNotScanned
	}
	return v.VirusCheckStatus
}

// Downloadable reports whether the underlying bytes may be served.
// Only a completed, clean scan passes.
func (v *DocumentVersion) Downloadable() bool {
	return v.EffectiveVirusCheckStatus() == VirusCheckScanned
}
