package casework

import (
	"time"
)

// Document is a logical case document owning an append-only chain of
// versions. GUIDs are globally unique and never reused.
type Document struct {
	GUID      string    `json:"guid" db:"guid"`
	CaseID    int64     `json:"caseId" db:"case_id"`
	FolderID  int64     `json:"folderId" db:"folder_id"`
	Name      string    `json:"name" db:"name"`
	IsDeleted bool      `json:"isDeleted" db:"is_deleted"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Versions is populated only by the with-versions fetch paths,
	// ordered by ascending version number.
	Versions []DocumentVersion `json:"versions,omitempty"`
}

// LatestVersion returns the current version: the highest-numbered
// non-deleted version, or nil when every version is deleted or none
// are loaded.
func (d *Document) LatestVersion() *DocumentVersion {
	var latest *DocumentVersion
	for i := range d.Versions {
		v := &d.Versions[i]
		if v.IsDeleted {
			continue
		}
		if latest == nil || v.Version > latest.Version {
			latest = v
		}
	}
	return latest
}

// LiveVersionCount counts versions that have not been soft-deleted.
func (d *Document) LiveVersionCount() int {
	n := 0
	for i := range d.Versions {
		if !d.Versions[i].IsDeleted {
			n++
		}
	}
	return n
}
