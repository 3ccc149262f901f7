package casework

// Folder is a case-scoped bucket of documents identified by a
// "<stage>/<documentType>" path (or a bare "<stage>" path).
//
// The full set of folders for a case is fixed at case creation from the
// static catalogue; uploads never create folders ad hoc.
type Folder struct {
	ID        int64      `json:"folderId" db:"id"`
	CaseID    int64      `json:"caseId" db:"case_id"`
	Path      string     `json:"path" db:"path"`
	Documents []Document `json:"documents,omitempty"`
}

// Stage returns the stage segment of the folder path.
func (f *Folder) Stage() string {
	for i := 0; i < len(f.Path); i++ {
		if f.Path[i] == '/' {
			return f.Path[:i]
		}
	}
	return f.Path
}
