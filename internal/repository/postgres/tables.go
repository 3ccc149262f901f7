package postgres

import "fmt"

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Folders           string
	Documents         string
	DocumentVersions  string
	VersionAudit      string
	AuditTrail        string
	RedactionStatuses string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:           fmt.Sprintf("%sfolders", prefix),
		Documents:         fmt.Sprintf("%sdocuments", prefix),
		DocumentVersions:  fmt.Sprintf("%sdocument_versions", prefix),
		VersionAudit:      fmt.Sprintf("%sdocument_version_audit", prefix),
		AuditTrail:        fmt.Sprintf("%saudit_trail", prefix),
		RedactionStatuses: fmt.Sprintf("%sredaction_statuses", prefix),
	}
}
