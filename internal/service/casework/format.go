package casework

import (
	"context"
	"regexp"

	models "casedocs/internal/domain/models/casework"
)

// dedupePrefix matches the random GUID token prefixed onto display names
// to de-duplicate representation-stage uploads. The prefix is an internal
// artefact and must never reach users.
var dedupePrefix = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}_`)

// StripDedupePrefix removes a leading GUID de-duplication token from a
// display name, if present.
func StripDedupePrefix(name string) string {
	return dedupePrefix.ReplaceAllString(name, "")
}

// Formatter builds the outward view projections. Read paths degrade
// gracefully: unknown redaction ids render as empty names and a nil
// folder formats to nil rather than an error.
type Formatter struct {
	redaction *RedactionResolver
}

// NewFormatter creates a formatter over the redaction resolver.
func NewFormatter(redaction *RedactionResolver) *Formatter {
	return &Formatter{redaction: redaction}
}

// FormatVersion projects one version for display.
func (f *Formatter) FormatVersion(ctx context.Context, v *models.DocumentVersion) models.DocumentVersionView {
	redactionName := ""
	if f.redaction != nil {
		// Resolution errors degrade to an empty name on read paths
		if name, err := f.redaction.ResolveName(ctx, v.RedactionStatusID); err == nil {
			redactionName = name
		}
	}

	return models.DocumentVersionView{
		DocumentID:           v.DocumentGUID,
		Version:              v.Version,
		FileName:             StripDedupePrefix(v.FileName),
		OriginalFilename:     StripDedupePrefix(v.OriginalFilename),
		DateReceived:         v.DateReceived,
		RedactionStatus:      redactionName,
		VirusCheckStatus:     v.EffectiveVirusCheckStatus(),
		Size:                 v.Size,
		Mime:                 v.Mime,
		IsLateEntry:          v.IsLateEntry,
		IsDeleted:            v.IsDeleted,
		DocumentType:         v.DocumentType,
		Stage:                v.Stage,
		BlobStorageContainer: v.BlobStorageContainer,
		BlobStoragePath:      v.BlobStoragePath,
		DocumentURI:          v.DocumentURI,
	}
}

// FormatDocument projects a document for display, stripping the internal
// de-duplication prefix from its name. allVersions includes the full
// chain and is populated only when the caller asked for history.
func (f *Formatter) FormatDocument(ctx context.Context, doc *models.Document, withAllVersions bool) models.DocumentView {
	view := models.DocumentView{
		ID:           doc.GUID,
		CaseID:       doc.CaseID,
		FolderID:     doc.FolderID,
		Name:         StripDedupePrefix(doc.Name),
		IsDeleted:    doc.IsDeleted,
		CreatedAt:    doc.CreatedAt,
		VersionAudit: []models.VersionAudit{},
	}

	if latest := doc.LatestVersion(); latest != nil {
		lv := f.FormatVersion(ctx, latest)
		view.LatestDocumentVersion = &lv
	}

	if withAllVersions {
		view.AllVersions = make([]models.DocumentVersionView, 0, len(doc.Versions))
		for i := range doc.Versions {
			view.AllVersions = append(view.AllVersions, f.FormatVersion(ctx, &doc.Versions[i]))
		}
	}

	return view
}

// FormatFolder projects a folder for display, omitting soft-deleted
// documents. A nil folder formats to nil: nothing to render, not an
// error.
func (f *Formatter) FormatFolder(ctx context.Context, folder *models.Folder) *models.FolderView {
	if folder == nil {
		return nil
	}

	view := &models.FolderView{
		FolderID:  folder.ID,
		Path:      folder.Path,
		CaseID:    folder.CaseID,
		Documents: []models.DocumentView{},
	}

	for i := range folder.Documents {
		doc := &folder.Documents[i]
		if doc.IsDeleted {
			continue
		}
		view.Documents = append(view.Documents, f.FormatDocument(ctx, doc, false))
	}

	return view
}
