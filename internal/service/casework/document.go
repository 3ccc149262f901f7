package casework

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"casedocs/internal/config"
	"casedocs/internal/domain"
	models "casedocs/internal/domain/models/casework"
	"casedocs/internal/domain/repositories"
	caseRepo "casedocs/internal/domain/repositories/casework"
	caseSvc "casedocs/internal/domain/services/casework"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo     caseRepo.DocumentRepository
	folderRepo  caseRepo.FolderRepository
	auditRepo   caseRepo.AuditRepository
	txManager   repositories.TransactionManager
	folders     *FolderRegistry
	redaction   *RedactionResolver
	broadcaster caseSvc.Broadcaster
	logger      *slog.Logger

	storageHost string
	container   string
	concurrency int
}

// NewDocumentService creates the document lifecycle orchestrator.
func NewDocumentService(
	docRepo caseRepo.DocumentRepository,
	folderRepo caseRepo.FolderRepository,
	auditRepo caseRepo.AuditRepository,
	txManager repositories.TransactionManager,
	folders *FolderRegistry,
	redaction *RedactionResolver,
	broadcaster caseSvc.Broadcaster,
	logger *slog.Logger,
	storageHost, container string,
	concurrency int,
) caseSvc.DocumentService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &documentService{
		docRepo:     docRepo,
		folderRepo:  folderRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		folders:     folders,
		redaction:   redaction,
		broadcaster: broadcaster,
		logger:      logger,
		storageHost: storageHost,
		container:   container,
		concurrency: concurrency,
	}
}

// AddDocuments maps an upload batch into persisted documents and
// version-1 rows. Items fan out over the repository with bounded
// concurrency; the first persistence error aborts the batch. Each
// successfully persisted item gets one audit entry and one Create
// broadcast, written only after the item is durable.
func (s *documentService) AddDocuments(ctx context.Context, req *caseSvc.AddDocumentsRequest) ([]caseSvc.CreatedVersion, error) {
	if err := s.validateAddDocuments(ctx, req); err != nil {
		return nil, err
	}

	results := make([]caseSvc.CreatedVersion, len(req.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range req.Items {
		i := i
		item := req.Items[i]
		g.Go(func() error {
			created, err := s.addDocument(gctx, req, &item)
			if err != nil {
				s.logger.Error("document upload failed",
					"name", item.DocumentName,
					"folder_id", item.FolderID,
					"case_id", req.CaseID,
					"error", err,
				)
				return err
			}
			results[i] = *created
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// resolveFolder returns the item's target folder. An explicit folder id
// must belong to the case; a folder under a different case reads as not
// found, never as foreign. Items without an explicit folder id resolve
// by their stage/documentType catalogue path; unmapped combinations land
// in the catch-all folder.
func (s *documentService) resolveFolder(ctx context.Context, caseID int64, item *caseSvc.UploadItem) (int64, error) {
	if item.FolderID != 0 {
		folder, err := s.folderRepo.GetByID(ctx, item.FolderID, caseID)
		if err != nil {
			return 0, err
		}
		return folder.ID, nil
	}

	folder, err := s.folderRepo.GetByCaseAndPath(ctx, caseID, item.Stage+"/"+item.DocumentType)
	if err == nil {
		return folder.ID, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}

	fallback, err := s.folderRepo.GetByCaseAndPath(ctx, caseID, s.folders.Fallback())
	if err != nil {
		return 0, fmt.Errorf("resolve fallback folder: %w", err)
	}
	return fallback.ID, nil
}

// addDocument persists one item of an upload batch.
func (s *documentService) addDocument(ctx context.Context, req *caseSvc.AddDocumentsRequest, item *caseSvc.UploadItem) (*caseSvc.CreatedVersion, error) {
	folderID, err := s.resolveFolder(ctx, req.CaseID, item)
	if err != nil {
		return nil, err
	}

	guid := uuid.New().String()

	name := item.DocumentName
	if item.Stage == models.StageRepresentations {
		// Representation folders collect files from many parties; a
		// random token keeps display names collision-free. The prefix
		// is stripped again at display time.
		name = uuid.New().String() + "_" + name
	}

	blobPath := BuildBlobPath(guid, req.CaseReference, name, 1)
	docURI := BuildDocumentURI(s.storageHost, s.container, blobPath)

	received := item.DateReceived
	if received.IsZero() {
		received = time.Now().UTC()
	}

	doc := &models.Document{
		GUID:      guid,
		CaseID:    req.CaseID,
		FolderID:  folderID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	version := &models.DocumentVersion{
		DocumentGUID:         guid,
		Version:              1,
		FileName:             name,
		OriginalFilename:     item.OriginalFilename,
		Mime:                 item.Mime,
		Size:                 item.Size,
		DocumentType:         item.DocumentType,
		Stage:                item.Stage,
		BlobStorageContainer: s.container,
		BlobStoragePath:      blobPath,
		DocumentURI:          docURI,
		DateReceived:         received,
		RedactionStatusID:    item.RedactionStatusID,
		IsLateEntry:          IsLateEntry(item.Stage, req.AppealStatus),
		VirusCheckStatus:     models.VirusCheckNotScanned,
	}

	persisted, err := s.docRepo.CreateDocument(ctx, doc, version)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, guid, persisted.Version, &models.AuditRecord{
		CaseID:  req.CaseID,
		UserID:  item.UserID,
		Details: fmt.Sprintf("Document %s uploaded (version 1)", StripDedupePrefix(name)),
	}, models.AuditActionCreate)

	s.broadcaster.BroadcastDocument(ctx, guid, persisted.Version, caseSvc.BroadcastCreate)

	return &caseSvc.CreatedVersion{
		GUID:                 guid,
		Version:              persisted.Version,
		Name:                 name,
		FolderID:             folderID,
		CaseID:               req.CaseID,
		BlobStorageContainer: s.container,
		BlobStoragePath:      blobPath,
		DocumentURI:          docURI,
		DateReceived:         received,
		IsLateEntry:          version.IsLateEntry,
	}, nil
}

// AddVersion appends a version to an existing, non-deleted document. The
// version number is allocated under a transaction; the primary key on
// (document_guid, version) makes duplicate allocation impossible.
func (s *documentService) AddVersion(ctx context.Context, req *caseSvc.AddVersionRequest) (*caseSvc.CreatedVersion, error) {
	if err := s.validateAddVersion(ctx, req); err != nil {
		return nil, err
	}

	doc, err := s.docRepo.GetByGUID(ctx, req.DocumentGUID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.IsDeleted {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", req.DocumentGUID)}
	}

	item := req.Upload
	received := item.DateReceived
	if received.IsZero() {
		received = time.Now().UTC()
	}

	var persisted *models.DocumentVersion
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		next, err := s.docRepo.NextVersion(txCtx, doc.GUID)
		if err != nil {
			return err
		}

		blobPath := BuildBlobPath(doc.GUID, req.CaseReference, item.DocumentName, next)
		version := &models.DocumentVersion{
			DocumentGUID:         doc.GUID,
			Version:              next,
			FileName:             item.DocumentName,
			OriginalFilename:     item.OriginalFilename,
			Mime:                 item.Mime,
			Size:                 item.Size,
			DocumentType:         item.DocumentType,
			Stage:                item.Stage,
			BlobStorageContainer: s.container,
			BlobStoragePath:      blobPath,
			DocumentURI:          BuildDocumentURI(s.storageHost, s.container, blobPath),
			DateReceived:         received,
			RedactionStatusID:    item.RedactionStatusID,
			IsLateEntry:          IsLateEntry(item.Stage, req.AppealStatus),
			VirusCheckStatus:     models.VirusCheckNotScanned,
		}

		persisted, err = s.docRepo.CreateVersion(txCtx, version)
		return err
	})
	if err != nil {
		return nil, err
	}
	if persisted == nil {
		// Nothing was added; callers must treat an empty result as
		// "not added", not as success.
		return nil, nil
	}

	s.audit(ctx, doc.GUID, persisted.Version, &models.AuditRecord{
		CaseID:  doc.CaseID,
		UserID:  item.UserID,
		Details: fmt.Sprintf("Document %s updated (version %d)", StripDedupePrefix(doc.Name), persisted.Version),
	}, models.AuditActionUpdate)

	s.broadcaster.BroadcastDocument(ctx, doc.GUID, persisted.Version, caseSvc.BroadcastUpdate)

	return &caseSvc.CreatedVersion{
		GUID:                 doc.GUID,
		Version:              persisted.Version,
		Name:                 doc.Name,
		FolderID:             doc.FolderID,
		CaseID:               doc.CaseID,
		BlobStorageContainer: persisted.BlobStorageContainer,
		BlobStoragePath:      persisted.BlobStoragePath,
		DocumentURI:          persisted.DocumentURI,
		DateReceived:         persisted.DateReceived,
		IsLateEntry:          persisted.IsLateEntry,
	}, nil
}

// DeleteVersion soft-deletes one version. Deleting the sole live version
// soft-deletes the owning document in the same transaction, both or
// neither. A Delete broadcast is emitted whether or not the document
// itself was deleted.
func (s *documentService) DeleteVersion(ctx context.Context, guid string, version int) (bool, error) {
	doc, err := s.docRepo.GetByGUID(ctx, guid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	var (
		deleted    *models.DocumentVersion
		docDeleted bool
	)

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.docRepo.SoftDeleteVersion(txCtx, guid, version)
		if err != nil {
			return err
		}
		if deleted == nil {
			return nil
		}

		live, err := s.docRepo.CountLiveVersions(txCtx, guid)
		if err != nil {
			return err
		}
		if live == 0 {
			if err := s.docRepo.SoftDeleteDocument(txCtx, guid); err != nil {
				return err
			}
			docDeleted = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted == nil {
		return false, nil
	}

	s.audit(ctx, guid, version, &models.AuditRecord{
		CaseID:  doc.CaseID,
		Details: fmt.Sprintf("Document %s version %d deleted", StripDedupePrefix(doc.Name), version),
	}, models.AuditActionDelete)

	s.broadcaster.BroadcastDocument(ctx, guid, version, caseSvc.BroadcastDelete)

	s.logger.Info("version deleted",
		"guid", guid,
		"version", version,
		"document_deleted", docDeleted,
	)

	return true, nil
}

// CreateCaseFolders instantiates the static folder catalogue for a new
// case and persists it in bulk.
func (s *documentService) CreateCaseFolders(ctx context.Context, caseID int64) ([]models.Folder, error) {
	if caseID == 0 {
		return nil, &domain.ValidationError{Message: "caseId is required"}
	}
	folders := s.folders.DefaultFoldersForCase(caseID)
	return s.folderRepo.CreateMany(ctx, folders)
}

// GetFolder returns the folder scoped to the case with its live
// documents. A folder that does not exist and one owned by a different
// case are indistinguishable to the caller: both return nil.
func (s *documentService) GetFolder(ctx context.Context, caseID, folderID int64) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID, caseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if folder == nil {
		return nil, nil
	}

	docs, err := s.docRepo.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	folder.Documents = docs
	return folder, nil
}

// GetFoldersForCase lists the case's folders, optionally narrowed to one
// stage's catalogue paths.
func (s *documentService) GetFoldersForCase(ctx context.Context, caseID int64, stage string) ([]models.Folder, error) {
	var (
		folders []models.Folder
		err     error
	)
	if stage == "" {
		folders, err = s.folderRepo.ListByCase(ctx, caseID)
	} else {
		folders, err = s.folderRepo.ListByCaseAndPaths(ctx, caseID, s.folders.PathsForStage(stage))
	}
	if err != nil {
		return nil, err
	}

	for i := range folders {
		docs, err := s.docRepo.ListByFolder(ctx, folders[i].ID)
		if err != nil {
			return nil, err
		}
		folders[i].Documents = docs
	}
	return folders, nil
}

// GetDocument returns a non-deleted document with its latest version.
func (s *documentService) GetDocument(ctx context.Context, guid string) (*models.Document, error) {
	return s.docRepo.GetByGUID(ctx, guid)
}

// GetDocumentWithVersions returns a non-deleted document with its full
// version chain.
func (s *documentService) GetDocumentWithVersions(ctx context.Context, guid string) (*models.Document, error) {
	return s.docRepo.GetWithVersions(ctx, guid)
}

// RecordScanResult records an externally reported scan verdict. The
// scanner can only report scanned or affected; not_scanned is the
// implicit initial state and can never be re-entered.
func (s *documentService) RecordScanResult(ctx context.Context, guid string, version int, status models.VirusCheckStatus) error {
	if status != models.VirusCheckScanned && status != models.VirusCheckAffected {
		return &domain.ValidationError{
			Message: fmt.Sprintf("invalid virus check status '%s', must be '%s' or '%s'",
				status, models.VirusCheckScanned, models.VirusCheckAffected),
		}
	}
	if guid == "" || version < 1 {
		return &domain.ValidationError{Message: "documentGuid and version are required"}
	}

	return s.docRepo.UpdateAVStatus(ctx, caseRepo.AVStatusUpdate{
		GUID:    guid,
		Version: version,
		Status:  status,
	})
}

// RecordScanResults records a batch of scan verdicts. Every entry is
// validated before any row is touched; the repository applies the batch
// both-or-neither.
func (s *documentService) RecordScanResults(ctx context.Context, results []caseSvc.ScanResult) error {
	if len(results) == 0 {
		return &domain.ValidationError{Message: "documents is required"}
	}

	batch := make([]caseRepo.AVStatusUpdate, 0, len(results))
	for _, res := range results {
		if res.VirusCheckStatus != models.VirusCheckScanned && res.VirusCheckStatus != models.VirusCheckAffected {
			return &domain.ValidationError{
				Message: fmt.Sprintf("invalid virus check status '%s' for document %s, must be '%s' or '%s'",
					res.VirusCheckStatus, res.DocumentGUID, models.VirusCheckScanned, models.VirusCheckAffected),
			}
		}
		if res.DocumentGUID == "" || res.Version < 1 {
			return &domain.ValidationError{Message: "documentGuid and version are required"}
		}
		batch = append(batch, caseRepo.AVStatusUpdate{
			GUID:    res.DocumentGUID,
			Version: res.Version,
			Status:  res.VirusCheckStatus,
		})
	}

	return s.docRepo.CreateAVStatuses(ctx, batch)
}

// UpdateDocuments applies a bulk metadata update to the latest version of
// each named document. Redaction ids are validated against the catalogue
// before anything is written.
func (s *documentService) UpdateDocuments(ctx context.Context, req *caseSvc.UpdateDocumentsRequest) error {
	if len(req.Items) == 0 {
		return &domain.ValidationError{Message: "documents is required"}
	}

	var redactionIDs []int64
	batch := make([]caseRepo.DocumentUpdate, 0, len(req.Items))
	for _, item := range req.Items {
		if item.GUID == "" {
			return &domain.ValidationError{Message: "document id is required"}
		}
		if item.RedactionStatusID != nil {
			redactionIDs = append(redactionIDs, *item.RedactionStatusID)
		}
		batch = append(batch, caseRepo.DocumentUpdate{
			GUID:              item.GUID,
			ReceivedAt:        item.ReceivedAt,
			RedactionStatusID: item.RedactionStatusID,
		})
	}

	if len(redactionIDs) > 0 {
		if err := s.redaction.ValidateIDs(ctx, redactionIDs); err != nil {
			return err
		}
	}

	return s.docRepo.UpdateDocuments(ctx, batch)
}

// RecordAudit appends an audit entry for a document version. Called after
// every user-visible create, update and delete.
func (s *documentService) RecordAudit(ctx context.Context, guid string, version int, rec *models.AuditRecord, action models.AuditAction) error {
	if !action.Valid() {
		return &domain.ValidationError{Message: fmt.Sprintf("invalid audit action '%s'", action)}
	}

	created, err := s.auditRepo.CreateAuditTrail(ctx, rec)
	if err != nil {
		return err
	}
	if created == nil {
		return nil
	}

	return s.auditRepo.CreateVersionAudit(ctx, &models.VersionAudit{
		DocumentGUID: guid,
		Version:      version,
		Action:       action,
		AuditTrailID: created.ID,
	})
}

// audit records an entry, logging rather than failing the caller when the
// audit write itself fails. Delivery is at-least-once; the entry is only
// ever written after the version it describes is durable.
func (s *documentService) audit(ctx context.Context, guid string, version int, rec *models.AuditRecord, action models.AuditAction) {
	if err := s.RecordAudit(ctx, guid, version, rec, action); err != nil {
		s.logger.Error("audit write failed",
			"guid", guid,
			"version", version,
			"action", action,
			"error", err,
		)
	}
}

// validateAddDocuments validates an upload batch request
func (s *documentService) validateAddDocuments(ctx context.Context, req *caseSvc.AddDocumentsRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.CaseID, validation.Required),
		validation.Field(&req.CaseReference, validation.Required, validation.Length(1, config.MaxCaseReferenceLength)),
		validation.Field(&req.Items, validation.Required),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}

	var redactionIDs []int64
	for i := range req.Items {
		if err := validateUploadItem(&req.Items[i]); err != nil {
			return err
		}
		if req.Items[i].RedactionStatusID != 0 {
			redactionIDs = append(redactionIDs, req.Items[i].RedactionStatusID)
		}
	}

	if len(redactionIDs) > 0 {
		return s.redaction.ValidateIDs(ctx, redactionIDs)
	}
	return nil
}

// validateAddVersion validates an add-version request
func (s *documentService) validateAddVersion(ctx context.Context, req *caseSvc.AddVersionRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.DocumentGUID, validation.Required),
		validation.Field(&req.CaseReference, validation.Required, validation.Length(1, config.MaxCaseReferenceLength)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}

	if err := validateUploadItem(&req.Upload); err != nil {
		return err
	}
	if req.Upload.RedactionStatusID != 0 {
		return s.redaction.ValidateIDs(ctx, []int64{req.Upload.RedactionStatusID})
	}
	return nil
}

func validateUploadItem(item *caseSvc.UploadItem) error {
	err := validation.ValidateStruct(item,
		validation.Field(&item.DocumentName, validation.Required, validation.Length(1, config.MaxDocumentNameLength)),
		validation.Field(&item.Stage, validation.Required),
		validation.Field(&item.DocumentType, validation.Required),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}
