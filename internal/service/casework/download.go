package casework

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"casedocs/internal/domain"
	models "casedocs/internal/domain/models/casework"
	caseRepo "casedocs/internal/domain/repositories/casework"
	caseSvc "casedocs/internal/domain/services/casework"
)

// DownloadService serves version bytes from blob storage, enforcing the
// virus-scan gate: only versions with a clean scan verdict may be
// downloaded.
type DownloadService struct {
	docRepo caseRepo.DocumentRepository
	blob    caseSvc.BlobStore
	logger  *slog.Logger
}

// NewDownloadService creates a download service.
func NewDownloadService(docRepo caseRepo.DocumentRepository, blob caseSvc.BlobStore, logger *slog.Logger) *DownloadService {
	return &DownloadService{docRepo: docRepo, blob: blob, logger: logger}
}

// Download resolves a document version and opens a stream over its bytes.
// A version that has not been scanned, or whose scan found malware, is
// refused outright with a ValidationError.
func (s *DownloadService) Download(ctx context.Context, guid string, version int) (io.ReadCloser, *models.DocumentVersion, error) {
	doc, err := s.docRepo.GetWithVersions(ctx, guid)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", guid)}
	}

	target := liveVersion(doc, version)
	if target == nil {
		return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("version %d of document %s not found", version, guid)}
	}

	if !target.Downloadable() {
		return nil, nil, &domain.ValidationError{
			Message: fmt.Sprintf("document version is not downloadable, virus check status is '%s'",
				target.EffectiveVirusCheckStatus()),
		}
	}

	stream, err := s.blob.DownloadStream(ctx, target.BlobStorageContainer, target.BlobStoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob stream: %w", err)
	}
	if stream == nil {
		return nil, nil, &domain.NotFoundError{Message: "stored file not found"}
	}

	s.logger.Debug("download opened",
		"guid", guid,
		"version", version,
		"blob_path", target.BlobStoragePath,
	)

	return stream, target, nil
}

// Upload writes version bytes to the version's storage location.
func (s *DownloadService) Upload(ctx context.Context, v *models.DocumentVersion, body io.Reader) error {
	if err := s.blob.Put(ctx, v.BlobStorageContainer, v.BlobStoragePath, body, v.Mime); err != nil {
		return &domain.PersistenceError{Message: fmt.Sprintf("store file %s: %v", v.BlobStoragePath, err)}
	}
	return nil
}

// UploadVersion resolves a live version and stores its bytes at the
// location derived when the version row was created. Bytes arrive before
// the scanner's verdict, so the scan gate does not apply here.
func (s *DownloadService) UploadVersion(ctx context.Context, guid string, version int, body io.Reader) error {
	doc, err := s.docRepo.GetWithVersions(ctx, guid)
	if err != nil {
		return err
	}
	if doc == nil {
		return &domain.NotFoundError{Message: fmt.Sprintf("document %s not found", guid)}
	}

	target := liveVersion(doc, version)
	if target == nil {
		return &domain.NotFoundError{Message: fmt.Sprintf("version %d of document %s not found", version, guid)}
	}

	if err := s.Upload(ctx, target, body); err != nil {
		return err
	}

	s.logger.Debug("version bytes stored",
		"guid", guid,
		"version", version,
		"blob_path", target.BlobStoragePath,
	)
	return nil
}

func liveVersion(doc *models.Document, version int) *models.DocumentVersion {
	for i := range doc.Versions {
		v := &doc.Versions[i]
		if v.Version == version && !v.IsDeleted {
			return v
		}
	}
	return nil
}
