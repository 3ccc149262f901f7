package casework

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"casedocs/internal/domain"
	models "casedocs/internal/domain/models/casework"
	"casedocs/internal/domain/repositories"
	caseRepo "casedocs/internal/domain/repositories/casework"
	"casedocs/internal/repository/postgres"
)

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) caseRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// versionColumns is the scan-order column list for document versions.
const versionColumns = `document_guid, version, file_name, original_filename, mime, size,
		document_type, stage, blob_storage_container, blob_storage_path, document_uri,
		date_received, COALESCE(redaction_status_id, 0), is_late_entry, virus_check_status, is_deleted`

func scanVersion(row pgx.Row, v *models.DocumentVersion) error {
	return row.Scan(
		&v.DocumentGUID,
		&v.Version,
		&v.FileName,
		&v.OriginalFilename,
		&v.Mime,
		&v.Size,
		&v.DocumentType,
		&v.Stage,
		&v.BlobStorageContainer,
		&v.BlobStoragePath,
		&v.DocumentURI,
		&v.DateReceived,
		&v.RedactionStatusID,
		&v.IsLateEntry,
		&v.VirusCheckStatus,
		&v.IsDeleted,
	)
}

// nullableID maps a zero id to NULL for optional foreign keys.
func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// inTx runs fn inside the context transaction when one exists, otherwise
// inside a repository-local transaction. CreateDocument needs the
// document and version-1 rows to land both-or-neither even when the
// caller did not open a transaction.
func (r *PostgresDocumentRepository) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if repositories.GetTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			r.logger.Error("rollback failed", "error", err)
		}
	}()

	if err := fn(repositories.SetTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CreateDocument persists a new document with its version 1 row.
func (r *PostgresDocumentRepository) CreateDocument(ctx context.Context, doc *models.Document, v *models.DocumentVersion) (*models.DocumentVersion, error) {
	err := r.inTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)

		query := fmt.Sprintf(`
			INSERT INTO %s (guid, case_id, folder_id, name, is_deleted, created_at)
			VALUES ($1, $2, $3, $4, false, $5)
			RETURNING created_at
		`, r.tables.Documents)

		err := executor.QueryRow(txCtx, query,
			doc.GUID,
			doc.CaseID,
			doc.FolderID,
			doc.Name,
			doc.CreatedAt,
		).Scan(&doc.CreatedAt)
		if err != nil {
			if postgres.IsPgDuplicateError(err) {
				return &domain.DuplicateNameError{FileName: doc.Name, FolderID: doc.FolderID}
			}
			if postgres.IsPgForeignKeyError(err) {
				return &domain.ValidationError{Message: fmt.Sprintf("folder %d does not exist", doc.FolderID)}
			}
			return fmt.Errorf("create document: %w", err)
		}

		return r.insertVersion(txCtx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// NextVersion computes max(version)+1 for a document. Inside a
// transaction the owning document row is locked first, so concurrent
// allocations against the same document serialize.
func (r *PostgresDocumentRepository) NextVersion(ctx context.Context, guid string) (int, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	if repositories.GetTx(ctx) != nil {
		lock := fmt.Sprintf(`SELECT guid FROM %s WHERE guid = $1 FOR UPDATE`, r.tables.Documents)
		var locked string
		if err := executor.QueryRow(ctx, lock, guid).Scan(&locked); err != nil {
			if postgres.IsPgNoRowsError(err) {
				return 0, fmt.Errorf("document %s: %w", guid, domain.ErrNotFound)
			}
			return 0, fmt.Errorf("lock document: %w", err)
		}
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(version), 0) + 1
		FROM %s
		WHERE document_guid = $1
	`, r.tables.DocumentVersions)

	var next int
	if err := executor.QueryRow(ctx, query, guid).Scan(&next); err != nil {
		return 0, fmt.Errorf("next version: %w", err)
	}
	return next, nil
}

// CreateVersion appends a version row with a pre-allocated number.
func (r *PostgresDocumentRepository) CreateVersion(ctx context.Context, v *models.DocumentVersion) (*models.DocumentVersion, error) {
	if err := r.insertVersion(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *PostgresDocumentRepository) insertVersion(ctx context.Context, v *models.DocumentVersion) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (document_guid, version, file_name, original_filename, mime, size,
			document_type, stage, blob_storage_container, blob_storage_path, document_uri,
			date_received, redaction_status_id, is_late_entry, virus_check_status, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, false)
	`, r.tables.DocumentVersions)

	_, err := executor.Exec(ctx, query,
		v.DocumentGUID,
		v.Version,
		v.FileName,
		v.OriginalFilename,
		v.Mime,
		v.Size,
		v.DocumentType,
		v.Stage,
		v.BlobStorageContainer,
		v.BlobStoragePath,
		v.DocumentURI,
		v.DateReceived,
		nullableID(v.RedactionStatusID),
		v.IsLateEntry,
		string(v.EffectiveVirusCheckStatus()),
	)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			// Concurrent allocation of the same version number; the
			// primary key makes the race lose cleanly.
			return fmt.Errorf("version %d of document %s already exists: %w",
				v.Version, v.DocumentGUID, domain.ErrPersistence)
		}
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

// SoftDeleteVersion marks a version deleted, returning the deleted row or
// nil when guid+version does not resolve to a live version.
func (r *PostgresDocumentRepository) SoftDeleteVersion(ctx context.Context, guid string, version int) (*models.DocumentVersion, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET is_deleted = true
		WHERE document_guid = $1 AND version = $2 AND is_deleted = false
		RETURNING `+versionColumns+`
	`, r.tables.DocumentVersions)

	var v models.DocumentVersion
	err := scanVersion(executor.QueryRow(ctx, query, guid, version), &v)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("soft delete version: %w", err)
	}
	return &v, nil
}

// SoftDeleteDocument marks the owning document deleted.
func (r *PostgresDocumentRepository) SoftDeleteDocument(ctx context.Context, guid string) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s SET is_deleted = true WHERE guid = $1
	`, r.tables.Documents)

	tag, err := executor.Exec(ctx, query, guid)
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", guid, domain.ErrNotFound)
	}
	return nil
}

// CountLiveVersions counts non-deleted versions of a document.
func (r *PostgresDocumentRepository) CountLiveVersions(ctx context.Context, guid string) (int, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE document_guid = $1 AND is_deleted = false
	`, r.tables.DocumentVersions)

	var count int
	if err := executor.QueryRow(ctx, query, guid).Scan(&count); err != nil {
		return 0, fmt.Errorf("count live versions: %w", err)
	}
	return count, nil
}

// GetByGUID retrieves a non-deleted document with its latest live version
// attached. Deleted documents read as not found.
func (r *PostgresDocumentRepository) GetByGUID(ctx context.Context, guid string) (*models.Document, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT guid, case_id, folder_id, name, is_deleted, created_at
		FROM %s
		WHERE guid = $1 AND is_deleted = false
	`, r.tables.Documents)

	var doc models.Document
	err := executor.QueryRow(ctx, query, guid).Scan(
		&doc.GUID,
		&doc.CaseID,
		&doc.FolderID,
		&doc.Name,
		&doc.IsDeleted,
		&doc.CreatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", guid, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	latest, err := r.latestLiveVersion(ctx, guid)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		doc.Versions = []models.DocumentVersion{*latest}
	}
	return &doc, nil
}

func (r *PostgresDocumentRepository) latestLiveVersion(ctx context.Context, guid string) (*models.DocumentVersion, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT `+versionColumns+`
		FROM %s
		WHERE document_guid = $1 AND is_deleted = false
		ORDER BY version DESC
		LIMIT 1
	`, r.tables.DocumentVersions)

	var v models.DocumentVersion
	err := scanVersion(executor.QueryRow(ctx, query, guid), &v)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest version: %w", err)
	}
	return &v, nil
}

// GetWithVersions retrieves a non-deleted document with its full version
// chain, deleted versions included, ordered by ascending version.
func (r *PostgresDocumentRepository) GetWithVersions(ctx context.Context, guid string) (*models.Document, error) {
	doc, err := r.GetByGUID(ctx, guid)
	if err != nil {
		return nil, err
	}

	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT `+versionColumns+`
		FROM %s
		WHERE document_guid = $1
		ORDER BY version ASC
	`, r.tables.DocumentVersions)

	rows, err := executor.Query(ctx, query, guid)
	if err != nil {
		return nil, fmt.Errorf("get versions: %w", err)
	}
	defer rows.Close()

	doc.Versions = doc.Versions[:0]
	for rows.Next() {
		var v models.DocumentVersion
		if err := scanVersion(rows, &v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		doc.Versions = append(doc.Versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}

	return doc, nil
}

// ListByFolder lists non-deleted documents in a folder, each with its
// latest live version attached.
func (r *PostgresDocumentRepository) ListByFolder(ctx context.Context, folderID int64) ([]models.Document, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT guid, case_id, folder_id, name, is_deleted, created_at
		FROM %s
		WHERE folder_id = $1 AND is_deleted = false
		ORDER BY created_at ASC, guid ASC
	`, r.tables.Documents)

	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		if err := rows.Scan(&doc.GUID, &doc.CaseID, &doc.FolderID, &doc.Name, &doc.IsDeleted, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	for i := range docs {
		latest, err := r.latestLiveVersion(ctx, docs[i].GUID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			docs[i].Versions = []models.DocumentVersion{*latest}
		}
	}
	return docs, nil
}

// UpdateDocuments applies a bulk metadata update to the latest live
// version of each named document.
func (r *PostgresDocumentRepository) UpdateDocuments(ctx context.Context, batch []caseRepo.DocumentUpdate) error {
	return r.inTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)

		query := fmt.Sprintf(`
			UPDATE %s
			SET date_received = COALESCE($2, date_received),
			    redaction_status_id = COALESCE($3, redaction_status_id)
			WHERE document_guid = $1 AND is_deleted = false
			  AND version = (
				SELECT MAX(version) FROM %s WHERE document_guid = $1 AND is_deleted = false
			  )
		`, r.tables.DocumentVersions, r.tables.DocumentVersions)

		for _, item := range batch {
			tag, err := executor.Exec(txCtx, query, item.GUID, item.ReceivedAt, item.RedactionStatusID)
			if err != nil {
				return fmt.Errorf("update document %s: %w", item.GUID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("document %s: %w", item.GUID, domain.ErrNotFound)
			}
		}
		return nil
	})
}

// CreateAVStatuses records scan verdicts in bulk.
func (r *PostgresDocumentRepository) CreateAVStatuses(ctx context.Context, batch []caseRepo.AVStatusUpdate) error {
	return r.inTx(ctx, func(txCtx context.Context) error {
		for _, item := range batch {
			if err := r.UpdateAVStatus(txCtx, item); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateAVStatus records a single scan verdict against a version.
func (r *PostgresDocumentRepository) UpdateAVStatus(ctx context.Context, item caseRepo.AVStatusUpdate) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET virus_check_status = $3
		WHERE document_guid = $1 AND version = $2
	`, r.tables.DocumentVersions)

	tag, err := executor.Exec(ctx, query, item.GUID, item.Version, string(item.Status))
	if err != nil {
		return fmt.Errorf("update av status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("version %d of document %s: %w", item.Version, item.GUID, domain.ErrNotFound)
	}
	return nil
}
