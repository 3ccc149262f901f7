package casework

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	models "casedocs/internal/domain/models/casework"
	caseRepo "casedocs/internal/domain/repositories/casework"
	"casedocs/internal/repository/postgres"
)

// PostgresAuditRepository implements the AuditRepository interface.
// Both tables are append-only; nothing here updates or deletes.
type PostgresAuditRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(config *postgres.RepositoryConfig) caseRepo.AuditRepository {
	return &PostgresAuditRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateAuditTrail appends one audit-trail record.
func (r *PostgresAuditRepository) CreateAuditTrail(ctx context.Context, rec *models.AuditRecord) (*models.AuditRecord, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (case_id, user_id, details, logged_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, logged_at
	`, r.tables.AuditTrail)

	loggedAt := time.Now().UTC()
	err := executor.QueryRow(ctx, query, rec.CaseID, rec.UserID, rec.Details, loggedAt).
		Scan(&rec.ID, &rec.LoggedAt)
	if err != nil {
		return nil, fmt.Errorf("create audit trail: %w", err)
	}
	return rec, nil
}

// CreateVersionAudit links an audit-trail record to a document version.
func (r *PostgresAuditRepository) CreateVersionAudit(ctx context.Context, va *models.VersionAudit) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (document_guid, version, action, audit_trail_id)
		VALUES ($1, $2, $3, $4)
	`, r.tables.VersionAudit)

	_, err := executor.Exec(ctx, query, va.DocumentGUID, va.Version, string(va.Action), va.AuditTrailID)
	if err != nil {
		return fmt.Errorf("create version audit: %w", err)
	}
	return nil
}

// ListVersionAudit returns a document's audit entries, newest first.
func (r *PostgresAuditRepository) ListVersionAudit(ctx context.Context, guid string) ([]models.VersionAudit, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT va.document_guid, va.version, va.action, va.audit_trail_id,
		       at.id, at.case_id, at.user_id, at.details, at.logged_at
		FROM %s va
		JOIN %s at ON at.id = va.audit_trail_id
		WHERE va.document_guid = $1
		ORDER BY at.logged_at DESC, va.version DESC
	`, r.tables.VersionAudit, r.tables.AuditTrail)

	rows, err := executor.Query(ctx, query, guid)
	if err != nil {
		return nil, fmt.Errorf("list version audit: %w", err)
	}
	defer rows.Close()

	var entries []models.VersionAudit
	for rows.Next() {
		var va models.VersionAudit
		var rec models.AuditRecord
		if err := rows.Scan(
			&va.DocumentGUID, &va.Version, &va.Action, &va.AuditTrailID,
			&rec.ID, &rec.CaseID, &rec.UserID, &rec.Details, &rec.LoggedAt,
		); err != nil {
			return nil, fmt.Errorf("scan version audit: %w", err)
		}
		va.Record = &rec
		entries = append(entries, va)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version audit: %w", err)
	}
	return entries, nil
}
