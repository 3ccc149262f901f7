package casework

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	models "casedocs/internal/domain/models/casework"
	caseRepo "casedocs/internal/domain/repositories/casework"
	"casedocs/internal/repository/postgres"
)

// PostgresRedactionStatusRepository implements RedactionStatusRepository
type PostgresRedactionStatusRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRedactionStatusRepository creates a new redaction-status repository
func NewRedactionStatusRepository(config *postgres.RepositoryConfig) caseRepo.RedactionStatusRepository {
	return &PostgresRedactionStatusRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListAll returns every catalogue row.
func (r *PostgresRedactionStatusRepository) ListAll(ctx context.Context) ([]models.RedactionStatus, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT id, key, name FROM %s ORDER BY id ASC
	`, r.tables.RedactionStatuses)

	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list redaction statuses: %w", err)
	}
	defer rows.Close()

	var statuses []models.RedactionStatus
	for rows.Next() {
		var s models.RedactionStatus
		if err := rows.Scan(&s.ID, &s.Key, &s.Name); err != nil {
			return nil, fmt.Errorf("scan redaction status: %w", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate redaction statuses: %w", err)
	}
	return statuses, nil
}
