package casework

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"casedocs/internal/domain"
	models "casedocs/internal/domain/models/casework"
	caseRepo "casedocs/internal/domain/repositories/casework"
	"casedocs/internal/repository/postgres"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) caseRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateMany persists the default folder set for a new case. The unique
// constraint on (case_id, path) makes re-creation a conflict rather than
// a silent duplicate.
func (r *PostgresFolderRepository) CreateMany(ctx context.Context, folders []models.Folder) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (case_id, path)
		VALUES ($1, $2)
		RETURNING id
	`, r.tables.Folders)

	created := make([]models.Folder, 0, len(folders))
	for _, f := range folders {
		if err := executor.QueryRow(ctx, query, f.CaseID, f.Path).Scan(&f.ID); err != nil {
			if postgres.IsPgDuplicateError(err) {
				return nil, fmt.Errorf("folder '%s' already exists for case %d: %w",
					f.Path, f.CaseID, domain.ErrPersistence)
			}
			return nil, fmt.Errorf("create folder: %w", err)
		}
		created = append(created, f)
	}
	return created, nil
}

// GetByID retrieves a folder scoped to a case. A folder under a different
// case reads as not found, indistinguishable from a missing one.
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, caseID int64) (*models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT id, case_id, path
		FROM %s
		WHERE id = $1 AND case_id = $2
	`, r.tables.Folders)

	var f models.Folder
	if err := executor.QueryRow(ctx, query, id, caseID).Scan(&f.ID, &f.CaseID, &f.Path); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &f, nil
}

// GetByCaseAndPath retrieves a folder by its catalogue path.
func (r *PostgresFolderRepository) GetByCaseAndPath(ctx context.Context, caseID int64, path string) (*models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT id, case_id, path
		FROM %s
		WHERE case_id = $1 AND path = $2
	`, r.tables.Folders)

	var f models.Folder
	if err := executor.QueryRow(ctx, query, caseID, path).Scan(&f.ID, &f.CaseID, &f.Path); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder '%s': %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by path: %w", err)
	}
	return &f, nil
}

// ListByCase lists all folders for a case in catalogue path order.
func (r *PostgresFolderRepository) ListByCase(ctx context.Context, caseID int64) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, case_id, path
		FROM %s
		WHERE case_id = $1
		ORDER BY id ASC
	`, r.tables.Folders)

	return r.list(ctx, query, caseID)
}

// ListByCaseAndPaths lists the folders matching the given paths.
func (r *PostgresFolderRepository) ListByCaseAndPaths(ctx context.Context, caseID int64, paths []string) ([]models.Folder, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, case_id, path
		FROM %s
		WHERE case_id = $1 AND path = ANY($2)
		ORDER BY id ASC
	`, r.tables.Folders)

	return r.list(ctx, query, caseID, paths)
}

func (r *PostgresFolderRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.CaseID, &f.Path); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}
