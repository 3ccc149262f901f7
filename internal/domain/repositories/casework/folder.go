package casework

import (
	"context"

	models "casedocs/internal/domain/models/casework"
)

// FolderRepository defines data access for the case folder taxonomy.
// Folders are created in bulk at case creation and never deleted.
type FolderRepository interface {
	// CreateMany persists the default folder set for a new case.
	CreateMany(ctx context.Context, folders []models.Folder) ([]models.Folder, error)

	// GetByID retrieves a folder scoped to a case. A folder that exists
	// under a different case reads as not found.
	GetByID(ctx context.Context, id, caseID int64) (*models.Folder, error)

	// GetByCaseAndPath retrieves a folder by its catalogue path.
	GetByCaseAndPath(ctx context.Context, caseID int64, path string) (*models.Folder, error)

	// ListByCase lists all folders for a case.
	ListByCase(ctx context.Context, caseID int64) ([]models.Folder, error)

	// ListByCaseAndPaths lists the folders matching the given paths.
	ListByCaseAndPaths(ctx context.Context, caseID int64, paths []string) ([]models.Folder, error)
}
