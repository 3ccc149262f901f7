package casework

import (
	"context"

	models "casedocs/internal/domain/models/casework"
)

// RedactionStatusRepository reads the redaction-status catalogue.
type RedactionStatusRepository interface {
	// ListAll returns every catalogue row.
	ListAll(ctx context.Context) ([]models.RedactionStatus, error)
}
