package casework

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"casedocs/internal/domain"
	models "casedocs/internal/domain/models/casework"
	caseRepo "casedocs/internal/domain/repositories/casework"
)

// RedactionResolver serves the redaction-status catalogue through a
// read-through cache. The catalogue is reference data mutated only by
// administrative flows, so a TTL-bounded snapshot is safe for concurrent
// readers.
type RedactionResolver struct {
	repo   caseRepo.RedactionStatusRepository
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.RWMutex
	statuses  []models.RedactionStatus
	fetchedAt time.Time
}

// NewRedactionResolver creates a resolver over the catalogue repository.
func NewRedactionResolver(repo caseRepo.RedactionStatusRepository, ttl time.Duration, logger *slog.Logger) *RedactionResolver {
	return &RedactionResolver{repo: repo, ttl: ttl, logger: logger}
}

// Catalogue returns the current catalogue snapshot, refreshing from the
// repository when the cache has expired. An empty backing catalogue is a
// configuration fault, not a per-request error.
func (r *RedactionResolver) Catalogue(ctx context.Context) ([]models.RedactionStatus, error) {
	r.mu.RLock()
	if r.statuses != nil && time.Since(r.fetchedAt) < r.ttl {
		snapshot := r.statuses
		r.mu.RUnlock()
		return snapshot, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock
	if r.statuses != nil && time.Since(r.fetchedAt) < r.ttl {
		return r.statuses, nil
	}

	statuses, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load redaction statuses: %w", err)
	}
	if len(statuses) == 0 {
		return nil, &domain.ConfigurationError{Message: "redaction status catalogue is empty"}
	}

	r.statuses = statuses
	r.fetchedAt = time.Now()

	r.logger.Debug("redaction catalogue refreshed", "count", len(statuses))
	return r.statuses, nil
}

// ResolveName returns the display name for a redaction status id. Unknown
// or zero ids resolve to the empty string: read paths degrade gracefully
// rather than fail.
func (r *RedactionResolver) ResolveName(ctx context.Context, id int64) (string, error) {
	if id == 0 {
		return "", nil
	}
	catalogue, err := r.Catalogue(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range catalogue {
		if s.ID == id {
			return s.Name, nil
		}
	}
	return "", nil
}

// ValidateIDs checks that every id appears in the catalogue. Failure is a
// ValidationError reporting the full valid id set, so bulk-update callers
// can self-correct.
func (r *RedactionResolver) ValidateIDs(ctx context.Context, ids []int64) error {
	catalogue, err := r.Catalogue(ctx)
	if err != nil {
		return err
	}

	valid := make(map[int64]bool, len(catalogue))
	for _, s := range catalogue {
		valid[s.ID] = true
	}

	for _, id := range ids {
		if !valid[id] {
			return &domain.ValidationError{
				Message: fmt.Sprintf("unrecognized redaction status id %d, valid ids: %s", id, validIDList(catalogue)),
			}
		}
	}
	return nil
}

func validIDList(catalogue []models.RedactionStatus) string {
	ids := make([]int64, len(catalogue))
	for i, s := range catalogue {
		ids[i] = s.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
