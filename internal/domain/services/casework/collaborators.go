package casework

import (
	"context"
	"io"

	models "casedocs/internal/domain/models/casework"
)

// BlobProperties is the metadata subset the engine needs from storage.
type BlobProperties struct {
	ContentType string
	Size        int64
}

// BlobStore is the opaque key-value blob storage the engine writes
// uploads to and streams downloads from. Keys are container-relative
// paths produced by the storage path mapper.
type BlobStore interface {
	Put(ctx context.Context, container, key string, body io.Reader, contentType string) error
	GetProperties(ctx context.Context, container, key string) (*BlobProperties, error)
	DownloadStream(ctx context.Context, container, key string) (io.ReadCloser, error)
}

// BroadcastEventType mirrors the audit actions for outbound change events.
type BroadcastEventType string

const (
	BroadcastCreate BroadcastEventType = "Create"
	BroadcastUpdate BroadcastEventType = "Update"
	BroadcastDelete BroadcastEventType = "Delete"
)

// Broadcaster emits change notifications to integration subscribers.
// Delivery is fire-and-forget, at-least-once; failures are logged, never
// propagated into the originating operation.
type Broadcaster interface {
	BroadcastDocument(ctx context.Context, guid string, version int, eventType BroadcastEventType)
}

// AuditTrail is the append-only audit collaborator.
type AuditTrail interface {
	CreateAuditTrail(ctx context.Context, rec *models.AuditRecord) (*models.AuditRecord, error)
}
