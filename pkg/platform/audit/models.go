package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events for routing and retention.
type EventCategory string

const (
	// CategoryOperations covers routine directive construction.
	CategoryOperations EventCategory = "operations"
	// CategorySecurity covers registry writes and admin access failures.
	CategorySecurity EventCategory = "security"
)

type AuditEvent string

const (
	EventDirectiveBuilt     AuditEvent = "directive.built"
	EventDirectiveFailed    AuditEvent = "directive.failed"
	EventForeignAssetCached AuditEvent = "registry.foreign_asset_cached"
	EventAdminAuthFailed    AuditEvent = "admin.auth_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDirectiveBuilt:     CategoryOperations,
	EventDirectiveFailed:    CategoryOperations,
	EventForeignAssetCached: CategorySecurity,
	EventAdminAuthFailed:    CategorySecurity,
}

// Category returns the category of e. Unknown events are operational.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted when a directive is built or rejected and when the
// registry is changed. It is transport-agnostic so stores can fan out.
type Event struct {
	ID        uuid.UUID     `json:"id"`
	Category  EventCategory `json:"category"`
	Action    string        `json:"action"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
	// ActorID is the admin subject for registry writes.
	ActorID string `json:"actor_id,omitempty"`
	// Subject is the origin chain spec name.
	Subject     string `json:"subject"`
	Destination string `json:"destination,omitempty"`
	Direction   string `json:"direction,omitempty"`
	XcmVersion  int    `json:"xcm_version,omitempty"`
	AssetCount  int    `json:"asset_count,omitempty"`
	// Fingerprint is the hex blake2b-256 of the rendered directive.
	Fingerprint string `json:"fingerprint,omitempty"`
	// Reason carries the error code of failed builds.
	Reason string `json:"reason,omitempty"`
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists persisted events, most recent last.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks Emitter

// Emitter is what services publish audit events through.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
