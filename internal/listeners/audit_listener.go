package listeners

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice-console/internal/entities"
	"backoffice-console/internal/events"
	"backoffice-console/internal/repositories"
	"backoffice-console/pkg/eventbus"
)

// AuditListener пишет в журнал каждое изменение, сделанное через консоль.
type AuditListener struct {
	repo   repositories.AuditRepositoryInterface
	logger *zap.Logger
}

func NewAuditListener(repo repositories.AuditRepositoryInterface, logger *zap.Logger) *AuditListener {
	return &AuditListener{repo: repo, logger: logger.Named("audit_listener")}
}

func (l *AuditListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.ResourceMutatedEventName, l.handleResourceMutated)
	bus.Subscribe(events.RolePermissionsAppliedEventName, l.handleRolePermissionsApplied)
	l.logger.Info("AuditListener подписан на события",
		zap.Strings("events", []string{events.ResourceMutatedEventName, events.RolePermissionsAppliedEventName}))
}

func (l *AuditListener) handleResourceMutated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ResourceMutatedEvent)
	if !ok {
		return nil
	}
	return l.repo.Insert(ctx, entities.AuditEntry{
		ID:        uuid.New().String(),
		ActorID:   e.ActorID,
		Resource:  e.Resource,
		Action:    e.Action,
		RecordID:  e.RecordID,
		Outcome:   entities.AuditOutcomeOK,
		CreatedAt: stamp(e.OccurredAt),
	})
}

// handleRolePermissionsApplied - по записи на роль, в том числе для неудачных.
func (l *AuditListener) handleRolePermissionsApplied(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RolePermissionsAppliedEvent)
	if !ok {
		return nil
	}
	entry := entities.AuditEntry{
		ID:        uuid.New().String(),
		ActorID:   e.ActorID,
		Resource:  "role-permissions",
		Action:    e.Operation,
		RecordID:  e.Role,
		Outcome:   entities.AuditOutcomeOK,
		Detail:    strings.Join(e.Codes, ","),
		CreatedAt: stamp(e.OccurredAt),
	}
	if e.Err != "" {
		entry.Outcome = entities.AuditOutcomeFailed
		entry.Detail = e.Err
	}
	return l.repo.Insert(ctx, entry)
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
