package listeners

import (
	"context"
	"sync"
	"testing"
	"time"

	"backoffice-console/internal/entities"
	"backoffice-console/internal/events"
	"backoffice-console/internal/repositories"
	"backoffice-console/pkg/eventbus"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryAuditRepo struct {
	mu      sync.Mutex
	entries []entities.AuditEntry
}

func (r *memoryAuditRepo) Insert(_ context.Context, entry entities.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryAuditRepo) List(_ context.Context, _ repositories.AuditFilter) ([]entities.AuditEntry, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.AuditEntry(nil), r.entries...), uint64(len(r.entries)), nil
}

func TestAuditListener_RecordsMutationsAndRoleOutcomes(t *testing.T) {
	repo := &memoryAuditRepo{}
	bus := eventbus.New(zap.NewNop())
	NewAuditListener(repo, zap.NewNop()).Register(bus)

	at := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()
	bus.Publish(ctx, events.ResourceMutatedEvent{ActorID: "42", Resource: "offices", Action: "delete", RecordID: "5", OccurredAt: at})
	bus.Publish(ctx, events.RolePermissionsAppliedEvent{ActorID: "42", Role: "Admin", Operation: "save", Codes: []string{"LOVg", "LOVo"}, Err: "500", OccurredAt: at})
	bus.Publish(ctx, events.RolePermissionsAppliedEvent{ActorID: "42", Role: "Supervisor", Operation: "save", Codes: []string{"LOVg", "LOVo"}, OccurredAt: at})
	bus.Wait()

	entries, total, err := repo.List(ctx, repositories.AuditFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)

	byRecord := make(map[string]entities.AuditEntry)
	for _, e := range entries {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, at, e.CreatedAt)
		byRecord[e.RecordID] = e
	}
	assert.Equal(t, entities.AuditOutcomeOK, byRecord["5"].Outcome)
	assert.Equal(t, "offices", byRecord["5"].Resource)
	assert.Equal(t, entities.AuditOutcomeFailed, byRecord["Admin"].Outcome)
	assert.Equal(t, "500", byRecord["Admin"].Detail)
	assert.Equal(t, "LOVg,LOVo", byRecord["Supervisor"].Detail)
}
