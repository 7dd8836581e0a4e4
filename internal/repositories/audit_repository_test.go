package repositories

import (
	"testing"
	"time"

	"backoffice-console/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAuditQuery(t *testing.T) {
	query, args, err := selectAuditQuery(AuditFilter{Resource: "offices", Outcome: "failed", Limit: 10, Offset: 20}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM audit_entries WHERE resource = $1 AND outcome = $2")
	assert.Contains(t, query, "ORDER BY created_at DESC, id LIMIT 10 OFFSET 20")
	assert.Equal(t, []interface{}{"offices", "failed"}, args)

	query, args, err = countAuditQuery(AuditFilter{}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(id) FROM audit_entries", query)
	assert.Empty(t, args)
}

func TestInsertAuditQuery_EmptyOptionalColumnsAreNull(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	query, args, err := insertAuditQuery(entities.AuditEntry{
		ID: "a1", ActorID: "7", Resource: "devices", Action: "create", Outcome: entities.AuditOutcomeOK, CreatedAt: at,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO audit_entries")
	require.Len(t, args, 8)
	assert.Nil(t, args[4])
	assert.Nil(t, args[6])
	assert.Equal(t, at, args[7])
}
