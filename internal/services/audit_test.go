package services

import (
	"context"
	"testing"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/entities"
	"backoffice-console/internal/repositories"
	apperrors "backoffice-console/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuditRepo struct {
	got repositories.AuditFilter
}

func (r *stubAuditRepo) Insert(context.Context, entities.AuditEntry) error { return nil }

func (r *stubAuditRepo) List(_ context.Context, filter repositories.AuditFilter) ([]entities.AuditEntry, uint64, error) {
	r.got = filter
	return nil, 0, nil
}

func TestAuditService_ListPagesThroughRepository(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, zapNop())

	page, err := svc.List(context.Background(), actorWith(authz.AuditView), repositories.AuditFilter{Resource: "offices"}, 3, 20)
	require.NoError(t, err)

	assert.Equal(t, uint64(20), repo.got.Limit)
	assert.Equal(t, uint64(40), repo.got.Offset)
	assert.Equal(t, "offices", repo.got.Resource)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 3, page.Page)
}

func TestAuditService_RequiresAuditPermission(t *testing.T) {
	_, err := NewAuditService(&stubAuditRepo{}, zapNop()).List(context.Background(), actorWith(authz.Offices), repositories.AuditFilter{}, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
