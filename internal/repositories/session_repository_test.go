package repositories

import (
	"context"
	"testing"
	"time"

	apperrors "backoffice-console/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Active string            `json:"active"`
	Values map[string]string `json:"values"`
}

func newSessionRepo(t *testing.T) (SessionRepositoryInterface, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionRepository(client, time.Minute), mr
}

func TestRedisSessionRepository_SaveLoadDelete(t *testing.T) {
	repo, mr := newSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "tab:1:ministry-hierarchy", sample{Active: "sections", Values: map[string]string{"a": "b"}}))
	assert.True(t, mr.Exists("console:tab:1:ministry-hierarchy"))

	var got sample
	require.NoError(t, repo.Load(ctx, "tab:1:ministry-hierarchy", &got))
	assert.Equal(t, "sections", got.Active)

	require.NoError(t, repo.Delete(ctx, "tab:1:ministry-hierarchy"))
	assert.ErrorIs(t, repo.Load(ctx, "tab:1:ministry-hierarchy", &got), apperrors.ErrSessionNotFound)
}

func TestRedisSessionRepository_Expires(t *testing.T) {
	repo, mr := newSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "form:1:x", sample{Active: "x"}))
	ok, err := repo.Touch(ctx, "form:1:x")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)

	var got sample
	assert.ErrorIs(t, repo.Load(ctx, "form:1:x", &got), apperrors.ErrSessionNotFound)
	ok, err = repo.Touch(ctx, "form:1:x")
	require.NoError(t, err)
	assert.False(t, ok)
}
