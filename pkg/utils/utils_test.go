package utils

import (
	"context"
	"net/url"
	"testing"

	"backoffice-console/internal/authz"
	apperrors "backoffice-console/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaginationParams(t *testing.T) {
	page, size := ParsePaginationParams(url.Values{})
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	page, size = ParsePaginationParams(url.Values{"page": {"0"}, "page_size": {"500"}})
	assert.Equal(t, 1, page)
	assert.Equal(t, MaxPageSize, size)

	page, size = ParsePaginationParams(url.Values{"page": {"3"}, "page_size": {"25"}})
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, size)
}

func TestParseFilters(t *testing.T) {
	filters := ParseFilters(url.Values{
		"filter[name]":   {"Karkh"},
		"filter[]":       {"skip"},
		"filter[code]":   {""},
		"search":         {"  bag "},
		"page":           {"2"},
	})
	assert.Equal(t, map[string]string{"name": "Karkh", "search": "bag"}, filters)
}

func TestActorContext(t *testing.T) {
	_, err := GetActorFromCtx(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrActorNotFoundInContext)

	actor := authz.NewActor("1", []string{authz.Offices}, nil, authz.Profile{})
	ctx := WithBearerToken(WithActor(context.Background(), actor), "tkn")

	got, err := GetActorFromCtx(ctx)
	require.NoError(t, err)
	assert.Same(t, actor, got)
	assert.Equal(t, "tkn", GetBearerTokenFromCtx(ctx))
}
