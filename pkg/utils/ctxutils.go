// pkg/utils/ctxutils.go

package utils

import (
	"context"

	"backoffice-console/internal/authz"
	"backoffice-console/pkg/contextkeys"
	apperrors "backoffice-console/pkg/errors"
)

func WithActor(ctx context.Context, actor *authz.Actor) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}

func GetActorFromCtx(ctx context.Context) (*authz.Actor, error) {
	actor, ok := ctx.Value(contextkeys.ActorKey).(*authz.Actor)
	if !ok || actor == nil {
		return nil, apperrors.ErrActorNotFoundInContext
	}
	return actor, nil
}

// WithBearerToken сохраняет токен сессии: транспорт пробрасывает его в удалённый API.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextkeys.BearerTokenKey, token)
}

func GetBearerTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(contextkeys.BearerTokenKey).(string)
	return token
}
