package service

import (
	stderrors "errors"
	"time"

	"backoffice-console/internal/authz"
	"backoffice-console/pkg/errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionClaims - содержимое токена сессии, выданного удалённым API.
type SessionClaims struct {
	UserID         string   `json:"userId"`
	Permissions    []string `json:"permissions"`
	Roles          []string `json:"roles"`
	GovernorateID  string   `json:"governorateId,omitempty"`
	OfficeID       string   `json:"officeId,omitempty"`
	FullName       string   `json:"fullName,omitempty"`
	IsRefreshToken bool     `json:"isRefreshToken,omitempty"`
	jwt.RegisteredClaims
}

// Actor строит неизменяемый снимок сессии из утверждений токена.
func (c *SessionClaims) Actor() *authz.Actor {
	return authz.NewActor(c.UserID, c.Permissions, c.Roles, authz.Profile{
		GovernorateID: c.GovernorateID,
		OfficeID:      c.OfficeID,
		FullName:      c.FullName,
	})
}

type JWTService interface {
	GenerateAccessToken(claims SessionClaims) (string, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
	GetAccessTokenTTL() time.Duration
}

type jwtService struct {
	SecretKey      string
	AccessTokenExp time.Duration
	logger         *zap.Logger
}

func NewJWTService(secretKey string, accessTokenExp time.Duration, logger *zap.Logger) JWTService {
	return &jwtService{
		SecretKey:      secretKey,
		AccessTokenExp: accessTokenExp,
		logger:         logger.Named("jwt"),
	}
}

// GenerateAccessToken подписывает токен с теми же утверждениями, что выдаёт удалённый API.
// Используется в тестах и локальной разработке.
func (service *jwtService) GenerateAccessToken(claims SessionClaims) (string, error) {
	claims.IsRefreshToken = false
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(service.AccessTokenExp))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, &claims)
	return token.SignedString([]byte(service.SecretKey))
}

func (s *jwtService) GetAccessTokenTTL() time.Duration {
	return s.AccessTokenExp
}

func (service *jwtService) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			return []byte(service.SecretKey), nil
		default:
			return nil, errors.ErrInvalidSigningMethod
		}
	})

	if err != nil {
		service.logger.Debug("Ошибка парсинга или проверки подписи токена", zap.Error(err))
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		service.logger.Warn("Токен невалиден или не удалось извлечь claims")
		return nil, errors.ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, errors.ErrInvalidToken
	}
	if claims.IsRefreshToken {
		return nil, errors.ErrTokenIsNotAccess
	}

	return claims, nil
}
