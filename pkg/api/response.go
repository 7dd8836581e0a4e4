package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "backoffice-console/pkg/errors"
)

type Response[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Body    T      `json:"body,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

type ListBody[T any] struct {
	List       []T             `json:"list"`
	Pagination *PaginationMeta `json:"pagination"`
}

type PaginationMeta struct {
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

// SuccessOne — для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, Response[T]{
		Status:  true,
		Message: message,
		Body:    data,
	})
}

func SuccessList[T any](c echo.Context, message string, list []T, total, page, pageSize int) error {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	if list == nil {
		list = make([]T, 0)
	}

	body := ListBody[T]{
		List: list,
		Pagination: &PaginationMeta{
			TotalItems: total,
			TotalPages: totalPages,
			Page:       page,
			PageSize:   pageSize,
		},
	}

	return c.JSON(http.StatusOK, Response[ListBody[T]]{
		Status:  true,
		Message: message,
		Body:    body,
	})
}

// StatusFor переводит ошибку из таксономии pkg/errors в HTTP-код и текст для пользователя.
func StatusFor(err error) (int, string, any) {
	var (
		httpErr   *apperrors.HttpError
		valErr    *apperrors.ValidationError
		batchErr  *apperrors.PartialBatchError
		authErr   *apperrors.AuthorizationError
		cfgErr    *apperrors.ConfigurationError
		remoteErr *apperrors.TransportError
	)

	switch {
	case errors.As(err, &httpErr):
		if len(httpErr.Details) == 0 {
			return httpErr.Code, httpErr.Message, nil
		}
		return httpErr.Code, httpErr.Message, httpErr.Details
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity, "Проверьте заполнение полей", valErr.Fields
	case errors.As(err, &batchErr):
		return http.StatusMultiStatus, "Операция выполнена частично", batchErr.Units
	case errors.As(err, &authErr):
		return http.StatusForbidden, authErr.Error(), nil
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, "Раздел недоступен", map[string]string{"resource": cfgErr.Resource}
	case errors.As(err, &remoteErr):
		// ошибки клиента удалённого API (409, 422...) отдаются как есть, чтобы показать их у ресурса
		if remoteErr.StatusCode >= 400 && remoteErr.StatusCode < 500 {
			return remoteErr.StatusCode, remoteErr.Message, map[string]string{"resource": remoteErr.Resource}
		}
		return http.StatusBadGateway, "Удалённый сервис недоступен", map[string]string{"resource": remoteErr.Resource}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil
	case errors.Is(err, apperrors.ErrEmptyAuthHeader),
		errors.Is(err, apperrors.ErrInvalidAuthHeader),
		errors.Is(err, apperrors.ErrInvalidToken),
		errors.Is(err, apperrors.ErrInvalidSigningMethod),
		errors.Is(err, apperrors.ErrTokenExpired),
		errors.Is(err, apperrors.ErrTokenIsNotAccess),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrActorNotFoundInContext):
		return http.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrSessionNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, apperrors.ErrConfirmationRequired):
		return http.StatusConflict, err.Error(), nil
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, err.Error(), nil
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok {
			return echoErr.Code, msg, nil
		}
		return echoErr.Code, http.StatusText(echoErr.Code), nil
	}
	return http.StatusInternalServerError, "Внутренняя ошибка сервера", nil
}

func ErrorResponse(c echo.Context, err error) error {
	code, msg, details := StatusFor(err)

	return c.JSON(code, Response[any]{
		Status:  false,
		Message: msg,
		Errors:  details,
	})
}
