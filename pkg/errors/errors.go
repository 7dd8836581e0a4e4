package errors

import (
	"fmt"
	"sort"
	"strings"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader   = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader = fmt.Errorf("неверный формат заголовка авторизации")
	ErrUnauthorized      = fmt.Errorf("неавторизован")
	ErrForbidden         = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrActorNotFoundInContext = fmt.Errorf("актор не найден в контексте запроса")

	// Общие
	ErrNotFound             = fmt.Errorf("запись не найдена")
	ErrBadRequest           = fmt.Errorf("неверный запрос")
	ErrConfirmationRequired = fmt.Errorf("требуется подтверждение удаления")
	ErrSessionNotFound      = fmt.Errorf("сессия формы не найдена или истекла")
)

// ConfigurationError - дефект конфигурации ресурса (неизвестный ключ, нет эндпоинта).
// Фатальна для экрана, но не для процесса.
type ConfigurationError struct {
	Resource string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ресурс '%s' недоступен: %s", e.Resource, e.Reason)
}

func NewConfigurationError(resource, format string, args ...interface{}) error {
	return &ConfigurationError{Resource: resource, Reason: fmt.Sprintf(format, args...)}
}

// AuthorizationError - у актора нет нужного кода доступа.
type AuthorizationError struct {
	Resource   string
	Permission string
}

func (e *AuthorizationError) Error() string {
	if e.Permission == "" {
		return fmt.Sprintf("доступ к ресурсу '%s' запрещён", e.Resource)
	}
	return fmt.Sprintf("доступ к ресурсу '%s' запрещён: требуется право '%s'", e.Resource, e.Permission)
}

func (e *AuthorizationError) Unwrap() error { return ErrForbidden }

// ValidationError - ошибки по полям формы, блокируют отправку.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "ошибка валидации: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) HasErrors() bool { return len(e.Fields) > 0 }

// TransportError - сбой сети или HTTP-ошибка удалённого API.
type TransportError struct {
	Resource   string
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: статус %d: %s", e.Method, e.URL, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, msg)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnitResult - результат одной единицы пакетной операции (например, одной роли).
type UnitResult struct {
	Unit string `json:"unit"`
	OK   bool   `json:"ok"`
	Err  string `json:"error,omitempty"`
}

// PartialBatchError - часть единиц пакета завершилась ошибкой.
type PartialBatchError struct {
	Units []UnitResult
}

func (e *PartialBatchError) Error() string {
	failed := make([]string, 0)
	for _, u := range e.Units {
		if !u.OK {
			failed = append(failed, fmt.Sprintf("%s (%s)", u.Unit, u.Err))
		}
	}
	return "пакетная операция завершилась с ошибками: " + strings.Join(failed, ", ")
}

func (e *PartialBatchError) Failed() []UnitResult {
	out := make([]UnitResult, 0)
	for _, u := range e.Units {
		if !u.OK {
			out = append(out, u)
		}
	}
	return out
}

// HttpError - ошибка с HTTP-кодом и сообщением для пользователя.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}
