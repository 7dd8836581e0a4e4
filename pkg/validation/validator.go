package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "backoffice-console/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// CustomValidator - обертка для использования в Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator; ошибки полей приводятся к ValidationError.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return toValidationError(err)
	}
	return nil
}

// Var проверяет одно значение по тегу (используется правилами полей формы).
func (cv *CustomValidator) Var(field interface{}, tag string) error {
	return cv.validator.Var(field, tag)
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// 1. Подключаем поддержку null-типов (из файла types_adapter.go)
	registerNullTypes(v)

	// 2. Регистрируем кастомные правила (из файла rules.go)
	// Если правило критично и не зарегистрировалось — паникуем, так как сервер не должен стартовать
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	out := &apperrors.ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(jsonName(fe), describe(fe))
	}
	return out
}

func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.Namespace()
	}
	return name
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "min":
		return "значение меньше " + fe.Param()
	case "max":
		return "значение больше " + fe.Param()
	case "perm_code":
		return "неверный код доступа"
	case "role_name":
		return "неверное имя роли"
	case "dive":
		return "неверный элемент списка"
	}
	return "неверное значение (" + fe.Tag() + ")"
}
