// Package validate проверяет необработанные тела запросов по схемам входа.
// Неизвестные поля отклоняются, нарушения собираются все сразу.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/order-service/internal/domain"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// в сообщениях об ошибках используем имена полей из json-тегов
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(val, "digits", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return false
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
	mustRegister(val, "rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	return val
}

func mustRegister(val *validator.Validate, tag string, fn validator.Func) {
	if err := val.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// ParseOrderInput декодирует и проверяет полное тело создания заказа.
func ParseOrderInput(r io.Reader) (domain.OrderInput, error) {
	var in domain.OrderInput
	if err := decodeStrict(r, &in); err != nil {
		return domain.OrderInput{}, err
	}
	if err := check(in); err != nil {
		return domain.OrderInput{}, err
	}
	return in, nil
}

// ParseOrderUpdate декодирует и проверяет усечённое тело обновления.
func ParseOrderUpdate(r io.Reader) (domain.OrderUpdateInput, error) {
	var in domain.OrderUpdateInput
	if err := decodeStrict(r, &in); err != nil {
		return domain.OrderUpdateInput{}, err
	}
	if err := check(in); err != nil {
		return domain.OrderUpdateInput{}, err
	}
	return in, nil
}

func decodeStrict(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &domain.ValidationError{Violations: []string{
			fmt.Sprintf("invalid request body: %v", err),
		}}
	}
	return nil
}

func check(in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var ferrs validator.ValidationErrors
	if !errors.As(err, &ferrs) {
		return err
	}
	violations := make([]string, 0, len(ferrs))
	for _, fe := range ferrs {
		violations = append(violations, message(fe))
	}
	return &domain.ValidationError{Violations: violations}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fe.Field())
	case "min":
		return fmt.Sprintf("%s must contain at least one item", fe.Field())
	case "digits":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	case "rfc3339":
		return fmt.Sprintf("%s must be an ISO-8601 timestamp with an explicit offset", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
