package service

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields under their JSON names, which is what the UI knows.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and returns the first
// failure as a ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), fieldMessage(fe))
	}
	return apperrors.NewValidationError("", err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// ParseOrderID parses an order id taken from a route.
func ParseOrderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("orderId", "Invalid order id")
	}
	return id, nil
}

// ValidateQuantity rejects cart quantities below one.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return apperrors.NewValidationError("quantity", "Quantity must be at least 1")
	}
	return nil
}

func ValidateOrderStatus(status models.OrderStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("unknown order status %q", status))
	}
	return nil
}

// ClampQuantity bounds a requested quantity to [1, stock].
func ClampQuantity(requested, stock int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > stock {
		requested = stock
	}
	return requested
}
