package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"courtside/pkg/logger"
	"courtside/pkg/model"
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{2,32}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type PromoValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPromoValidator(log *logger.Logger) *PromoValidator {
	v := validator.New()

	if err := v.RegisterValidation("promo_code", validatePromoCode); err != nil {
		log.Fatal("Failed to register 'promo_code' validator",
			"error", err,
		)
	}

	return &PromoValidator{
		validate: v,
		logger:   log,
	}
}

func validatePromoCode(fl validator.FieldLevel) bool {
	return codeRegex.MatchString(fl.Field().String())
}

func (v *PromoValidator) Validate(promo *model.PromoCode) error {
	if err := v.validate.Struct(promo); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if promo.DiscountType == model.DiscountPercentage && promo.DiscountValue > 100 {
		return ValidationErrors{
			ValidationError{
				Field:   "DiscountValue",
				Message: "percentage discount cannot exceed 100",
			},
		}
	}

	if promo.DiscountType == model.DiscountFixed && promo.MaxDiscountAmount > 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "MaxDiscountAmount",
				Message: "max_discount_amount only applies to percentage discounts",
			},
		}
	}

	return nil
}

func (v *PromoValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "promo_code":
			message = fmt.Sprintf("%s must be 2-32 uppercase letters or digits", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
