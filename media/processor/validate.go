package processor

import (
	"errors"
	"fmt"

	validatorV10 "github.com/go-playground/validator/v10"

	apperrors "github.com/leeforge/imagekit/errors"
)

var validate *validatorV10.Validate

func init() {
	validate = validatorV10.New()
}

func getValidationMessage(fe validatorV10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must have at most %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
	}
}

// validationError turns validator output into a single validation AppError
// whose details map field namespaces to messages.
func validationError(err error) error {
	var fieldErrs validatorV10.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, "validation failed")
	}
	appErr := apperrors.NewValidation("invalid conversion target")
	for _, fe := range fieldErrs {
		appErr.WithDetail(fe.Namespace(), getValidationMessage(fe))
	}
	return appErr
}

// NormalizeTarget fills defaults into a copy of t and validates it.
func NormalizeTarget(t Target) (Target, error) {
	if t.Format != "" {
		f, err := ParseFormat(string(t.Format))
		if err != nil {
			return t, err
		}
		t.Format = f
	}
	if t.Fit != "" {
		fit, err := ParseFitMode(string(t.Fit))
		if err != nil {
			return t, err
		}
		t.Fit = fit
	}
	t.Quality = Quality(t.QualityValue())
	if t.Adjust != nil && *t.Adjust == (Adjustment{}) {
		t.Adjust = nil
	}

	if err := validate.Struct(t); err != nil {
		return t, validationError(err)
	}
	if t.Size != nil && t.Fit == "" {
		return t, apperrors.NewValidation("invalid conversion target").
			WithDetail("Target.Fit", "is required when a size is set")
	}
	if t.Format == FormatICO && len(t.IconSizes) == 0 && t.Size == nil {
		t.IconSizes = append([]int(nil), DefaultIconSizes...)
	}
	return t, nil
}
