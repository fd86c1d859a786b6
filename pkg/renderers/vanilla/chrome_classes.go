package vanilla

// ChromeClass is a CSS class the renderer adds around the fields.
type ChromeClass string

const (
	ClassFormErrors  ChromeClass = "ccif-form-errors"
	ClassFieldError  ChromeClass = "ccif-error"
	ClassHint        ChromeClass = "ccif-hint"
	ClassSubmit      ChromeClass = "ccif-submit"
	ClassInvalidRow  ChromeClass = "woocommerce-invalid"
	ClassRequiredRow ChromeClass = "validate-required"
)
