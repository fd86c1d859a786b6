package orchestrator

import (
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/model"
)

// acceptedValues keeps the values of fields shown for values. Fields with a
// digits rule are stored with ASCII digits.
func acceptedValues(form model.FormModel, values map[string]string, validator *checkout.Validator) map[string]string {
	out := make(map[string]string, len(values))
	form.Walk(func(_ model.Position, field *model.Field) bool {
		value, ok := values[field.Name]
		if !ok {
			return true
		}
		if !validator.Visible(*field, values) {
			return true
		}
		if hasDigitsRule(*field) {
			value = checkout.NormalizeDigits(value)
		}
		out[field.Name] = value
		return true
	})
	return out
}

func hasDigitsRule(field model.Field) bool {
	for _, rule := range field.Validations {
		if rule.Kind == model.ValidationRuleDigits {
			return true
		}
	}
	return false
}
