package checkout

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/model"
	"github.com/goliatone/go-checkoutform/pkg/render"
	"github.com/goliatone/go-checkoutform/pkg/visibility"
)

const phonePattern = `^\+?[0-9]{8,15}$`

var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

// Validator checks a submission against the form model.
type Validator struct {
	eval visibility.Evaluator
}

// NewValidator builds a validator that resolves visibilityRule and
// requiredRule metadata with eval. A nil evaluator treats every field as
// visible and ignores conditional requirements.
func NewValidator(eval visibility.Evaluator) *Validator {
	return &Validator{eval: eval}
}

// Validate returns field errors keyed by field name. Fields hidden by their
// visibility rule are neither required nor checked. A city must belong to
// the selected province when the mapping knows that province.
func (v *Validator) Validate(form model.FormModel, values map[string]string, mapping geo.Mapping) render.ErrorMapping {
	result := render.ErrorMapping{Fields: map[string][]string{}}
	ctx := visibility.Context{Values: toAny(values)}

	form.Walk(func(_ model.Position, field *model.Field) bool {
		visible, err := v.holds(field.Name, field.Meta(model.MetadataVisibilityRule), true, ctx)
		if err != nil {
			result.Form = append(result.Form, err.Error())
		}
		if !visible {
			return true
		}

		required := field.Required
		if !required {
			required, err = v.holds(field.Name, field.Meta(model.MetadataRequiredRule), false, ctx)
			if err != nil {
				result.Form = append(result.Form, err.Error())
			}
		}

		value := strings.TrimSpace(values[field.Name])
		if field.Type == model.FieldTypeCheckbox && !isChecked(value) {
			value = ""
		}
		if value == "" {
			if required {
				result.Fields[field.Name] = append(result.Fields[field.Name], fmt.Sprintf("%s الزامی است.", labelOf(field)))
			}
			return true
		}

		if messages := checkRules(field, value); len(messages) > 0 {
			result.Fields[field.Name] = append(result.Fields[field.Name], messages...)
		}
		if dependsOn := field.Meta(model.MetadataDependsOn); dependsOn != "" {
			state := strings.TrimSpace(values[dependsOn])
			if _, known := mapping[state]; known && !mapping.Has(state, value) {
				result.Fields[field.Name] = append(result.Fields[field.Name], "شهر انتخاب‌شده با استان مطابقت ندارد.")
			}
		}
		return true
	})

	if len(result.Fields) == 0 {
		result.Fields = nil
	}
	result.Form = render.MergeFormErrors(nil, result.Form...)
	return result
}

// Visible reports whether field is shown for values.
func (v *Validator) Visible(field model.Field, values map[string]string) bool {
	visible, _ := v.holds(field.Name, field.Meta(model.MetadataVisibilityRule), true, visibility.Context{Values: toAny(values)})
	return visible
}

// Required reports whether field must be filled for values.
func (v *Validator) Required(field model.Field, values map[string]string) bool {
	if field.Required {
		return true
	}
	required, _ := v.holds(field.Name, field.Meta(model.MetadataRequiredRule), false, visibility.Context{Values: toAny(values)})
	return required
}

func (v *Validator) holds(name, rule string, fallback bool, ctx visibility.Context) (bool, error) {
	if strings.TrimSpace(rule) == "" || v == nil || v.eval == nil {
		return fallback, nil
	}
	ok, err := v.eval.Eval(name, rule, ctx)
	if err != nil {
		return fallback, fmt.Errorf("checkout: rule for %s: %w", name, err)
	}
	return ok, nil
}

func checkRules(field *model.Field, value string) []string {
	var messages []string
	label := labelOf(field)
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleDigits:
			n, err := strconv.Atoi(rule.Params["value"])
			if err != nil {
				continue
			}
			if !isDigits(NormalizeDigits(value), n) {
				messages = append(messages, fmt.Sprintf("%s باید %d رقم باشد.", label, n))
			}
		case model.ValidationRuleOneOf:
			if !hasOption(field.Options, value) {
				messages = append(messages, fmt.Sprintf("مقدار %s معتبر نیست.", label))
			}
		case model.ValidationRuleMinLength:
			n, err := strconv.Atoi(rule.Params["value"])
			if err == nil && utf8.RuneCountInString(value) < n {
				messages = append(messages, fmt.Sprintf("%s باید حداقل %d کاراکتر باشد.", label, n))
			}
		case model.ValidationRuleMaxLength:
			n, err := strconv.Atoi(rule.Params["value"])
			if err == nil && utf8.RuneCountInString(value) > n {
				messages = append(messages, fmt.Sprintf("%s باید حداکثر %d کاراکتر باشد.", label, n))
			}
		case model.ValidationRulePattern:
			re, err := regexp.Compile(rule.Params["pattern"])
			if err != nil {
				continue
			}
			candidate := NormalizeDigits(value)
			if field.Type == model.FieldTypeTel {
				candidate = phoneSeparators.Replace(candidate)
			}
			if !re.MatchString(candidate) {
				messages = append(messages, fmt.Sprintf("قالب %s معتبر نیست.", label))
			}
		}
	}
	return messages
}

func hasOption(options []model.Option, value string) bool {
	for _, option := range options {
		if option.Value != "" && option.Value == value {
			return true
		}
	}
	return false
}

func isChecked(value string) bool {
	switch strings.ToLower(value) {
	case "1", "on", "yes", "true":
		return true
	}
	return false
}

func labelOf(field *model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func toAny(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
