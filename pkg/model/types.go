package model

// FieldType is the HTML-facing control kind of a field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTel      FieldType = "tel"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
)

const (
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
	// ValidationRuleDigits requires exactly Params["value"] decimal digits.
	// Persian and Arabic-Indic digits count as digits.
	ValidationRuleDigits = "digits"
	// ValidationRuleOneOf restricts the value to the field's option values.
	ValidationRuleOneOf = "oneOf"
)

const (
	MetadataVisibilityRule = "visibilityRule"
	MetadataRequiredRule   = "requiredRule"
	MetadataGroup          = "group"
	MetadataPersist        = "persist"
	MetadataDependsOn      = "dependsOn"
)

// ValidationRule represents a single validation constraint applied to a field.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Option is one entry of a select control. An empty Value is the placeholder.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field models an individual input. Required reports the static requirement;
// conditional requirements live in Metadata[MetadataRequiredRule].
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     string            `json:"default,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Classes     []string          `json:"classes,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Group is a wrapper inside a section whose fields are shown and hidden
// together.
type Group struct {
	ID       string            `json:"id"`
	Classes  []string          `json:"classes,omitempty"`
	Fields   []Field           `json:"fields"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Section is a visual box of the checkout form.
type Section struct {
	ID       string            `json:"id"`
	Title    string            `json:"title,omitempty"`
	Hint     string            `json:"hint,omitempty"`
	Classes  []string          `json:"classes,omitempty"`
	Fields   []Field           `json:"fields"`
	Groups   []Group           `json:"groups,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	ID          string            `json:"id"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Sections    []Section         `json:"sections"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}
