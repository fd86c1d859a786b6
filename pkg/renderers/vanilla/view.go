package vanilla

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/model"
	"github.com/goliatone/go-checkoutform/pkg/render"
	"github.com/goliatone/go-checkoutform/pkg/visibility"
)

type formView struct {
	ID          string        `json:"id"`
	Action      string        `json:"action"`
	Method      string        `json:"method"`
	Classes     string        `json:"classes"`
	Sections    []sectionView `json:"sections"`
	Hidden      []hiddenView  `json:"hidden"`
	Errors      []string      `json:"errors"`
	Data        string        `json:"data"`
	SubmitLabel string        `json:"submit_label"`
}

type sectionView struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	HeaderClass string      `json:"header_class"`
	Hint        string      `json:"hint"`
	Classes     string      `json:"classes"`
	Fields      []fieldView `json:"fields"`
	Groups      []groupView `json:"groups"`
}

type groupView struct {
	ID      string      `json:"id"`
	Classes string      `json:"classes"`
	Hidden  bool        `json:"hidden"`
	Fields  []fieldView `json:"fields"`
}

type fieldView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder"`
	Description string       `json:"description"`
	Value       string       `json:"value"`
	Checked     bool         `json:"checked"`
	Required    bool         `json:"required"`
	Hidden      bool         `json:"hidden"`
	DependsOn   string       `json:"depends_on"`
	Classes     string       `json:"classes"`
	Options     []optionView `json:"options"`
	Errors      []string     `json:"errors"`
}

type optionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type hiddenView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// clientData is the snapshot the browser controller reads from the
// checkout-data script tag.
type clientData struct {
	Cities      geo.Mapping `json:"cities"`
	Placeholder string      `json:"placeholder"`
}

type viewBuilder struct {
	eval    visibility.Evaluator
	options render.RenderOptions
	ctx     visibility.Context
}

func newViewBuilder(eval visibility.Evaluator, options render.RenderOptions) *viewBuilder {
	values := make(map[string]any, len(options.Values))
	for key, value := range options.Values {
		values[key] = value
	}
	return &viewBuilder{
		eval:    eval,
		options: options,
		ctx:     visibility.Context{Values: values},
	}
}

func (b *viewBuilder) form(form model.FormModel) (formView, error) {
	method := form.Method
	if b.options.Method != "" {
		method = b.options.Method
	}
	if method == "" {
		method = "POST"
	}

	data, err := json.Marshal(clientData{
		Cities:      b.options.Snapshot.Cities,
		Placeholder: checkout.CityPlaceholder,
	})
	if err != nil {
		return formView{}, fmt.Errorf("encode client data: %w", err)
	}

	view := formView{
		ID:          form.ID,
		Action:      form.Endpoint,
		Method:      method,
		Classes:     checkout.FormClass,
		Errors:      b.options.FormErrors,
		Data:        string(data),
		SubmitLabel: "ثبت سفارش",
	}
	for _, hidden := range render.SortedHiddenFields(b.options.HiddenFields) {
		view.Hidden = append(view.Hidden, hiddenView{Name: hidden.Name, Value: hidden.Value})
	}

	for _, section := range form.Sections {
		sv := sectionView{
			ID:          section.ID,
			Title:       section.Title,
			HeaderClass: headerClass(section.ID),
			Hint:        section.Hint,
			Classes:     joinClasses(section.Classes),
		}
		for _, field := range section.Fields {
			fv, err := b.field(field, true)
			if err != nil {
				return formView{}, err
			}
			sv.Fields = append(sv.Fields, fv)
		}
		for _, group := range section.Groups {
			visible, err := b.holds(group.ID, group.Metadata[model.MetadataVisibilityRule], true)
			if err != nil {
				return formView{}, err
			}
			gv := groupView{ID: group.ID, Classes: joinClasses(group.Classes), Hidden: !visible}
			for _, field := range group.Fields {
				fv, err := b.field(field, visible)
				if err != nil {
					return formView{}, err
				}
				gv.Fields = append(gv.Fields, fv)
			}
			sv.Groups = append(sv.Groups, gv)
		}
		view.Sections = append(view.Sections, sv)
	}
	return view, nil
}

func (b *viewBuilder) field(field model.Field, groupVisible bool) (fieldView, error) {
	visible := groupVisible
	if visible {
		ok, err := b.holds(field.Name, field.Meta(model.MetadataVisibilityRule), true)
		if err != nil {
			return fieldView{}, err
		}
		visible = ok
	}

	required := field.Required
	conditional := false
	if !required && visible {
		if rule := field.Meta(model.MetadataRequiredRule); rule != "" {
			ok, err := b.holds(field.Name, rule, false)
			if err != nil {
				return fieldView{}, err
			}
			required, conditional = ok, ok
		}
	}

	value := field.Default
	if submitted, ok := b.options.Values[field.Name]; ok {
		value = submitted
	}

	errs := b.options.Errors[field.Name]
	classes := []string{"form-row"}
	classes = append(classes, field.Classes...)
	if required {
		classes = append(classes, string(ClassRequiredRow))
	}
	if conditional {
		classes = append(classes, checkout.ClassRequired)
	}
	if len(errs) > 0 {
		classes = append(classes, string(ClassInvalidRow))
	}

	fv := fieldView{
		ID:          controlID(field.Name),
		Name:        field.Name,
		Type:        string(field.Type),
		Label:       checkout.FilterLabel(field.Label, required),
		Placeholder: field.Placeholder,
		Description: field.Description,
		Required:    required,
		Hidden:      !visible,
		DependsOn:   field.Meta(model.MetadataDependsOn),
		Classes:     joinClasses(classes),
		Errors:      errs,
	}
	if field.Type == model.FieldTypeCheckbox {
		fv.Checked = isChecked(value)
	} else {
		fv.Value = value
	}
	fv.Options = b.cityAwareOptions(field, value)
	return fv, nil
}

// cityAwareOptions lists select options with the current value selected. A
// select that depends on another is rebuilt from the snapshot when the parent
// has a submitted value, so a re-rendered submission keeps its city list.
func (b *viewBuilder) cityAwareOptions(field model.Field, value string) []optionView {
	if field.Type != model.FieldTypeSelect {
		return nil
	}
	options := field.Options
	if parent := field.Meta(model.MetadataDependsOn); parent != "" {
		if selected, ok := b.options.Values[parent]; ok {
			options = checkout.CityOptions(b.options.Snapshot.Cities, selected)
		}
	}
	out := make([]optionView, 0, len(options))
	for _, option := range options {
		out = append(out, optionView{
			Value:    option.Value,
			Label:    option.Label,
			Selected: option.Value == value,
		})
	}
	return out
}

func (b *viewBuilder) holds(path, rule string, fallback bool) (bool, error) {
	if rule == "" || b.eval == nil {
		return fallback, nil
	}
	ok, err := b.eval.Eval(path, rule, b.ctx)
	if err != nil {
		return false, fmt.Errorf("evaluate rule for %q: %w", path, err)
	}
	return ok, nil
}

func isChecked(value string) bool {
	switch value {
	case "1", "on", "yes", "true":
		return true
	}
	return false
}
