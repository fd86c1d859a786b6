package checkout

import (
	"fmt"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/model"
)

// Build assembles the checkout form for snapshot. The state select lists the
// authoritative provinces in their given order; the city select holds only
// the placeholder unless a state is preselected, in which case that
// province's cities follow the placeholder.
func Build(snapshot geo.Snapshot, fns ...OptionFn) (model.FormModel, error) {
	opts := NewOptions(fns...)

	form := model.FormModel{
		ID:       opts.ID,
		Endpoint: opts.Endpoint,
		Method:   opts.Method,
		Sections: []model.Section{
			invoiceSection(),
			personSection(),
			addressSection(snapshot, opts.State),
		},
		Metadata: map[string]string{
			"country": snapshot.Country,
		},
	}
	if opts.OrderNotes != nil {
		form.Sections = append(form.Sections, orderNotesSection(*opts.OrderNotes))
	}

	for _, decorator := range opts.Decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(&form); err != nil {
			return model.FormModel{}, fmt.Errorf("checkout: decorate form: %w", err)
		}
	}
	return form, nil
}

// StateOptions lists the placeholder followed by every province.
func StateOptions(regions []geo.Region) []model.Option {
	out := make([]model.Option, 0, len(regions)+1)
	out = append(out, model.Option{Value: "", Label: SelectPlaceholder})
	for _, region := range regions {
		out = append(out, model.Option{Value: region.Code, Label: region.Name})
	}
	return out
}

// CityOptions lists the placeholder followed by the cities mapped to state.
// Unmapped states yield only the placeholder.
func CityOptions(mapping geo.Mapping, state string) []model.Option {
	cities := mapping[state]
	out := make([]model.Option, 0, len(cities)+1)
	out = append(out, model.Option{Value: "", Label: CityPlaceholder})
	for _, city := range cities {
		out = append(out, model.Option{Value: city, Label: city})
	}
	return out
}

func invoiceSection() model.Section {
	return model.Section{
		ID:      SectionInvoice,
		Hint:    invoiceHint,
		Classes: []string{BoxClass, SectionInvoice},
		Fields: []model.Field{
			{
				Name:    FieldInvoiceRequest,
				Type:    model.FieldTypeCheckbox,
				Label:   "درخواست صدور فاکتور رسمی",
				Classes: []string{"form-row-wide", ClassInvoiceField},
			},
		},
	}
}

func personSection() model.Section {
	personType := personField(FieldPersonType, "نوع شخص", "form-row-wide", "")
	personType.Type = model.FieldTypeSelect
	personType.Options = PersonTypes()
	personType.Validations = []model.ValidationRule{{Kind: model.ValidationRuleOneOf}}

	nationalCode := personField(FieldNationalCode, "کد ملی", "form-row-wide", ClassRealPersonField)
	nationalCode.Placeholder = "۱۰ رقم بدون خط تیره"
	nationalCode.Validations = []model.ValidationRule{digitsRule(10)}

	return model.Section{
		ID:      SectionPerson,
		Title:   titlePerson,
		Classes: []string{BoxClass, SectionPerson},
		Fields:  []model.Field{personType},
		Groups: []model.Group{
			{
				ID:       GroupRealPerson,
				Classes:  []string{GroupRealPerson},
				Metadata: map[string]string{model.MetadataVisibilityRule: RuleRealPerson},
				Fields: []model.Field{
					personField(FieldFirstName, "نام", "form-row-first", ClassRealPersonField),
					personField(FieldLastName, "نام خانوادگی", "form-row-last", ClassRealPersonField),
					nationalCode,
				},
			},
			{
				ID:       GroupLegalPerson,
				Classes:  []string{GroupLegalPerson},
				Metadata: map[string]string{model.MetadataVisibilityRule: RuleLegalPerson},
				Fields: []model.Field{
					personField(FieldCompanyName, "نام شرکت", "form-row-first", ClassLegalPersonField),
					personField(FieldEconomicCode, "شناسه ملی/اقتصادی", "form-row-last", ClassLegalPersonField),
					personField(FieldAgentFirstName, "نام نماینده", "form-row-first", ClassLegalPersonField),
					personField(FieldAgentLastName, "نام خانوادگی نماینده", "form-row-last", ClassLegalPersonField),
				},
			},
		},
	}
}

// personField builds a field of the person box. Every such field becomes
// required once an invoice is requested, and fields of a variant group are
// only shown for that person type.
func personField(name, label, row, variant string) model.Field {
	field := model.Field{
		Name:    name,
		Type:    model.FieldTypeText,
		Label:   label,
		Classes: []string{row, ClassPersonField},
		Metadata: map[string]string{
			model.MetadataRequiredRule: RuleInvoiceRequested,
		},
	}
	switch variant {
	case ClassRealPersonField:
		field.Classes = append(field.Classes, variant)
		field.Metadata[model.MetadataGroup] = GroupRealPerson
		field.Metadata[model.MetadataVisibilityRule] = RuleRealPerson
	case ClassLegalPersonField:
		field.Classes = append(field.Classes, variant)
		field.Metadata[model.MetadataGroup] = GroupLegalPerson
		field.Metadata[model.MetadataVisibilityRule] = RuleLegalPerson
	}
	if isPersisted(name) {
		field.Metadata[model.MetadataPersist] = "true"
	}
	return field
}

func addressSection(snapshot geo.Snapshot, state string) model.Section {
	stateField := addressField(FieldState, "استان", "form-row-first", model.FieldTypeSelect)
	stateField.Options = StateOptions(snapshot.Regions)
	stateField.Validations = []model.ValidationRule{{Kind: model.ValidationRuleOneOf}}
	if state != "" {
		stateField.Default = state
	}

	cityField := addressField(FieldCity, "شهر", "form-row-last", model.FieldTypeSelect)
	cityField.Options = CityOptions(snapshot.Cities, state)
	cityField.Metadata[model.MetadataDependsOn] = FieldState

	address := addressField(FieldAddress, "آدرس دقیق", "form-row-wide", model.FieldTypeText)
	address.Placeholder = "خیابان، کوچه، پلاک، واحد"

	postcode := addressField(FieldPostcode, "کد پستی", "form-row-first", model.FieldTypeTel)
	postcode.Validations = []model.ValidationRule{digitsRule(10)}

	phone := addressField(FieldPhone, "شماره تماس", "form-row-last", model.FieldTypeTel)
	phone.Validations = []model.ValidationRule{
		{Kind: model.ValidationRuleMinLength, Params: map[string]string{"value": "8"}},
		{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": phonePattern}},
	}

	return model.Section{
		ID:      SectionAddress,
		Title:   titleAddress,
		Classes: []string{BoxClass, SectionAddress},
		Fields:  []model.Field{stateField, cityField, address, postcode, phone},
	}
}

func addressField(name, label, row string, kind model.FieldType) model.Field {
	return model.Field{
		Name:     name,
		Type:     kind,
		Label:    label,
		Required: true,
		Classes:  []string{row, ClassAddressField},
		Metadata: map[string]string{},
	}
}

func orderNotesSection(field model.Field) model.Section {
	if field.Name == "" {
		field.Name = FieldOrderComments
	}
	if field.Type == "" {
		field.Type = model.FieldTypeTextarea
	}
	field.Label = FilterLabel(field.Label, field.Required)
	return model.Section{
		ID:      SectionOrderNotes,
		Title:   titleOrderNotes,
		Classes: []string{BoxClass, SectionOrderNotes},
		Fields:  []model.Field{field},
	}
}

func digitsRule(n int) model.ValidationRule {
	return model.ValidationRule{
		Kind:   model.ValidationRuleDigits,
		Params: map[string]string{"value": fmt.Sprint(n)},
	}
}

func isPersisted(name string) bool {
	for _, candidate := range PersistedFields {
		if candidate == name {
			return true
		}
	}
	return false
}
