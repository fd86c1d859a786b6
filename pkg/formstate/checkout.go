package formstate

import (
	"github.com/jonboulle/clockwork"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/model"
)

// Checkout wires the three controllers onto the checkout form's controls.
type Checkout struct {
	Form     *Form
	Cities   *CascadingSelect
	Person   *PersonTypeToggle
	Required *RequiredToggle
}

// NewCheckout builds the control state for form prefilled with values and
// binds the controllers. Call Init before handling changes.
func NewCheckout(form model.FormModel, mapping geo.Mapping, values map[string]string, fns ...CascadeOption) *Checkout {
	state := FromModel(form, values)
	return &Checkout{
		Form:   state,
		Cities: NewCascadingSelect(state, checkout.FieldState, checkout.FieldCity, mapping, fns...),
		Person: NewPersonTypeToggle(state, checkout.FieldPersonType, map[string]string{
			checkout.PersonTypeReal:  checkout.GroupRealPerson,
			checkout.PersonTypeLegal: checkout.GroupLegalPerson,
		}),
		Required: NewRequiredToggle(state, checkout.FieldInvoiceRequest, checkout.SectionPerson, checkout.ClassRequired),
	}
}

// Init runs the load-time pass: group visibility, required flags, and the
// city options for an already selected province.
func (c *Checkout) Init() {
	c.Form.handle(c.conditionsLocked)
	c.Cities.Init()
}

// Change applies a user edit of field and runs the handler bound to it.
// Checkbox values follow the submitted form convention ("1" when checked).
func (c *Checkout) Change(field, value string) {
	switch field {
	case checkout.FieldState:
		c.Cities.OnRegionChanged(value)
	case checkout.FieldPersonType:
		c.Form.handle(func() []Event {
			if ctrl, ok := c.Form.controls[field]; ok {
				ctrl.Value = value
			}
			return c.conditionsLocked()
		})
	case checkout.FieldInvoiceRequest:
		c.Required.OnChange(isChecked(value))
	default:
		c.Form.handle(func() []Event {
			ctrl, ok := c.Form.controls[field]
			if !ok {
				return nil
			}
			if ctrl.Type == model.FieldTypeCheckbox {
				ctrl.Checked = isChecked(value)
			} else {
				ctrl.Value = value
			}
			return nil
		})
	}
}

// ExternalRefresh reacts to the host re-rendering the checkout.
func (c *Checkout) ExternalRefresh() clockwork.Timer {
	return c.Cities.OnExternalRefresh()
}

// Values returns the values a submission would carry.
func (c *Checkout) Values() map[string]string {
	return c.Form.Values()
}

// conditionsLocked toggles visibility before required-ness so a freshly
// hidden group is released in the same pass. The pass raises a single
// update_checkout, after the required flags settle.
func (c *Checkout) conditionsLocked() []Event {
	events := c.Person.applyLocked()
	return singleUpdate(append(events, c.Required.applyLocked()...))
}

// singleUpdate keeps only the last update_checkout event of events.
func singleUpdate(events []Event) []Event {
	last := -1
	for i, event := range events {
		if event.Type == EventUpdateCheckout {
			last = i
		}
	}
	out := events[:0]
	for i, event := range events {
		if event.Type == EventUpdateCheckout && i != last {
			continue
		}
		out = append(out, event)
	}
	return out
}
