package formstate

// PersonTypeToggle shows exactly the field group matching the selector value
// and hides the others. An empty or unknown value hides every variant.
type PersonTypeToggle struct {
	form     *Form
	selector string
	variants map[string]string
}

// NewPersonTypeToggle binds selector to variants, a map from selector value
// to group id.
func NewPersonTypeToggle(form *Form, selector string, variants map[string]string) *PersonTypeToggle {
	copied := make(map[string]string, len(variants))
	for value, group := range variants {
		copied[value] = group
	}
	return &PersonTypeToggle{form: form, selector: selector, variants: copied}
}

// Apply re-derives group visibility from the selector's current value.
func (p *PersonTypeToggle) Apply() {
	p.form.handle(p.applyLocked)
}

// OnChange sets the selector to value and re-derives visibility.
func (p *PersonTypeToggle) OnChange(value string) {
	p.form.handle(func() []Event {
		if ctrl, ok := p.form.controls[p.selector]; ok {
			ctrl.Value = value
		}
		return p.applyLocked()
	})
}

// VisibleGroup returns the group shown for the current selector value.
func (p *PersonTypeToggle) VisibleGroup() string {
	return p.variants[p.form.Value(p.selector)]
}

func (p *PersonTypeToggle) applyLocked() []Event {
	value := ""
	if ctrl, ok := p.form.controls[p.selector]; ok {
		value = ctrl.Value
	}
	active := p.variants[value]
	for _, group := range p.variants {
		for _, name := range p.form.groups[group] {
			if ctrl, ok := p.form.controls[name]; ok {
				ctrl.Hidden = group != active
			}
		}
	}
	return []Event{
		{Type: EventGroupsToggled, Field: p.selector},
		{Type: EventUpdateCheckout, Field: p.selector},
	}
}

// RequiredToggle marks the visible fields of a section required while a
// checkbox is checked, and adds the indicator class to them. Hidden fields
// are never required. Controls outside the section are not touched.
type RequiredToggle struct {
	form     *Form
	checkbox string
	section  string
	class    string
	static   map[string]bool
}

// NewRequiredToggle binds checkbox to every control of section. Controls
// that were required before binding stay required.
func NewRequiredToggle(form *Form, checkbox, section, class string) *RequiredToggle {
	form.mu.Lock()
	static := make(map[string]bool)
	for _, name := range form.sections[section] {
		if ctrl, ok := form.controls[name]; ok && ctrl.Required {
			static[name] = true
		}
	}
	form.mu.Unlock()
	return &RequiredToggle{form: form, checkbox: checkbox, section: section, class: class, static: static}
}

// Apply re-derives required flags from the checkbox state.
func (r *RequiredToggle) Apply() {
	r.form.handle(r.applyLocked)
}

// OnChange sets the checkbox and re-derives required flags.
func (r *RequiredToggle) OnChange(checked bool) {
	r.form.handle(func() []Event {
		if ctrl, ok := r.form.controls[r.checkbox]; ok {
			ctrl.Checked = checked
		}
		return r.applyLocked()
	})
}

func (r *RequiredToggle) applyLocked() []Event {
	checked := false
	if ctrl, ok := r.form.controls[r.checkbox]; ok {
		checked = ctrl.Checked
	}
	for _, name := range r.form.sections[r.section] {
		if name == r.checkbox {
			continue
		}
		ctrl, ok := r.form.controls[name]
		if !ok {
			continue
		}
		ctrl.Required = r.static[name] || (checked && !ctrl.Hidden)
		if r.class == "" {
			continue
		}
		if ctrl.Required {
			ctrl.Classes[r.class] = true
		} else {
			delete(ctrl.Classes, r.class)
		}
	}
	return []Event{{Type: EventUpdateCheckout, Field: r.checkbox}}
}
