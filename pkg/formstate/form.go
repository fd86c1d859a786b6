package formstate

import (
	"sort"
	"sync"

	"github.com/goliatone/go-checkoutform/pkg/model"
)

// EventType names a notification raised by the controllers.
type EventType string

const (
	// EventUpdateCheckout asks the surrounding checkout to recompute its
	// validation state and totals.
	EventUpdateCheckout EventType = "update_checkout"
	// EventCitiesPopulated follows every rebuild of the city options.
	EventCitiesPopulated EventType = "cities_populated"
	// EventGroupsToggled follows every person-type visibility pass.
	EventGroupsToggled EventType = "groups_toggled"
)

// Event is delivered to subscribers after the raising handler returns.
type Event struct {
	Type  EventType
	Field string
}

// Listener receives events.
type Listener func(Event)

// Control is the state of one input.
type Control struct {
	Name     string
	Type     model.FieldType
	Label    string
	Value    string
	Checked  bool
	Required bool
	Hidden   bool
	Options  []model.Option
	Classes  map[string]bool
	Section  string
	Group    string
}

func (c *Control) clone() Control {
	out := *c
	out.Options = append([]model.Option(nil), c.Options...)
	out.Classes = make(map[string]bool, len(c.Classes))
	for class, on := range c.Classes {
		out.Classes[class] = on
	}
	return out
}

// Form holds every control of the checkout and serializes handlers.
type Form struct {
	mu        sync.Mutex
	controls  map[string]*Control
	order     []string
	groups    map[string][]string
	sections  map[string][]string
	listeners map[int]Listener
	nextID    int
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{
		controls:  make(map[string]*Control),
		groups:    make(map[string][]string),
		sections:  make(map[string][]string),
		listeners: make(map[int]Listener),
	}
}

// FromModel creates one control per field of form, seeding values from
// values and falling back to each field's default. Static required flags are
// copied; conditional ones are left to the toggles.
func FromModel(form model.FormModel, values map[string]string) *Form {
	f := NewForm()
	form.Walk(func(pos model.Position, field *model.Field) bool {
		value, ok := values[field.Name]
		if !ok {
			value = field.Default
		}
		ctrl := &Control{
			Name:     field.Name,
			Type:     field.Type,
			Label:    field.Label,
			Required: field.Required,
			Options:  append([]model.Option(nil), field.Options...),
			Classes:  make(map[string]bool, len(field.Classes)),
			Section:  pos.Section,
			Group:    pos.Group,
		}
		for _, class := range field.Classes {
			ctrl.Classes[class] = true
		}
		if field.Type == model.FieldTypeCheckbox {
			ctrl.Checked = isChecked(value)
		} else {
			ctrl.Value = value
		}
		f.add(ctrl)
		return true
	})
	return f
}

// Add registers a control. A control with the same name is replaced.
func (f *Form) Add(ctrl Control) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := ctrl.clone()
	f.add(&copied)
}

func (f *Form) add(ctrl *Control) {
	if ctrl.Classes == nil {
		ctrl.Classes = map[string]bool{}
	}
	if _, exists := f.controls[ctrl.Name]; !exists {
		f.order = append(f.order, ctrl.Name)
		if ctrl.Section != "" {
			f.sections[ctrl.Section] = append(f.sections[ctrl.Section], ctrl.Name)
		}
		if ctrl.Group != "" {
			f.groups[ctrl.Group] = append(f.groups[ctrl.Group], ctrl.Name)
		}
	}
	f.controls[ctrl.Name] = ctrl
}

// Subscribe registers l and returns a function that removes it.
func (f *Form) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = l
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// handle runs fn under the lock and delivers the events it returns once the
// lock is released.
func (f *Form) handle(fn func() []Event) {
	f.mu.Lock()
	events := fn()
	ids := make([]int, 0, len(f.listeners))
	for id := range f.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, f.listeners[id])
	}
	f.mu.Unlock()

	for _, event := range events {
		for _, l := range listeners {
			l(event)
		}
	}
}

// Control returns a copy of the named control.
func (f *Form) Control(name string) (Control, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ctrl, ok := f.controls[name]
	if !ok {
		return Control{}, false
	}
	return ctrl.clone(), true
}

// Names returns control names in registration order.
func (f *Form) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// Value returns the current value of a non-checkbox control.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		return ctrl.Value
	}
	return ""
}

// SetValue assigns a value without running any handler, the way a script or
// the browser's autofill would.
func (f *Form) SetValue(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		ctrl.Value = value
	}
}

// Checked reports a checkbox state.
func (f *Form) Checked(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		return ctrl.Checked
	}
	return false
}

// SetChecked assigns a checkbox state without running any handler.
func (f *Form) SetChecked(name string, checked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		ctrl.Checked = checked
	}
}

// Options returns a copy of a select's options.
func (f *Form) Options(name string) []model.Option {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		return append([]model.Option(nil), ctrl.Options...)
	}
	return nil
}

// SetOptions replaces a select's options without running any handler. The
// host checkout does this when it re-renders fields after a refresh.
func (f *Form) SetOptions(name string, options []model.Option) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		ctrl.Options = append([]model.Option(nil), options...)
	}
}

// Required reports whether the control is currently required.
func (f *Form) Required(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		return ctrl.Required
	}
	return false
}

// HasClass reports whether the control carries class.
func (f *Form) HasClass(name, class string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		return ctrl.Classes[class]
	}
	return false
}

// Hidden reports whether the control is hidden.
func (f *Form) Hidden(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ctrl, ok := f.controls[name]; ok {
		return ctrl.Hidden
	}
	return false
}

// GroupFields returns the names of controls in group.
func (f *Form) GroupFields(group string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.groups[group]...)
}

// SectionFields returns the names of controls in section.
func (f *Form) SectionFields(section string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sections[section]...)
}

// Values returns every control's submitted value. Checked checkboxes submit
// "1" and unchecked ones are omitted; hidden controls are omitted too.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.controls))
	for name, ctrl := range f.controls {
		if ctrl.Hidden {
			continue
		}
		if ctrl.Type == model.FieldTypeCheckbox {
			if ctrl.Checked {
				out[name] = "1"
			}
			continue
		}
		out[name] = ctrl.Value
	}
	return out
}

func isChecked(value string) bool {
	switch value {
	case "1", "on", "yes", "true":
		return true
	}
	return false
}
