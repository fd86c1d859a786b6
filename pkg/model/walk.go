package model

// Position locates a field inside a form.
type Position struct {
	Section string
	Group   string
}

// WalkFunc receives a pointer into the form so visitors can update fields in
// place. Returning false stops the walk.
type WalkFunc func(pos Position, field *Field) bool

// Walk visits every field in display order: each section's loose fields
// first, then its groups in order.
func (f *FormModel) Walk(fn WalkFunc) {
	if f == nil || fn == nil {
		return
	}
	for si := range f.Sections {
		section := &f.Sections[si]
		for fi := range section.Fields {
			if !fn(Position{Section: section.ID}, &section.Fields[fi]) {
				return
			}
		}
		for gi := range section.Groups {
			group := &section.Groups[gi]
			for fi := range group.Fields {
				if !fn(Position{Section: section.ID, Group: group.ID}, &group.Fields[fi]) {
					return
				}
			}
		}
	}
}

// Fields returns copies of every field in display order.
func (f FormModel) Fields() []Field {
	var out []Field
	f.Walk(func(_ Position, field *Field) bool {
		out = append(out, *field)
		return true
	})
	return out
}

// Field returns a pointer to the named field.
func (f *FormModel) Field(name string) (*Field, bool) {
	var found *Field
	f.Walk(func(_ Position, field *Field) bool {
		if field.Name == name {
			found = field
			return false
		}
		return true
	})
	return found, found != nil
}

// Section returns a pointer to the section with id.
func (f *FormModel) Section(id string) (*Section, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Sections {
		if f.Sections[i].ID == id {
			return &f.Sections[i], true
		}
	}
	return nil, false
}

// GroupFields returns the names of fields placed in groupID, in order.
func (f FormModel) GroupFields(groupID string) []string {
	var names []string
	f.Walk(func(pos Position, field *Field) bool {
		if pos.Group == groupID {
			names = append(names, field.Name)
		}
		return true
	})
	return names
}

// SectionFields returns the names of every field placed in sectionID,
// including grouped fields.
func (f FormModel) SectionFields(sectionID string) []string {
	var names []string
	f.Walk(func(pos Position, field *Field) bool {
		if pos.Section == sectionID {
			names = append(names, field.Name)
		}
		return true
	})
	return names
}

// HasClass reports whether the field carries class.
func (field Field) HasClass(class string) bool {
	for _, candidate := range field.Classes {
		if candidate == class {
			return true
		}
	}
	return false
}

// Meta returns a metadata value or the empty string.
func (field Field) Meta(key string) string {
	if field.Metadata == nil {
		return ""
	}
	return field.Metadata[key]
}
