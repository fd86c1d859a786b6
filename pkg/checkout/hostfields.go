package checkout

import "github.com/goliatone/go-checkoutform/pkg/model"

// HostFields is the host platform's checkout field table: section name to
// fields in display order.
type HostFields map[string][]model.Field

// Clone returns a deep enough copy for MoveOrderNotes to edit.
func (h HostFields) Clone() HostFields {
	if h == nil {
		return nil
	}
	out := make(HostFields, len(h))
	for section, fields := range h {
		out[section] = append([]model.Field{}, fields...)
	}
	return out
}

// MoveOrderNotes takes the order notes field out of the host's order section
// so it can be rendered in its own box. It returns the remaining fields and
// the extracted field, or nil when the order section has no notes field. The
// input is not modified.
func MoveOrderNotes(fields HostFields) (HostFields, *model.Field) {
	out := fields.Clone()
	order, ok := out[HostOrderSection]
	if !ok {
		return out, nil
	}
	for i, field := range order {
		if field.Name != FieldOrderComments {
			continue
		}
		moved := field
		out[HostOrderSection] = append(order[:i:i], order[i+1:]...)
		return out, &moved
	}
	return out, nil
}
