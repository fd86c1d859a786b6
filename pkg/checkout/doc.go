// Package checkout owns the Iranian billing field catalogue: field keys,
// Persian labels, the boxed layout, label filters applied to host fields, and
// server-side validation of a submission against the reconciled geo data.
package checkout
