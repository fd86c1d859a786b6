// Package model defines the typed checkout form consumed by renderers and the
// client-side controllers. A FormModel is laid out as boxes (Sections), each
// holding loose fields and optional wrappers (Groups) whose visibility is
// driven by another control. Conditional behaviour travels as metadata:
// `visibilityRule` and `requiredRule` hold expressions understood by
// pkg/visibility evaluators, and `group` names the wrapper a field lives in.
// Validation rules use canonical identifiers (minLength/maxLength, pattern,
// digits, oneOf) with string parameters so snapshots stay deterministic.
package model
