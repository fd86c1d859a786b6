package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/model"
	"github.com/goliatone/go-checkoutform/pkg/render"
	"github.com/goliatone/go-checkoutform/pkg/usermeta"
)

// Submission is one posted checkout form.
type Submission struct {
	UserID     uuid.UUID
	Values     map[string]string
	HostFields checkout.HostFields
	// HostErrors carries validation feedback produced by the host before the
	// order is placed. Keys may be field names or paths such as
	// "/billing/billing_phone"; unknown keys become form-level messages.
	HostErrors map[string][]string
}

// Result reports the outcome of Submit. Values holds the accepted values of
// visible fields only and is nil when validation failed.
type Result struct {
	Form     model.FormModel
	Snapshot geo.Snapshot
	Values   map[string]string
	Errors   render.ErrorMapping
}

// Valid reports whether the submission passed validation.
func (r Result) Valid() bool {
	return !r.Errors.HasErrors()
}

// Submit validates a submission against the form built for its values. On
// success the profile fields are saved for signed-in users; a failed save is
// returned as an error alongside the otherwise valid result.
func (o *Orchestrator) Submit(ctx context.Context, sub Submission) (Result, error) {
	if err := o.ready(ctx); err != nil {
		return Result{}, err
	}

	form, snapshot, err := o.build(ctx, sub.Values, sub.HostFields)
	if err != nil {
		return Result{}, err
	}

	validator := checkout.NewValidator(o.evaluator)
	result := Result{
		Form:     form,
		Snapshot: snapshot,
		Errors:   mergeErrors(validator.Validate(form, sub.Values, snapshot.Cities), render.MapErrorPayload(form, sub.HostErrors)),
	}
	if !result.Valid() {
		o.logger.WithField("fields", len(result.Errors.Fields)).Debug("orchestrator: submission rejected")
		return result, nil
	}

	result.Values = acceptedValues(form, sub.Values, validator)
	if err := usermeta.Save(ctx, o.store, sub.UserID, checkout.PersistedFields, result.Values); err != nil {
		return result, fmt.Errorf("orchestrator: persist user meta: %w", err)
	}
	return result, nil
}

func mergeErrors(base, extra render.ErrorMapping) render.ErrorMapping {
	if len(extra.Fields) > 0 && base.Fields == nil {
		base.Fields = make(map[string][]string, len(extra.Fields))
	}
	for name, messages := range extra.Fields {
		base.Fields[name] = render.MergeFormErrors(base.Fields[name], messages...)
	}
	base.Form = render.MergeFormErrors(base.Form, extra.Form...)
	return base
}
