package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-checkoutform/pkg/model"
	"github.com/goliatone/go-checkoutform/pkg/render"
)

func TestMapErrorPayload_PathVariants(t *testing.T) {
	form := model.FormModel{
		Sections: []model.Section{
			{
				ID:     "address",
				Fields: []model.Field{{Name: "billing_state"}, {Name: "billing_city"}, {Name: "billing_phone"}},
			},
			{
				ID:     "person",
				Groups: []model.Group{{ID: "real", Fields: []model.Field{{Name: "billing_national_code"}}}},
			},
		},
	}

	payload := map[string][]string{
		"/body/billing_state":                {"State is required"},
		"billing.billing_city":               {"City invalid"},
		"$.data.billing_phone[0]":            {"Phone malformed", " Phone malformed "},
		"request/body/billing_national_code": {"Ten digits"},
		"non_field_errors":                   {"Form level error"},
		"request/body/unknown-field":         {"Should fall back to form errors"},
		"":                                   {"Unscoped form error"},
		"billing_postcode":                   {"   "},
	}

	mapped := render.MapErrorPayload(form, payload)

	wantFields := map[string][]string{
		"billing_state":         {"State is required"},
		"billing_city":          {"City invalid"},
		"billing_phone":         {"Phone malformed"},
		"billing_national_code": {"Ten digits"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Form level error", "Should fall back to form errors", "Unscoped form error"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if !mapped.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
	if (render.ErrorMapping{}).HasErrors() {
		t.Fatalf("expected empty mapping to report no errors")
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}
