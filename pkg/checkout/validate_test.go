package checkout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-checkoutform/components/geo"
	exprvis "github.com/goliatone/go-checkoutform/pkg/visibility/expr"
)

func validAddress() map[string]string {
	return map[string]string{
		FieldState:    "TEH",
		FieldCity:     "Shemiranat",
		FieldAddress:  "خیابان ولیعصر، پلاک ۱۲",
		FieldPostcode: "۱۲۳۴۵۶۷۸۹۰",
		FieldPhone:    "0912 123 4567",
	}
}

func mergeValues(base map[string]string, extra map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func validate(t *testing.T, values map[string]string) map[string][]string {
	t.Helper()
	snapshot := testSnapshot()
	form, err := Build(snapshot)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	result := NewValidator(exprvis.New()).Validate(form, values, snapshot.Cities)
	if len(result.Form) != 0 {
		t.Fatalf("unexpected form errors: %v", result.Form)
	}
	return result.Fields
}

func errorKeys(errs map[string][]string) []string {
	keys := []string{}
	for _, name := range []string{
		FieldInvoiceRequest, FieldPersonType, FieldFirstName, FieldLastName, FieldNationalCode,
		FieldCompanyName, FieldEconomicCode, FieldAgentFirstName, FieldAgentLastName,
		FieldState, FieldCity, FieldAddress, FieldPostcode, FieldPhone,
	} {
		if _, ok := errs[name]; ok {
			keys = append(keys, name)
		}
	}
	return keys
}

func TestValidate_AddressOnlyWithoutInvoice(t *testing.T) {
	if errs := validate(t, validAddress()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_MissingAddressFields(t *testing.T) {
	errs := validate(t, map[string]string{})
	want := []string{FieldState, FieldCity, FieldAddress, FieldPostcode, FieldPhone}
	if diff := cmp.Diff(want, errorKeys(errs)); diff != "" {
		t.Fatalf("error keys mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_InvoiceRequiresVisiblePersonGroupOnly(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
		want   []string
	}{
		{
			name:   "no person type",
			values: map[string]string{FieldInvoiceRequest: "1"},
			want:   []string{FieldPersonType},
		},
		{
			name:   "real person",
			values: map[string]string{FieldInvoiceRequest: "1", FieldPersonType: PersonTypeReal},
			want:   []string{FieldFirstName, FieldLastName, FieldNationalCode},
		},
		{
			name:   "legal person",
			values: map[string]string{FieldInvoiceRequest: "on", FieldPersonType: PersonTypeLegal},
			want:   []string{FieldCompanyName, FieldEconomicCode, FieldAgentFirstName, FieldAgentLastName},
		},
		{
			name:   "invoice unchecked",
			values: map[string]string{FieldInvoiceRequest: "", FieldPersonType: PersonTypeLegal},
			want:   []string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := validate(t, mergeValues(validAddress(), tc.values))
			if diff := cmp.Diff(tc.want, errorKeys(errs)); diff != "" {
				t.Fatalf("error keys mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_NationalCodeAndPostcodeDigits(t *testing.T) {
	values := mergeValues(validAddress(), map[string]string{
		FieldInvoiceRequest: "1",
		FieldPersonType:     PersonTypeReal,
		FieldFirstName:      "علی",
		FieldLastName:       "رضایی",
		FieldNationalCode:   "۰۰۱۲۳۴۵۶۷",
		FieldPostcode:       "12345-67890",
	})
	errs := validate(t, values)
	if diff := cmp.Diff([]string{FieldNationalCode, FieldPostcode}, errorKeys(errs)); diff != "" {
		t.Fatalf("error keys mismatch (-want +got):\n%s", diff)
	}

	values[FieldNationalCode] = "٠٠١٢٣٤٥٦٧٨"
	values[FieldPostcode] = "1234567890"
	if errs := validate(t, values); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_CityMustBelongToState(t *testing.T) {
	errs := validate(t, mergeValues(validAddress(), map[string]string{FieldCity: "Qom"}))
	if diff := cmp.Diff([]string{FieldCity}, errorKeys(errs)); diff != "" {
		t.Fatalf("error keys mismatch (-want +got):\n%s", diff)
	}

	errs = validate(t, mergeValues(validAddress(), map[string]string{FieldState: "QHM", FieldCity: "Qom"}))
	if len(errs) != 0 {
		t.Fatalf("expected unmapped province to accept any city, got %v", errs)
	}
}

func TestValidate_UnknownStateAndPhone(t *testing.T) {
	errs := validate(t, mergeValues(validAddress(), map[string]string{FieldState: "XXX", FieldPhone: "abc"}))
	if diff := cmp.Diff([]string{FieldState, FieldPhone}, errorKeys(errs)); diff != "" {
		t.Fatalf("error keys mismatch (-want +got):\n%s", diff)
	}
}

func TestValidator_VisibleAndRequired(t *testing.T) {
	form, err := Build(geo.Snapshot{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	v := NewValidator(exprvis.New())
	company, _ := form.Field(FieldCompanyName)

	values := map[string]string{FieldPersonType: PersonTypeLegal}
	if !v.Visible(*company, values) || v.Required(*company, values) {
		t.Fatalf("expected visible optional company field")
	}
	values[FieldInvoiceRequest] = "1"
	if !v.Required(*company, values) {
		t.Fatalf("expected company field to be required with invoice")
	}
	values[FieldPersonType] = PersonTypeReal
	if v.Visible(*company, values) {
		t.Fatalf("expected company field hidden for real person")
	}

	var nilEval *Validator
	if !nilEval.Visible(*company, values) {
		t.Fatalf("expected nil validator to treat fields as visible")
	}
}

func TestNormalizeDigits(t *testing.T) {
	cases := map[string]string{
		"۱۲۳۴۵۶۷۸۹۰": "1234567890",
		"٠١٢٣٤٥٦٧٨٩": "0123456789",
		" 12a۳ ":     "12a3",
		"":           "",
	}
	for input, want := range cases {
		if got := NormalizeDigits(input); got != want {
			t.Fatalf("NormalizeDigits(%q) = %q, want %q", input, got, want)
		}
	}
}
