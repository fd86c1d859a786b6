package formstate

import (
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/model"
)

func newTestCheckout(t *testing.T, values map[string]string, fns ...CascadeOption) *Checkout {
	t.Helper()
	snapshot := geo.Snapshot{
		Country: "IR",
		Regions: []geo.Region{{Code: "THR", Name: "تهران"}, {Code: "QHM", Name: "قم"}},
		Cities:  geo.Mapping{"THR": {"تهران", "شمیرانات"}, "QHM": {"قم"}},
	}
	form, err := checkout.Build(snapshot)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	c := NewCheckout(form, snapshot.Cities, values, fns...)
	c.Init()
	return c
}

func requiredIn(f *Form, section string) []string {
	var out []string
	for _, name := range f.SectionFields(section) {
		if f.Required(name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func TestCheckout_InitialState(t *testing.T) {
	c := newTestCheckout(t, nil)

	for _, name := range c.Form.GroupFields(checkout.GroupRealPerson) {
		if !c.Form.Hidden(name) {
			t.Fatalf("%s visible without a person type", name)
		}
	}
	for _, name := range c.Form.GroupFields(checkout.GroupLegalPerson) {
		if !c.Form.Hidden(name) {
			t.Fatalf("%s visible without a person type", name)
		}
	}
	if got := requiredIn(c.Form, checkout.SectionPerson); len(got) != 0 {
		t.Fatalf("expected no required person fields, got %v", got)
	}
	if got := len(c.Form.Options(checkout.FieldCity)); got != 1 {
		t.Fatalf("expected placeholder only, got %d options", got)
	}
}

func TestCheckout_InvoiceRequiresOnlyPersonBox(t *testing.T) {
	c := newTestCheckout(t, nil)
	address := requiredIn(c.Form, checkout.SectionAddress)

	c.Change(checkout.FieldPersonType, checkout.PersonTypeReal)
	c.Change(checkout.FieldInvoiceRequest, "1")

	want := []string{
		checkout.FieldFirstName,
		checkout.FieldLastName,
		checkout.FieldNationalCode,
		checkout.FieldPersonType,
	}
	sort.Strings(want)
	if diff := cmp.Diff(want, requiredIn(c.Form, checkout.SectionPerson)); diff != "" {
		t.Fatalf("required person fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(address, requiredIn(c.Form, checkout.SectionAddress)); diff != "" {
		t.Fatalf("address box changed (-before +after):\n%s", diff)
	}
	if !c.Form.HasClass(checkout.FieldNationalCode, checkout.ClassRequired) {
		t.Fatalf("expected required class on national code")
	}

	c.Change(checkout.FieldPersonType, checkout.PersonTypeLegal)
	if c.Form.Required(checkout.FieldFirstName) {
		t.Fatalf("hidden real person field stayed required")
	}
	if !c.Form.Required(checkout.FieldCompanyName) {
		t.Fatalf("visible legal person field not required")
	}

	c.Change(checkout.FieldInvoiceRequest, "")
	if got := requiredIn(c.Form, checkout.SectionPerson); len(got) != 0 {
		t.Fatalf("expected required flags cleared, got %v", got)
	}
}

func TestCheckout_ProvinceAndCity(t *testing.T) {
	c := newTestCheckout(t, nil)

	c.Change(checkout.FieldState, "THR")
	c.Change(checkout.FieldCity, "شمیرانات")
	c.Change(checkout.FieldState, "THR")
	if got := c.Form.Value(checkout.FieldCity); got != "شمیرانات" {
		t.Fatalf("city lost on repeated province change: %q", got)
	}

	c.Change(checkout.FieldState, "QHM")
	want := []model.Option{
		{Value: "", Label: DefaultCityPlaceholder},
		{Value: "قم", Label: "قم"},
	}
	if diff := cmp.Diff(want, c.Form.Options(checkout.FieldCity)); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckout_InitFromSubmittedValues(t *testing.T) {
	c := newTestCheckout(t, map[string]string{
		checkout.FieldInvoiceRequest: "1",
		checkout.FieldPersonType:     checkout.PersonTypeLegal,
		checkout.FieldState:          "THR",
		checkout.FieldCity:           "تهران",
	})

	if c.Form.Hidden(checkout.FieldCompanyName) || !c.Form.Hidden(checkout.FieldFirstName) {
		t.Fatalf("legal group should be the only visible variant")
	}
	if !c.Form.Required(checkout.FieldEconomicCode) {
		t.Fatalf("expected economic code required")
	}
	if got := c.Form.Value(checkout.FieldCity); got != "تهران" {
		t.Fatalf("expected submitted city kept, got %q", got)
	}

	values := c.Values()
	if values[checkout.FieldInvoiceRequest] != "1" {
		t.Fatalf("expected invoice flag in values")
	}
	if _, ok := values[checkout.FieldFirstName]; ok {
		t.Fatalf("hidden field leaked into values")
	}
}

func TestCheckout_ExternalRefresh(t *testing.T) {
	clock := clockwork.NewFakeClock()
	done := make(chan bool, 1)
	c := newTestCheckout(t, nil, WithClock(clock), WithResyncHook(func(ok bool) { done <- ok }))
	c.Change(checkout.FieldState, "THR")

	c.Form.SetOptions(checkout.FieldCity, checkout.CityOptions(nil, ""))
	c.ExternalRefresh()
	clock.Advance(DefaultResyncDelay)

	select {
	case ok := <-done:
		if !ok {
			t.Fatalf("expected options rebuilt")
		}
	case <-time.After(time.Second):
		t.Fatalf("resync did not fire")
	}
	if got := len(c.Form.Options(checkout.FieldCity)); got != 3 {
		t.Fatalf("expected 3 options, got %d", got)
	}
}

func TestCheckout_ChangeGenericFields(t *testing.T) {
	c := newTestCheckout(t, nil)
	c.Change(checkout.FieldPhone, "09121234567")
	c.Change("unknown", "x")

	if got := c.Form.Value(checkout.FieldPhone); got != "09121234567" {
		t.Fatalf("phone = %q", got)
	}
}

func TestCheckout_PersonTypeChangeUpdatesCheckoutOnce(t *testing.T) {
	c := newTestCheckout(t, map[string]string{checkout.FieldInvoiceRequest: "1"})

	var got []Event
	unsubscribe := c.Form.Subscribe(func(e Event) {
		if e.Type == EventUpdateCheckout {
			got = append(got, e)
		}
	})
	defer unsubscribe()

	c.Change(checkout.FieldPersonType, checkout.PersonTypeLegal)

	want := []Event{{Type: EventUpdateCheckout, Field: checkout.FieldInvoiceRequest}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("update events mismatch (-want +got):\n%s", diff)
	}
}
