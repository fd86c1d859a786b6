package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-checkoutform/components/geo"
	"github.com/goliatone/go-checkoutform/internal/logging"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/openapi"
	"github.com/goliatone/go-checkoutform/pkg/orchestrator"
	"github.com/goliatone/go-checkoutform/pkg/usermeta"
)

var (
	testUser     = uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	noncePattern = regexp.MustCompile(`name="checkout-nonce" value="([^"]+)"`)
)

type fixture struct {
	server *Server
	store  *usermeta.MemoryStore
	clock  clockwork.FakeClock
	logs   *bytes.Buffer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := usermeta.NewMemoryStore()
	clock := clockwork.NewFakeClock()
	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &logs})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	orch := orchestrator.New(
		orchestrator.WithGeo(geo.New(
			geo.WithRegions([]geo.Region{{Code: "THR", Name: "تهران"}, {Code: "QHM", Name: "قم"}}),
			geo.WithRecords([]geo.CityRecord{
				{Name: "تهران", Cities: []string{"تهران", "شمیرانات"}},
				{Name: "قم", Cities: []string{"قم"}},
			}),
		)),
		orchestrator.WithUserMeta(store),
		orchestrator.WithLogger(logger),
	)
	srv, err := New(context.Background(), Options{
		Orchestrator: orch,
		Clock:        clock,
		Nonces:       NewNonceStore(clock, time.Minute),
		Logger:       logger,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return fixture{server: srv, store: store, clock: clock, logs: &logs}
}

func (f fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func (f fixture) nonce(t *testing.T) string {
	t.Helper()
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/checkout", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /checkout: status %d", rec.Code)
	}
	match := noncePattern.FindStringSubmatch(rec.Body.String())
	if match == nil {
		t.Fatalf("nonce missing from form")
	}
	return match[1]
}

func postForm(values url.Values, accept string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	req.Header.Set(UserIDHeader, testUser.String())
	return req
}

func validForm(nonce string) url.Values {
	return url.Values{
		"checkout-nonce":             {nonce},
		checkout.FieldInvoiceRequest: {"1"},
		checkout.FieldPersonType:     {checkout.PersonTypeLegal},
		checkout.FieldCompanyName:    {"Acme"},
		checkout.FieldEconomicCode:   {"14001234567"},
		checkout.FieldAgentFirstName: {"Ali"},
		checkout.FieldAgentLastName:  {"Rezaei"},
		checkout.FieldState:          {"QHM"},
		checkout.FieldCity:           {"قم"},
		checkout.FieldAddress:        {"Main St. 1"},
		checkout.FieldPostcode:       {"۱۲۳۴۵۶۷۸۹۰"},
		checkout.FieldPhone:          {"02512345678"},
	}
}

func TestShowForm(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/checkout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("content type %q", got)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
	body := rec.Body.String()
	for _, fragment := range []string{`action="/checkout"`, `"THR":["تهران","شمیرانات"]`, `name="checkout-nonce"`} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("expected body to contain %q", fragment)
		}
	}
	if !strings.Contains(f.logs.String(), `"path":"/checkout"`) {
		t.Fatalf("request was not logged: %s", f.logs.String())
	}
}

func TestSubmit_AcceptedJSON(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, postForm(validForm(f.nonce(t)), "application/json"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var payload acceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "accepted" || payload.Data[checkout.FieldPostcode] != "1234567890" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	stored, err := usermeta.Load(context.Background(), f.store, testUser, checkout.PersistedFields)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]string{
		checkout.FieldPersonType:     checkout.PersonTypeLegal,
		checkout.FieldCompanyName:    "Acme",
		checkout.FieldEconomicCode:   "14001234567",
		checkout.FieldAgentFirstName: "Ali",
		checkout.FieldAgentLastName:  "Rezaei",
	}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Fatalf("stored meta mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_AcceptedHTML(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, postForm(validForm(f.nonce(t)), ""))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ccif-confirmation") {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmit_RejectedRerendersForm(t *testing.T) {
	f := newFixture(t)
	form := validForm(f.nonce(t))
	form.Set(checkout.FieldCity, "شمیرانات")
	form.Del(checkout.FieldCompanyName)

	rec := f.do(t, postForm(form, ""))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="ccif-error"`) {
		t.Fatalf("expected inline errors")
	}
	if !strings.Contains(body, `<option value="QHM" selected>`) {
		t.Fatalf("submitted values not kept")
	}
	if noncePattern.FindStringSubmatch(body) == nil {
		t.Fatalf("expected a fresh nonce")
	}
}

func TestSubmit_RejectedJSON(t *testing.T) {
	f := newFixture(t)
	form := validForm(f.nonce(t))
	form.Set(checkout.FieldPostcode, "123")

	rec := f.do(t, postForm(form, "application/json"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d", rec.Code)
	}
	var payload rejectedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Errors[checkout.FieldPostcode]) == 0 {
		t.Fatalf("expected postcode error, got %+v", payload)
	}
}

func TestSubmit_Nonce(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, postForm(validForm("forged"), "application/json"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("forged nonce: status %d", rec.Code)
	}

	nonce := f.nonce(t)
	if rec := f.do(t, postForm(validForm(nonce), "")); rec.Code != http.StatusOK {
		t.Fatalf("first use: status %d", rec.Code)
	}
	if rec := f.do(t, postForm(validForm(nonce), "")); rec.Code != http.StatusForbidden {
		t.Fatalf("replay: status %d", rec.Code)
	}
}

func TestSubmit_ExpiredNonce(t *testing.T) {
	f := newFixture(t)

	expired := f.nonce(t)
	f.clock.Advance(2 * time.Minute)
	if rec := f.do(t, postForm(validForm(expired), "application/json")); rec.Code != http.StatusForbidden {
		t.Fatalf("expired nonce: status %d", rec.Code)
	}

	fresh := f.nonce(t)
	f.clock.Advance(30 * time.Second)
	if rec := f.do(t, postForm(validForm(fresh), "application/json")); rec.Code != http.StatusOK {
		t.Fatalf("nonce within ttl: status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGeoRoute(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/api/geo/cities?region=QHM", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":[{"value":"قم","label":"قم"}]}` {
		t.Fatalf("body %s", got)
	}
}

func TestAssets(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"checkout.js", "checkout.css"} {
		rec := f.do(t, httptest.NewRequest(http.MethodGet, AssetURL("", "", name), nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", name, rec.Code)
		}
	}
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/assets/missing.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing asset: status %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var payload healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(healthResponse{Status: "ok", Regions: 2, Mapped: 2}, payload); diff != "" {
		t.Fatalf("health mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenAPI(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	raw, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	doc, err := openapi.NewDocument(context.Background(), raw)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	var paths []string
	for _, op := range doc.Operations() {
		paths = append(paths, op.Method+" "+op.Path)
	}
	want := []string{"GET /api/geo/cities", "GET /checkout", "POST /checkout", "GET /healthz"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestJoinPath(t *testing.T) {
	cases := []struct{ base, p, want string }{
		{"", "/healthz", "/healthz"},
		{"/shop", "/healthz", "/shop/healthz"},
		{"shop/", "assets/", "/shop/assets/"},
		{"", "", "/"},
	}
	for _, tc := range cases {
		if got := JoinPath(tc.base, tc.p); got != tc.want {
			t.Fatalf("JoinPath(%q, %q) = %q, want %q", tc.base, tc.p, got, tc.want)
		}
	}
}

func TestNew_RequiresOrchestrator(t *testing.T) {
	if _, err := New(context.Background(), Options{Logger: logrus.New()}); err == nil {
		t.Fatalf("expected error without orchestrator")
	}
}
