package geo

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type mappingPayload struct {
	Data map[string][]string `json:"data"`
}

type optionsPayload struct {
	Data []Option `json:"data"`
}

func testHandler(fns ...OptionFn) http.Handler {
	base := []OptionFn{
		WithRegions([]Region{{Code: "TEH", Name: "تهران"}, {Code: "QHM", Name: "قم"}}),
		WithRecords([]CityRecord{{Name: "تهران ", Cities: []string{"Tehran", "Shemiranat"}}}),
	}
	return NewHandler(append(base, fns...)...)
}

func TestHandler_ReturnsMapping(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/geo/cities", nil)
	rec := httptest.NewRecorder()
	testHandler().ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := strings.TrimSpace(res.Header.Get("Content-Type")); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}

	var payload mappingPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := map[string][]string{"TEH": {"Tehran", "Shemiranat"}}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_EmptyDatasetReturnsEmptyObject(t *testing.T) {
	h := NewHandler(WithRegions([]Region{{Code: "QHM", Name: "قم"}}), WithRecords([]CityRecord{}))

	req := httptest.NewRequest(http.MethodGet, "/api/geo/cities", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if body := strings.TrimSpace(rec.Body.String()); body != `{"data":{}}` {
		t.Fatalf("expected empty object, got %s", body)
	}
}

func TestHandler_RegionParamReturnsOptions(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/geo/cities?region=TEH", nil)
	rec := httptest.NewRecorder()
	testHandler().ServeHTTP(rec, req)

	var payload optionsPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := []Option{
		{Value: "Tehran", Label: "Tehran"},
		{Value: "Shemiranat", Label: "Shemiranat"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_UnknownRegionReturnsEmptyArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/geo/cities?province=QHM", nil)
	rec := httptest.NewRecorder()
	testHandler(WithRegionParam("province")).ServeHTTP(rec, req)

	var payload optionsPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandler_RejectsUnsupportedMethods(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/geo/cities", nil)
	rec := httptest.NewRecorder()
	testHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("expected Allow header to list GET, got %q", allow)
	}
}

func TestHandler_HeadHasNoBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodHead, "/api/geo/cities", nil)
	rec := httptest.NewRecorder()
	testHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestHandler_GuardErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain error", err: errors.New("nope"), want: http.StatusForbidden},
		{name: "status error", err: StatusError{Code: http.StatusUnauthorized}, want: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := testHandler(WithGuard(func(*http.Request) error { return tc.err }))
			req := httptest.NewRequest(http.MethodGet, "/api/geo/cities", nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
