// Package server exposes the checkout over HTTP: the form itself, the geo
// lookup endpoint, static assets, the OpenAPI description, and a health probe.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	checkoutform "github.com/goliatone/go-checkoutform"
	"github.com/goliatone/go-checkoutform/pkg/checkout"
	"github.com/goliatone/go-checkoutform/pkg/openapi"
	"github.com/goliatone/go-checkoutform/pkg/orchestrator"
	"github.com/goliatone/go-checkoutform/pkg/render"
	"github.com/goliatone/go-checkoutform/pkg/usermeta"
)

const (
	DefaultAssetsPath = "/assets/"
	// UserIDHeader carries the signed-in customer id set by a trusted proxy.
	UserIDHeader = "X-User-ID"
	// RequestIDHeader is echoed back, or generated when absent.
	RequestIDHeader = "X-Request-ID"

	confirmationPage = `<!doctype html>
<html lang="fa" dir="rtl"><meta charset="utf-8"><title>سفارش ثبت شد</title>
<p class="ccif-confirmation">سفارش شما ثبت شد.</p>
</html>
`
)

// Options configures New.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	// Renderer names an HTML renderer registered with the orchestrator.
	Renderer   string
	BasePath   string
	AssetsPath string
	// Assets defaults to the runtime controller plus the default stylesheet.
	Assets     fs.FS
	HostFields checkout.HostFields
	Nonces     *NonceStore
	// UserID resolves the signed-in customer. Defaults to UserIDHeader.
	UserID func(*http.Request) uuid.UUID
	Clock  clockwork.Clock
	Logger logrus.FieldLogger
	// OpenAPI forwards options to the description builder.
	OpenAPI []openapi.Option
}

// Server is an http.Handler serving the checkout routes.
type Server struct {
	opts        Options
	orch        *orchestrator.Orchestrator
	handler     http.Handler
	endpoint    string
	contentType string
	document    openapi.Document
	log         logrus.FieldLogger
}

var _ http.Handler = (*Server)(nil)

// New registers every route. ctx bounds the initial form build used for the
// OpenAPI description.
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Orchestrator == nil {
		return nil, errors.New("server: orchestrator is required")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Nonces == nil {
		opts.Nonces = NewNonceStore(opts.Clock, DefaultNonceTTL)
	}
	if opts.UserID == nil {
		opts.UserID = headerUserID
	}
	if opts.AssetsPath == "" {
		opts.AssetsPath = DefaultAssetsPath
	}
	if opts.Assets == nil {
		opts.Assets = layeredFS{checkoutform.RuntimeAssetsFS(), checkoutform.EmbeddedStyles()}
	}

	s := &Server{
		opts: opts,
		orch: opts.Orchestrator,
		log:  opts.Logger,
	}

	renderer, err := s.orch.Registry().Default(opts.Renderer, "vanilla")
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.contentType = renderer.ContentType()

	prepared, err := s.orch.Prepare(ctx, orchestrator.Request{HostFields: opts.HostFields})
	if err != nil {
		return nil, fmt.Errorf("server: prepare form: %w", err)
	}
	s.endpoint = prepared.Form.Endpoint

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.endpoint, s.handleShow)
	mux.HandleFunc("POST "+s.endpoint, s.handleSubmit)

	geoPath, err := s.orch.Geo().RegisterRoutes(mux, opts.BasePath)
	if err != nil {
		return nil, fmt.Errorf("server: geo routes: %w", err)
	}

	assetsPath := JoinPath(opts.BasePath, opts.AssetsPath)
	if !strings.HasSuffix(assetsPath, "/") {
		assetsPath += "/"
	}
	mux.Handle("GET "+assetsPath, http.StripPrefix(assetsPath, http.FileServerFS(opts.Assets)))

	healthPath := JoinPath(opts.BasePath, "/healthz")
	mux.HandleFunc("GET "+healthPath, s.handleHealth)

	apiOpts := append([]openapi.Option{
		openapi.WithGeoPath(geoPath, s.orch.Geo().Options().RegionParam),
		openapi.WithHealthPath(healthPath),
		openapi.WithHiddenFields(render.CheckoutNonceField),
	}, opts.OpenAPI...)
	s.document, err = openapi.Build(prepared.Form, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	mux.HandleFunc("GET "+JoinPath(opts.BasePath, "/openapi.json"), s.handleOpenAPI)

	s.handler = logRequests(mux, s.log, opts.Clock)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Endpoint is the path the checkout form is served and posted on.
func (s *Server) Endpoint() string {
	return s.endpoint
}

// Document returns the OpenAPI description of the served routes.
func (s *Server) Document() openapi.Document {
	return s.document
}

// AssetURL returns the public URL of an embedded asset.
func AssetURL(basePath, assetsPath, name string) string {
	if assetsPath == "" {
		assetsPath = DefaultAssetsPath
	}
	return JoinPath(JoinPath(basePath, assetsPath), name)
}

// JoinPath joins URL path segments into a rooted path, keeping a trailing
// slash on the last segment.
func JoinPath(base, p string) string {
	joined := path.Join("/", base, p)
	if strings.HasSuffix(p, "/") && joined != "/" {
		joined += "/"
	}
	return joined
}

type acceptedResponse struct {
	Status string            `json:"status"`
	Data   map[string]string `json:"data"`
}

type rejectedResponse struct {
	Errors     map[string][]string `json:"errors,omitempty"`
	FormErrors []string            `json:"form_errors,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Regions int    `json:"regions"`
	Mapped  int    `json:"mapped"`
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, render.RenderOptions{})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, s.log, StatusError{Code: http.StatusBadRequest, Err: ErrBadForm})
		return
	}
	values := formValues(r.PostForm)
	token := values[render.CheckoutNonceField]
	delete(values, render.CheckoutNonceField)
	if !s.opts.Nonces.Consume(token) {
		writeError(w, r, s.log, StatusError{Code: http.StatusForbidden, Err: ErrInvalidNonce})
		return
	}

	userID := s.opts.UserID(r)
	result, err := s.orch.Submit(r.Context(), orchestrator.Submission{
		UserID:     userID,
		Values:     values,
		HostFields: s.opts.HostFields,
	})
	if err != nil {
		if result.Values == nil {
			writeError(w, r, s.log, err)
			return
		}
		// The order stands even when the profile could not be updated.
		s.log.WithError(err).WithField("user", userID).Warn("server: user meta not saved")
	}

	if !result.Valid() {
		if wantsJSON(r) {
			writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{
				Errors:     result.Errors.Fields,
				FormErrors: result.Errors.Form,
			}, s.log)
			return
		}
		s.renderForm(w, r, http.StatusUnprocessableEntity, render.RenderOptions{
			Values:     values,
			Errors:     result.Errors.Fields,
			FormErrors: result.Errors.Form,
		})
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, acceptedResponse{Status: "accepted", Data: result.Values}, s.log)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(confirmationPage))
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, code int, opts render.RenderOptions) {
	opts.HiddenFields = render.MergeHiddenFields(opts.HiddenFields, render.Nonce(s.opts.Nonces.Issue()))
	out, err := s.orch.Generate(r.Context(), orchestrator.Request{
		UserID:        s.opts.UserID(r),
		Renderer:      s.opts.Renderer,
		HostFields:    s.opts.HostFields,
		RenderOptions: opts,
	})
	if err != nil {
		writeError(w, r, s.log, err)
		return
	}
	w.Header().Set("Content-Type", s.contentType)
	w.WriteHeader(code)
	_, _ = w.Write(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snapshot := s.orch.Geo().Load(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Regions: len(snapshot.Regions),
		Mapped:  len(snapshot.Cities),
	}, s.log)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.document.Raw())
}

// formValues keeps the first value of every key, trimmed.
func formValues(form url.Values) map[string]string {
	out := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		out[key] = strings.TrimSpace(values[0])
	}
	return out
}

func headerUserID(r *http.Request) uuid.UUID {
	id, err := usermeta.ParseUserID(r.Header.Get(UserIDHeader))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// layeredFS opens name from the first file system that has it.
type layeredFS []fs.FS

func (l layeredFS) Open(name string) (fs.File, error) {
	for _, fsys := range l {
		if fsys == nil {
			continue
		}
		file, err := fsys.Open(name)
		if err == nil {
			return file, nil
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
