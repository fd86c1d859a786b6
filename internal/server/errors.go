package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidNonce = errors.New("server: invalid or expired checkout nonce")
	ErrBadForm      = errors.New("server: malformed form body")
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps err to a status code. Server errors are logged and their
// message withheld from the client.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.StatusCode()
	}

	message := http.StatusText(code)
	if code < http.StatusInternalServerError {
		message = err.Error()
	} else {
		log.WithError(err).WithField("path", r.URL.Path).Error("server: request failed")
	}

	if wantsJSON(r) {
		writeJSON(w, code, errorResponse{Error: message}, log)
		return
	}
	http.Error(w, message, code)
}

func writeJSON(w http.ResponseWriter, code int, payload any, log logrus.FieldLogger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("server: encode response")
	}
}
