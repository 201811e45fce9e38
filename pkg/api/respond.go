package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/stackweight/pkg/errors"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Code      errors.Code `json:"code"`
	Error     string      `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeStructural,
		errors.ErrCodeConfiguration,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeOverBudget:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusMethodNotAllowed
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// classify turns any error into a coded error and its status.
func classify(err error) (errors.Code, int) {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return errors.ErrCodeInvalidInput, http.StatusRequestEntityTooLarge
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.ErrCodeTimeout, http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return errors.ErrCodeTimeout, http.StatusServiceUnavailable
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return code, statusFor(code)
}

// message renders err for clients: the coded message plus its cause.
func message(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errors.UserMessage(err)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, status := classify(err)
	msg := message(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{
		Code:      code,
		Error:     msg,
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func errMethod(r *http.Request) error {
	return errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path)
}
