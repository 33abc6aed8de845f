package kit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"FreshBasket/pkg/apperr"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	reqID := chimw.GetReqID(r.Context())
	WriteJSON(w, status, ErrorResponse{
		Error:     msg,
		Details:   details,
		RequestID: reqID,
	})
}

// WriteAppError maps the apperr taxonomy onto HTTP statuses.
// Only failures outside the expected outcomes are logged.
func WriteAppError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, apperr.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, apperr.ErrAlreadyExists):
		WriteError(w, r, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, apperr.ErrInvalidCredentials):
		WriteError(w, r, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, apperr.ErrStorageUnavailable):
		logFailure(log, r, err)
		WriteError(w, r, http.StatusServiceUnavailable, "service unavailable", nil)
	default:
		logFailure(log, r, err)
		WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func logFailure(log *zap.Logger, r *http.Request, err error) {
	if log == nil {
		return
	}
	log.Error("request failed",
		zap.Error(err),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
	)
}

// DecodeJSON reads exactly one JSON object from the body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}
	return nil
}

// IsForm reports whether the request carries HTML form values instead of JSON.
func IsForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// DecodeBody reads a JSON body into dst, or hands parsed form values to fromForm.
// An empty body leaves dst untouched. Failures wrap apperr.ErrInvalidInput.
func DecodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(url.Values)) error {
	if IsForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		fromForm(r.PostForm)
		return nil
	}
	if r.ContentLength == 0 {
		return nil
	}
	if err := DecodeJSON(w, r, dst); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}
