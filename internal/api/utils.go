package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sentiment-backend/pkg/api"

	"github.com/gorilla/schema"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(code int, err error) error {
	return &codedError{err: err, code: code}
}

func CodedErrorf(code int, format string, args ...any) error {
	return &codedError{err: fmt.Errorf(format, args...), code: code}
}

func ParseRequest[T any](r *http.Request) (T, error) {
	var data T
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("error parsing request body", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse request body: %v", err)
	}
	return data, nil
}

var formDecoder = func() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}()

// ParseForm decodes a urlencoded body (or query string) into T using its
// `schema` tags.
func ParseForm[T any](r *http.Request) (T, error) {
	var data T
	if err := r.ParseForm(); err != nil {
		slog.Error("error parsing form", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse form")
	}

	if err := formDecoder.Decode(&data, r.Form); err != nil {
		slog.Error("error decoding form", "error", err)
		return data, CodedErrorf(http.StatusBadRequest, "unable to parse form")
	}

	return data, nil
}

// RestHandler writes the handler result as json. Errors are written as
// {"error": msg} with the status carried by a codedError, or 500.
func RestHandler(handler func(r *http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := handler(r)
		if err != nil {
			code := http.StatusInternalServerError
			var cerr *codedError
			if errors.As(err, &cerr) {
				code = cerr.code
			} else {
				slog.Error("recieved non coded error from endpoint", "error", err)
			}
			if code == http.StatusInternalServerError {
				slog.Error("internal server error received in endpoint", "path", r.URL.Path, "error", err)
			}
			WriteJsonError(w, code, err.Error())
			return
		}

		if res == nil {
			res = struct{}{}
		}

		WriteJsonResponse(w, http.StatusOK, res)
	}
}

func WriteJsonResponse(w http.ResponseWriter, code int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		slog.Error("error serializing response body", "error", err)
		http.Error(w, fmt.Sprintf("error serializing response body: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		slog.Error("error writing response body", "error", err)
	}
}

func WriteJsonError(w http.ResponseWriter, code int, message string) {
	WriteJsonResponse(w, code, api.ErrorResponse{Error: message})
}
