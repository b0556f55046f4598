package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("missing request body")
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := WriteJSON(w, status, errorResponse{Error: message}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write error response")
	}
}

// WriteHandlerError maps err to a JSON error response. FieldErrors become
// 400s, HandlerErrors keep their status, anything else is a 500 with fallback
// as the message.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := log.Ctx(r.Context())

	var ferr FieldError
	if errors.As(err, &ferr) {
		if writeErr := WriteJSON(w, http.StatusBadRequest, errorResponse{Error: ferr.Error(), Field: ferr.Field}); writeErr != nil {
			logger.Error().Err(writeErr).Msg("Failed to write error response")
		}
		return
	}

	var herr HandlerError
	if errors.As(err, &herr) {
		if herr.Status >= http.StatusInternalServerError {
			logger.Error().Err(herr.Err).Msg(herr.Message)
		}
		WriteError(w, r, herr.Status, herr.Message)
		return
	}

	logger.Error().Err(err).Msg(fallback)
	WriteError(w, r, http.StatusInternalServerError, fallback)
}
