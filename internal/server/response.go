package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/errors"
)

// Envelope is the JSON body of every non-streamed response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadRequest, Envelope{Error: message, Kind: string(errors.KindInvalidInput)})
}

// Failure writes the response for a failed store operation.
func Failure(w http.ResponseWriter, err error) {
	body := Envelope{Error: err.Error(), Kind: string(errors.KindOf(err))}

	var e *errors.Error
	if stderrors.As(err, &e) && len(e.Keys) > 0 {
		body.Data = map[string][]string{"keys": e.Keys}
	}
	JSON(w, StatusFor(err), body)
}

// StatusFor maps a store error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.IsObjectNotFound(err):
		return http.StatusNotFound
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}

	switch errors.KindOf(err) {
	case errors.KindInvalidInput:
		return http.StatusBadRequest
	case errors.KindBatchLimit:
		return http.StatusUnprocessableEntity
	case errors.KindTransport, errors.KindStatus, errors.KindPartialDelete:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
