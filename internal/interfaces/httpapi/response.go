package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-sync/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "league-sync"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain   string `json:"domain"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(_ context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	item := googleErrorItem{
		Domain:  errorDomain,
		Reason:  mapped.Reason,
		Message: err.Error(),
	}

	var fatal *usecase.SyncFatalError
	if crerr.As(err, &fatal) {
		item.Location = fatal.Stage
	}

	writeJSON(w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors:  []googleErrorItem{item},
		},
	})
}

func writeInternalError(w http.ResponseWriter) {
	const msg = "internal server error"

	writeJSON(w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{Domain: errorDomain, Reason: "internalError", Message: msg},
			},
		},
	})
}

// mapError uses crerr.Is so that marks applied with crerr.Mark are matched.
func mapError(err error) mappedError {
	switch {
	case crerr.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"}
	case crerr.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"}
	case crerr.Is(err, usecase.ErrRemoteNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: "remoteNotFound", Status: "NOT_FOUND"}
	case crerr.Is(err, usecase.ErrUnauthorized):
		return mappedError{HTTPStatus: http.StatusUnauthorized, Reason: "unauthorized", Status: "UNAUTHENTICATED"}
	case crerr.Is(err, usecase.ErrRemoteUnavailable):
		return mappedError{HTTPStatus: http.StatusBadGateway, Reason: "remoteUnavailable", Status: "UNAVAILABLE"}
	case crerr.Is(err, usecase.ErrRemoteMalformed):
		return mappedError{HTTPStatus: http.StatusBadGateway, Reason: "remoteMalformed", Status: "DATA_LOSS"}
	case crerr.Is(err, usecase.ErrPersistenceFailure), crerr.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"}
	case crerr.Is(err, context.DeadlineExceeded):
		return mappedError{HTTPStatus: http.StatusGatewayTimeout, Reason: "deadlineExceeded", Status: "DEADLINE_EXCEEDED"}
	case crerr.Is(err, context.Canceled):
		return mappedError{HTTPStatus: 499, Reason: "canceled", Status: "CANCELLED"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}
	}
}
