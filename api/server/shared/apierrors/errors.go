package apierrors

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/kubelab/log-aggregator/internal/logger"
)

type RequestError interface {
	Error() string
	ExternalError() string
	InternalError() string
	GetStatusCode() int
}

type ErrInternal struct {
	err error
}

func NewErrInternal(err error) RequestError {
	return &ErrInternal{err}
}

func (e *ErrInternal) Error() string {
	return e.err.Error()
}

func (e *ErrInternal) InternalError() string {
	return e.err.Error()
}

func (e *ErrInternal) ExternalError() string {
	return "An internal error occurred."
}

func (e *ErrInternal) GetStatusCode() int {
	return http.StatusInternalServerError
}

// ErrPassThroughToClient is returned to the client verbatim
type ErrPassThroughToClient struct {
	err        error
	statusCode int
}

func NewErrPassThroughToClient(err error, statusCode int) RequestError {
	return &ErrPassThroughToClient{err, statusCode}
}

func NewErrNotFound(err error) RequestError {
	return &ErrPassThroughToClient{err, http.StatusNotFound}
}

func (e *ErrPassThroughToClient) Error() string {
	return e.err.Error()
}

func (e *ErrPassThroughToClient) InternalError() string {
	return e.err.Error()
}

func (e *ErrPassThroughToClient) ExternalError() string {
	return e.err.Error()
}

func (e *ErrPassThroughToClient) GetStatusCode() int {
	return e.statusCode
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleAPIError logs the internal error and, when writeErr is set, writes the
// external error with its status code.
func HandleAPIError(l *logger.Logger, w http.ResponseWriter, r *http.Request, err RequestError, writeErr bool) {
	event := l.Warn()

	if err.GetStatusCode() >= http.StatusInternalServerError {
		event = l.Error()
	}

	event.Caller().Str("method", r.Method).Str("path", r.URL.Path).Int("status", err.GetStatusCode()).Msg(err.InternalError())

	if writeErr {
		render.Status(r, err.GetStatusCode())
		render.JSON(w, r, &ErrorResponse{Error: err.ExternalError()})
	}
}

