package shared

import (
	"net/http"

	"github.com/go-chi/render"
)

type ResultWriter interface {
	WriteResult(w http.ResponseWriter, r *http.Request, v interface{})
}

type DefaultResultWriter struct{}

func NewDefaultResultWriter() ResultWriter {
	return &DefaultResultWriter{}
}

func (j *DefaultResultWriter) WriteResult(w http.ResponseWriter, r *http.Request, v interface{}) {
	render.JSON(w, r, v)
}
