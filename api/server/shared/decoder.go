package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/kubelab/log-aggregator/api/server/shared/apierrors"
	"github.com/kubelab/log-aggregator/internal/logger"
)

type RequestDecoderValidator interface {
	DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool
}

type DefaultRequestDecoderValidator struct {
	logger    *logger.Logger
	decoder   *schema.Decoder
	validator *validator.Validate
}

func NewDefaultRequestDecoderValidator(l *logger.Logger) RequestDecoderValidator {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	v := validator.New()
	v.SetTagName("form")

	return &DefaultRequestDecoderValidator{
		logger:    l,
		decoder:   decoder,
		validator: v,
	}
}

// DecodeAndValidate decodes query parameters for GET requests and the JSON
// body otherwise, then validates the `form` tags. It writes a 400 and returns
// false on failure.
func (d *DefaultRequestDecoderValidator) DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := d.decode(r, v); err != nil {
		apierrors.HandleAPIError(d.logger, w, r, apierrors.NewErrPassThroughToClient(err, http.StatusBadRequest), true)
		return false
	}

	if err := d.validator.Struct(v); err != nil {
		apierrors.HandleAPIError(d.logger, w, r, apierrors.NewErrPassThroughToClient(
			fmt.Errorf("validation failed: %w", err),
			http.StatusBadRequest,
		), true)
		return false
	}

	return true
}

func (d *DefaultRequestDecoderValidator) decode(r *http.Request, v interface{}) error {
	if r.Method == http.MethodGet || r.Method == http.MethodDelete {
		if err := d.decoder.Decode(v, r.URL.Query()); err != nil {
			return fmt.Errorf("could not decode query parameters: %w", err)
		}

		return nil
	}

	if r.Body == nil {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not decode request body: %w", err)
	}

	return nil
}
