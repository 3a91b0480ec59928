package request

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/edvin/configurator/internal/model"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("resource_kind", func(fl validator.FieldLevel) bool {
		return model.ResourceKind(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("billing_mode", func(fl validator.FieldLevel) bool {
		return model.BillingMode(fl.Field().String()).Valid()
	})
}

// maxBodyBytes caps request bodies; drafts are small.
const maxBodyBytes = 1 << 20

func Decode(r *http.Request, v any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}
