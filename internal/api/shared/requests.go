package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps decoded request bodies.
const MaxBodyBytes = 1 << 20

// Validate is the shared validator instance
var Validate = validator.New()

// DecodeJSON decodes the request body into v. Unknown fields are rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return err
	}
	return nil
}

// ValidateRequest validates v with its own Validate method when it has one,
// and with struct tags otherwise.
func ValidateRequest(v any) error {
	if err := Validate.Struct(v); err != nil {
		return err
	}
	if custom, ok := v.(interface{ Validate() error }); ok {
		return custom.Validate()
	}
	return nil
}
