package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-ledger/internal/model"
)

// RegisterValidators installs the ledger's custom binding tags on gin's
// validator and reports field names by their json tag.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validators := map[string]validator.Func{
		"patient_type": func(fl validator.FieldLevel) bool {
			return model.PatientType(fl.Field().String()).Valid()
		},
		"payment_mode": func(fl validator.FieldLevel) bool {
			return model.PaymentMode(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
