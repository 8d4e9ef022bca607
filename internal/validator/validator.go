// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"fluxo/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn installs the ledger tags and decimal support on v.
func RegisterOn(v *validator.Validate) {
	// Lets numeric tags such as gt=0 apply to decimal fields.
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("movement_kind", validateMovementKind)
	_ = v.RegisterValidation("bill_status", validateBillStatus)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateMovementKind(fl validator.FieldLevel) bool {
	_, ok := models.ParseMovementKind(fl.Field().String())
	return ok
}

func validateBillStatus(fl validator.FieldLevel) bool {
	return models.BillStatus(fl.Field().String()).Valid()
}
