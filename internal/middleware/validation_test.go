package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Payload shaped like a product mutation, used to exercise the validator
type listingRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	Category string `json:"category" validate:"required"`
	Stock    int    `json:"stock" validate:"gte=0,lte=10000"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeCategory bool) bool {
			reqMap := map[string]interface{}{"stock": 5}

			if includeName {
				reqMap["name"] = "Kokum Butter"
			}
			if includeCategory {
				reqMap["category"] = "Kokum & Masala Blends"
			}

			allFieldsPresent := includeName && includeCategory

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			reqMap := map[string]interface{}{
				"name":     "Kokum Butter",
				"category": "",
				"stock":    -1,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)

			if len(validationErrors) == 0 {
				return false
			}

			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_StockRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stock outside 0..10000 is rejected", prop.ForAll(
		func(stock int) bool {
			reqMap := map[string]interface{}{
				"name":     "Terracotta Lamp",
				"category": "Clay & Terracotta Items",
				"stock":    stock,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			if stock >= 0 && stock <= 10000 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-100, 20000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_NameLengthValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("names longer than 80 characters are rejected", prop.ForAll(
		func(nameLen int) bool {
			name := make([]byte, nameLen)
			for i := range name {
				name[i] = 'a'
			}

			reqMap := map[string]interface{}{
				"name":     string(name),
				"category": "Decor & Utility Crafts",
				"stock":    1,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var listing listingRequest
			err := DecodeAndValidate(req, &listing)

			if nameLen >= 1 && nameLen <= 80 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
