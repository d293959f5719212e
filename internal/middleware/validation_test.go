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

// Test struct mirroring the request payloads used by the handlers
type testRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Price float64 `json:"price" validate:"gte=0"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeEmail bool) bool {
			reqMap := make(map[string]interface{})

			if includeName {
				reqMap["name"] = "Sari Wijaya"
			}
			if includeEmail {
				reqMap["email"] = "sari@example.com"
			}

			body, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))

			var decoded testRequest
			err := DecodeAndValidate(req, &decoded)

			if includeName && includeEmail {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_EmailFormatValidated(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("malformed emails are rejected and valid ones accepted", prop.ForAll(
		func(local string, domain string, valid bool) bool {
			email := local + domain
			if valid {
				email = local + "@" + domain + ".com"
			}

			body, _ := json.Marshal(map[string]interface{}{
				"name":  "Test",
				"email": email,
			})
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))

			var decoded testRequest
			err := DecodeAndValidate(req, &decoded)

			if valid {
				return err == nil
			}
			return err != nil
		},
		gen.RegexMatch(`[a-z]{3,10}`),
		gen.RegexMatch(`[a-z]{3,10}`),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors(t *testing.T) {
	var decoded testRequest
	body := []byte(`{"price": -5}`)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))

	err := DecodeAndValidate(req, &decoded)
	if err == nil {
		t.Fatal("expected validation error")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) == 0 {
		t.Fatal("expected formatted field errors")
	}

	for _, fe := range formatted {
		if fe.Field == "" || fe.Message == "" {
			t.Fatalf("incomplete field error: %+v", fe)
		}
	}
}
