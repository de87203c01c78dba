package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
	Category string `json:"category" validate:"omitempty,max=64"`
}

// Feature: listing-generation, Property 26: Required field validation works
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing imageUrl is rejected, present imageUrl passes", prop.ForAll(
		func(includeImage bool, includeCategory bool) bool {
			reqMap := make(map[string]interface{})
			if includeImage {
				reqMap["imageUrl"] = "data:image/png;base64,iVBORw0KGgo="
			}
			if includeCategory {
				reqMap["category"] = "beauty"
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/process-product", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var decoded testRequest
			err := DecodeAndValidate(req, &decoded)

			if includeImage {
				return err == nil
			}
			return err != nil && IsValidationError(err)
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_MalformedJSONIsNotAValidationError(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/process-product", strings.NewReader(`{"imageUrl":`))

	var decoded testRequest
	err := DecodeAndValidate(req, &decoded)
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
}

func TestFormatValidationErrors(t *testing.T) {
	err := ValidateRequest(&testRequest{Category: strings.Repeat("x", 65)})
	require.Error(t, err)

	formatted := FormatValidationErrors(err)
	require.Len(t, formatted, 2)
	assert.Equal(t, ValidationError{Field: "ImageURL", Message: "This field is required"}, formatted[0])
	assert.Equal(t, ValidationError{Field: "Category", Message: "Value is too long"}, formatted[1])

	assert.Empty(t, FormatValidationErrors(nil))
}

func TestBodyLimitMiddleware(t *testing.T) {
	var readErr error
	handler := BodyLimitMiddleware(16, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var decoded testRequest
		readErr = json.NewDecoder(r.Body).Decode(&decoded)
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader(`{"imageUrl":"data:image/png;base64,AAAA"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"imageUrl":"data:image/png;base64,AAAA"}`))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Error(t, readErr)
	assert.True(t, IsBodyTooLarge(readErr), "chunked bodies hit the cap while decoding")
}

func TestIsBodyTooLarge(t *testing.T) {
	assert.False(t, IsBodyTooLarge(nil))
	assert.False(t, IsBodyTooLarge(ValidateRequest(&testRequest{})))
	assert.True(t, IsBodyTooLarge(&http.MaxBytesError{Limit: 16}))
}
