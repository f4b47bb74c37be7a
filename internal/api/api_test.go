package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Payment Intake API", doc.Info.Title)
	for _, path := range []string{
		"/credit-cards/validate",
		"/credit-cards/card-type/{number}",
		"/credit-cards/health",
		"/payments",
		"/payments/health",
		"/payments/{id}",
		"/payments/{id}/cancel",
		"/payments/{id}/refund",
		"/payments/reference/{reference}",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}

	post := doc.Paths.Find("/payments").Post
	require.NotNil(t, post)
	assert.NotNil(t, post.Responses.Status(http.StatusConflict))
	assert.NotNil(t, post.Responses.Status(http.StatusUnsupportedMediaType))

	refund := doc.Paths.Find("/payments/{id}/refund").Post
	require.NotNil(t, refund)
	assert.NotNil(t, refund.Responses.Status(http.StatusConflict))

	status := doc.Components.Schemas["PaymentStatus"].Value
	assert.Contains(t, status.Enum, "REFUNDED")
	assert.Contains(t, doc.Components.Schemas["PaymentResponse"].Value.Properties, "redirectUrl")
}

func TestRegisterDocsRoutes(t *testing.T) {
	doc, err := Load(context.Background())
	require.NoError(t, err)

	mux := http.NewServeMux()
	require.NoError(t, RegisterDocsRoutes(mux, doc))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/openapi.json", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "3.0.3", body["openapi"])
	assert.Contains(t, body["paths"], "/payments")
}
