package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"user-pulse/cmd/server/handlers/httperr"
	"user-pulse/internal/config"
	"user-pulse/internal/logger"
	"user-pulse/internal/services/users"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// TestSecret signs every token minted in tests.
const TestSecret = "test-secret-key-with-at-least-32-characters"

// CreateTestApp creates a basic Fiber app for testing with common configuration
func CreateTestApp(t *testing.T) *fiber.App {
	cfg := config.Config{LogLevel: "debug", LogFormat: "text"}
	_, err := logger.Init(cfg)
	require.NoError(t, err)

	return fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
	})
}

// CreateTestValidator creates a validator with the users package rules registered
func CreateTestValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, users.RegisterValidators(v))
	return v
}

// CreateJSONRequest creates an HTTP request with JSON body
func CreateJSONRequest(method, url string, body any) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	return CreateRawRequest(method, url, string(reqBody))
}

// CreateRawRequest creates a JSON request with body sent verbatim.
func CreateRawRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthenticatedRequest creates an HTTP request with Authorization header
func CreateAuthenticatedRequest(method, url string, body any, token string) *http.Request {
	req := CreateJSONRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// Do runs req against app and returns the status code and the whole body.
func Do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}
