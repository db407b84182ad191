package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims SessionClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func validClaims() SessionClaims {
	return SessionClaims{
		Email:        "pilot@example.com",
		UserMetadata: map[string]interface{}{"level": 3},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_1",
			Issuer:    "https://auth.example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func sessionApp(cfg AuthConfig) *fiber.App {
	app := fiber.New()
	app.Use(NewAuth(cfg))
	app.Get("/me", func(c *fiber.Ctx) error {
		s := SessionFrom(c)
		return c.JSON(fiber.Map{"user_id": s.UserID, "email": s.Email, "level": s.Metadata["level"]})
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	app := sessionApp(AuthConfig{Secret: testSecret, Issuer: "https://auth.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, jwt.SigningMethodHS256, testSecret, validClaims()))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "user_1", body["user_id"])
	assert.Equal(t, "pilot@example.com", body["email"])
	assert.EqualValues(t, 3, body["level"])
}

func TestAuthAcceptsSessionCookie(t *testing.T) {
	app := sessionApp(AuthConfig{Secret: testSecret})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: sign(t, jwt.SigningMethodHS256, testSecret, validClaims())})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRejects(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	noSubject := validClaims()
	noSubject.Subject = ""
	otherIssuer := validClaims()
	otherIssuer.Issuer = "https://evil.example.com"

	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims())},
		{"none alg", "Bearer " + sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, expired)},
		{"no subject", "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, noSubject)},
		{"issuer mismatch", "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, otherIssuer)},
	}

	app := sessionApp(AuthConfig{Secret: testSecret, Issuer: "https://auth.example.com"})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "unauthorized", decode(t, resp)["error"])
		})
	}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name     string
		adminKey string
		header   string
		want     int
	}{
		{"missing key", "secret", "", http.StatusUnauthorized},
		{"wrong key", "secret", "nope", http.StatusForbidden},
		{"right key", "secret", "secret", http.StatusOK},
		{"admin disabled", "", "anything", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/admin", AdminOnly(tt.adminKey), func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequestLoggerAssignsRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, generated, string(body))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "upstream-id", resp.Header.Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	app := fiber.New()
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests {
			assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimiterDisabled(t *testing.T) {
	app := fiber.New()
	app.Use(NewRateLimiter(0, 0).Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter("ip:a")
	now = now.Add(2 * time.Minute)
	rl.limiter("ip:b")

	assert.Equal(t, 1, rl.Cleanup(time.Minute))
	assert.Len(t, rl.visitors, 1)
}

type levelQuery struct {
	Level int `query:"level" validate:"omitempty,min=1,max=3"`
}

func TestValidateQueryParams(t *testing.T) {
	app := fiber.New()
	app.Get("/", ValidateQueryParams[levelQuery](), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"level": QueryParams[levelQuery](c).Level})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?level=3", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, decode(t, resp)["level"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/?level=9", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields := decode(t, resp)["fields"].(map[string]interface{})
	assert.Equal(t, "max", fields["Level"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/?level=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(http.StatusNotFound, "article gone") })
	app.Get("/plain", func(c *fiber.Ctx) error { return assert.AnError })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "article gone", body["details"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, decode(t, resp), "details")
}

func TestMetricsEndpoint(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/metrics", MetricsHandler())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/42", nil))
	require.NoError(t, err)
	RecordDegradedListing("daily")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)

	assert.True(t, strings.Contains(text, `newsinflight_http_requests_total{method="GET",route="/items/:id",status="200"}`), text)
	assert.Contains(t, text, `newsinflight_news_degraded_listings_total{view="daily"}`)
}
