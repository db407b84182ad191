package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bilgisen/newsinflight/internal/logger"
	"github.com/bilgisen/newsinflight/internal/profile"
)

// SessionKey is the fiber.Locals key holding the verified *profile.Session.
const SessionKey = "session"

// SessionClaims are the claims the auth provider puts in session tokens.
type SessionClaims struct {
	Email        string                 `json:"email,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// AuthConfig defines the config for the session middleware
type AuthConfig struct {
	// Skip defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Secret is the HS256 key session tokens are signed with.
	// Required.
	Secret []byte

	// Issuer, when set, must match the token's iss claim.
	// Optional.
	Issuer string

	// Cookie is read when no Authorization header is present.
	// Optional. Default: "__session"
	Cookie string

	// ErrorHandler defines a function which is executed for a missing or invalid token.
	// Optional. Default: 401 {"error": "unauthorized"}
	ErrorHandler fiber.ErrorHandler
}

// ConfigDefault is the default config
var ConfigDefault = AuthConfig{
	Cookie: "__session",
	ErrorHandler: func(c *fiber.Ctx, err error) error {
		logger.FromContext(c.UserContext()).Warn().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Err(err).
			Msg("Authentication failed")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	},
}

var (
	errMissingToken = errors.New("missing session token")
	errNoSubject    = errors.New("session token has no subject")
)

// NewAuth verifies the caller's session token and stores the session in
// c.Locals(SessionKey).
func NewAuth(config AuthConfig) fiber.Handler {
	cfg := config
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = ConfigDefault.ErrorHandler
	}
	if cfg.Cookie == "" {
		cfg.Cookie = ConfigDefault.Cookie
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (interface{}, error) { return cfg.Secret, nil }

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" {
			raw = c.Cookies(cfg.Cookie)
		}
		if raw == "" {
			return cfg.ErrorHandler(c, errMissingToken)
		}

		claims := &SessionClaims{}
		if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
			return cfg.ErrorHandler(c, err)
		}
		if claims.Subject == "" {
			return cfg.ErrorHandler(c, errNoSubject)
		}

		md := claims.UserMetadata
		if md == nil {
			md = map[string]interface{}{}
		}
		c.Locals(SessionKey, &profile.Session{
			UserID:   claims.Subject,
			Email:    claims.Email,
			Metadata: md,
		})

		l := logger.FromContext(c.UserContext()).With().Str("user_id", claims.Subject).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext(), l))

		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// SessionFrom returns the verified session, or nil outside NewAuth.
func SessionFrom(c *fiber.Ctx) *profile.Session {
	s, _ := c.Locals(SessionKey).(*profile.Session)
	return s
}

// AdminOnly is a middleware that checks if the request is from an admin.
// An empty adminKey disables admin routes entirely.
func AdminOnly(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get API key from header
		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Admin access attempt without API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key is required",
			})
		}

		if adminKey == "" || apiKey != adminKey {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Unauthorized admin access attempt")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		return c.Next()
	}
}
