package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParseSubject(t *testing.T) {
	cfg := TokenConfig{Secret: testSecret, Issuer: "bitacora-auth", Audience: "bitacora-api"}

	valid := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "user-123",
			"iss": "bitacora-auth",
			"aud": "bitacora-api",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	tests := []struct {
		name    string
		token   func() string
		wantSub string
		wantErr error
	}{
		{
			name:    "Happy Path",
			token:   func() string { return signToken(t, testSecret, valid()) },
			wantSub: "user-123",
		},
		{
			name: "Audience As List",
			token: func() string {
				c := valid()
				c["aud"] = []string{"other", "bitacora-api"}
				return signToken(t, testSecret, c)
			},
			wantSub: "user-123",
		},
		{
			name: "Expired Token",
			token: func() string {
				c := valid()
				c["exp"] = time.Now().Add(-time.Hour).Unix()
				return signToken(t, testSecret, c)
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Wrong Secret",
			token:   func() string { return signToken(t, "another-secret-another-secret-1234", valid()) },
			wantErr: ErrInvalidToken,
		},
		{
			name: "Wrong Issuer",
			token: func() string {
				c := valid()
				c["iss"] = "someone-else"
				return signToken(t, testSecret, c)
			},
			wantErr: ErrInvalidIssuer,
		},
		{
			name: "Wrong Audience",
			token: func() string {
				c := valid()
				c["aud"] = "another-client"
				return signToken(t, testSecret, c)
			},
			wantErr: ErrInvalidAud,
		},
		{
			name: "Missing Subject",
			token: func() string {
				c := valid()
				delete(c, "sub")
				return signToken(t, testSecret, c)
			},
			wantErr: ErrInvalidSubject,
		},
		{
			name:    "Malformed Token",
			token:   func() string { return "malformed.token.here" },
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			sub, err := ParseSubject(tt.token(), cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, sub)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSub, sub)
		})
	}
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/test", func(c *fiber.Ctx) error {
		tok, err := BearerToken(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
		}
		return c.SendString(tok)
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Bearer Token", "Bearer abc.def.ghi", http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Empty Bearer", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
