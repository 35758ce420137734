package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-weave/internal/config"

	"github.com/coreos/go-oidc"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockKeySet satisfies oidc.KeySet to bypass signature verification
type MockKeySet struct{}

func (m *MockKeySet) VerifySignature(ctx context.Context, jwtToken string) ([]byte, error) {
	parts := strings.Split(jwtToken, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed jwt")
	}
	return base64.RawURLEncoding.DecodeString(parts[1])
}

const testIssuer = "https://test-issuer.com"

func fakeToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	header, err := json.Marshal(map[string]interface{}{"alg": "RS256", "typ": "JWT", "kid": "test-key"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(header) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString([]byte("fakesignature"))
}

func newRouter(a *Auth, seen func(c *gin.Context)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/workflows", a.RequireAuth(), func(c *gin.Context) {
		seen(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuth_BearerToken(t *testing.T) {
	verifier := oidc.NewVerifier(testIssuer, &MockKeySet{}, &oidc.Config{
		ClientID:          "test-client",
		SkipClientIDCheck: true,
	})
	a := NewWithVerifier(verifier)

	token := fakeToken(t, map[string]interface{}{
		"iss":   testIssuer,
		"aud":   "test-client",
		"sub":   "user-123",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Add(-1 * time.Minute).Unix(),
		"email": "user@acme.com",
	})

	var called bool
	r := newRouter(a, func(c *gin.Context) {
		called = true
		user, ok := ContextProvider{}.CurrentUser(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, "user-123", user.UserID)
		assert.Equal(t, "user@acme.com", user.Email)

		cred, ok := ContextProvider{}.SessionCredential(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, token, cred)
		assert.Equal(t, "user-123", c.GetString("user_id"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Logf("Response Body: %s", rec.Body.String())
	}
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireAuth_Rejections(t *testing.T) {
	verifier := oidc.NewVerifier(testIssuer, &MockKeySet{}, &oidc.Config{SkipClientIDCheck: true})
	a := NewWithVerifier(verifier)
	r := newRouter(a, func(c *gin.Context) { t.Fatal("handler must not run") })

	expired := fakeToken(t, map[string]interface{}{
		"iss": testIssuer,
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongIssuer := fakeToken(t, map[string]interface{}{
		"iss": "https://elsewhere.example.com",
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	cases := map[string]string{
		"NoHeader":    "",
		"NotBearer":   "Basic dXNlcjpwYXNz",
		"Garbage":     "Bearer not-a-jwt",
		"Expired":     "Bearer " + expired,
		"WrongIssuer": "Bearer " + wrongIssuer,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestRequireAuth_BypassMode(t *testing.T) {
	a, err := New(context.Background(), config.AuthConfig{
		DevBypass: true,
		DevUserID: "dev-user",
		DevToken:  "dev-token",
	})
	require.NoError(t, err)

	t.Run("DevCredential", func(t *testing.T) {
		r := newRouter(a, func(c *gin.Context) {
			user, ok := ContextProvider{}.CurrentUser(c.Request.Context())
			require.True(t, ok)
			assert.Equal(t, "dev-user", user.UserID)
			cred, _ := ContextProvider{}.SessionCredential(c.Request.Context())
			assert.Equal(t, "dev-token", cred)
		})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ForwardsSuppliedToken", func(t *testing.T) {
		r := newRouter(a, func(c *gin.Context) {
			cred, _ := ContextProvider{}.SessionCredential(c.Request.Context())
			assert.Equal(t, "real-token", cred)
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/workflows", nil)
		req.Header.Set("Authorization", "bearer real-token")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNew_IncompleteConfig(t *testing.T) {
	_, err := New(context.Background(), config.AuthConfig{Issuer: testIssuer})
	assert.EqualError(t, err, "auth configuration is incomplete")
}

func TestContextProvider_Empty(t *testing.T) {
	_, ok := ContextProvider{}.CurrentUser(context.Background())
	assert.False(t, ok)
	_, ok = ContextProvider{}.SessionCredential(context.Background())
	assert.False(t, ok)
}
