package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "asientoflow"
)

func signToken(t *testing.T, subject, role string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iss":  testIssuer,
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func protectedRouter(capture func(r *http.Request)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AuthMiddleware(testSecret, testIssuer))
	r.GET("/probe", func(c *gin.Context) {
		if capture != nil {
			capture(c.Request)
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthMiddleware_ValidTokenSetsPrincipalAndToken(t *testing.T) {
	var gotPrincipal middleware.Principal
	var gotToken string
	router := protectedRouter(func(r *http.Request) {
		p, ok := middleware.GetPrincipalFromCtx(r.Context())
		require.True(t, ok)
		gotPrincipal = p
		tok, ok := middleware.GetTokenFromCtx(r.Context())
		require.True(t, ok)
		gotToken = tok
	})

	raw := signToken(t, "user-42", "accountant", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", gotPrincipal.UserID)
	assert.Equal(t, domain.RoleAccountant, gotPrincipal.Role)
	assert.Equal(t, raw, gotToken)
}

func TestAuthMiddleware_ExpiredTokenAnswersSessionExpired(t *testing.T) {
	router := protectedRouter(nil)

	raw := signToken(t, "user-42", "accountant", time.Now().Add(-time.Minute))
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_EXPIRED")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := protectedRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "SESSION_EXPIRED")
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := protectedRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecretRejected(t *testing.T) {
	router := protectedRouter(nil)

	claims := jwt.MapClaims{"sub": "user-42", "iss": testIssuer, "exp": time.Now().Add(time.Hour).Unix()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "SESSION_EXPIRED")
}
