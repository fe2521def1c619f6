package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/ctxutil"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
)

const testSecret = "test-secret"

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(mustTestLogger(t), testSecret)

	r := gin.New()
	r.Use(am.Identify())
	r.GET("/whoami", func(c *gin.Context) {
		userID := ""
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			userID = rd.UserID
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/protected", am.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestIdentifyBindsTokenSubject(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "u1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body != `{"user_id":"u1"}` {
		t.Fatalf("body = %s, want user_id u1", body)
	}
}

func TestIdentifyAcceptsQueryToken(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+signToken(t, testSecret, "u2"), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if body := rec.Body.String(); body != `{"user_id":"u2"}` {
		t.Fatalf("body = %s, want user_id u2", body)
	}
}

func TestInvalidTokenLeavesRequestAnonymous(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "u1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (anonymous allowed)", rec.Code)
	}
	if body := rec.Body.String(); body != `{"user_id":""}` {
		t.Fatalf("body = %s, want empty user_id", body)
	}
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthAdmitsValidToken(t *testing.T) {
	r := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "u1"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}
