package middleware

import (
	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func token(t *testing.T, role model.UserRole, ttl time.Duration) string {
	t.Helper()
	user := &model.User{Email: "dev@example.com", Role: role}
	user.ID = 42
	tok, err := util.GenerateJWT(user, testSecret, ttl)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).UserID)
	})
	r.GET("/admin", AuthMiddleware(cfg), RoleMiddleware(model.Admin), func(c *gin.Context) {
		util.Success(c, nil)
	})

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"expired token", "/me", "Bearer " + token(t, model.Learner, -time.Minute), http.StatusUnauthorized},
		{"learner", "/me", "Bearer " + token(t, model.Learner, time.Hour), http.StatusOK},
		{"learner on admin route", "/admin", "Bearer " + token(t, model.Learner, time.Hour), http.StatusForbidden},
		{"admin", "/admin", "Bearer " + token(t, model.Admin, time.Hour), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	tok := token(t, model.Learner, time.Hour)
	if _, err := util.ParseJWT(tok, "another-secret-another-secret-xx"); err == nil {
		t.Error("expected signature check to fail")
	}
	claims, err := util.ParseJWT(tok, testSecret)
	if err != nil || claims.UserID != 42 || claims.Role != model.Learner {
		t.Errorf("unexpected claims %+v, %v", claims, err)
	}
}
