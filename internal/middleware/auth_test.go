package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, userID primitive.ObjectID, roles []string, secret string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"roles":  roles,
		"iat":    time.Now().Unix(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runAuth(t *testing.T, authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders/available", nil)
	if authorization != "" {
		c.Request.Header.Set("Authorization", authorization)
	}
	UserAuth(testSecret)(c)
	return c, w
}

func TestUserAuthValidToken(t *testing.T) {
	userID := primitive.NewObjectID()
	token := signedToken(t, userID, []string{"user", "stuker"}, testSecret)

	c, w := runAuth(t, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	got, ok := UserID(c)
	if !ok || got != userID {
		t.Errorf("UserID = %v ok=%v, want %v", got, ok, userID)
	}
	roles := Roles(c)
	if len(roles) != 2 || roles[1] != "stuker" {
		t.Errorf("Roles = %v, want [user stuker]", roles)
	}
}

func TestUserAuthRejectsBadTokens(t *testing.T) {
	userID := primitive.NewObjectID()
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token abc"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong secret", "Bearer " + signedToken(t, userID, []string{"user"}, "other-secret")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, w := runAuth(t, tc.header)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("roles", []string{"user"})
	RequireRole("stuker")(c)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Set("roles", []string{"user", "stuker"})
	RequireRole("stuker")(c)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
