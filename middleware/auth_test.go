package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func protectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{VerifyToken()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":   c.GetString(ContextUserID),
			"role": c.GetString(ContextUserRole),
			"flat": c.GetString(ContextFlatNumber),
		})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("voter-1", RoleVoter, "A-101")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims["id"] != "voter-1" {
		t.Errorf("id claim = %v, want voter-1", claims["id"])
	}
	if claims["role"] != RoleVoter {
		t.Errorf("role claim = %v, want %s", claims["role"], RoleVoter)
	}
	if claims["flatNumber"] != "A-101" {
		t.Errorf("flatNumber claim = %v, want A-101", claims["flatNumber"])
	}
}

func TestGenerateTokenOmitsEmptyFlat(t *testing.T) {
	token, err := GenerateToken("admin-1", RoleAdmin, "")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if _, present := claims["flatNumber"]; present {
		t.Error("empty flat number should not appear in claims")
	}
}

func TestVerifyToken(t *testing.T) {
	router := protectedRouter()

	token, err := GenerateToken("voter-1", RoleVoter, "A-101")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer token", "Basic abc123", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, tt.authHeader)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	router := protectedRouter(RequireAdmin())

	adminToken, err := GenerateToken("admin-1", RoleAdmin, "")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	voterToken, err := GenerateToken("voter-1", RoleVoter, "A-101")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if w := doRequest(router, "Bearer "+adminToken); w.Code != http.StatusOK {
		t.Errorf("admin token rejected with status %d", w.Code)
	}
	if w := doRequest(router, "Bearer "+voterToken); w.Code != http.StatusForbidden {
		t.Errorf("voter token accepted with status %d, want 403", w.Code)
	}
}

func TestRequireVoter(t *testing.T) {
	router := protectedRouter(RequireVoter())

	adminToken, err := GenerateToken("admin-1", RoleAdmin, "")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	voterToken, err := GenerateToken("voter-1", RoleVoter, "A-101")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if w := doRequest(router, "Bearer "+voterToken); w.Code != http.StatusOK {
		t.Errorf("voter token rejected with status %d", w.Code)
	}
	if w := doRequest(router, "Bearer "+adminToken); w.Code != http.StatusForbidden {
		t.Errorf("admin token accepted with status %d, want 403", w.Code)
	}
}
