package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studyhub/studyhub-backend/internal/config"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/service"
)

func testAuthService() *service.AuthService {
	return service.NewAuthService(&config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	})
}

func tokenFor(t *testing.T, auth *service.AuthService, tokenType service.TokenType, role model.Role, perms model.PermissionSet) string {
	t.Helper()
	token, err := auth.GenerateToken(tokenType, &model.Principal{ID: 1, Email: "who@example.com", Name: "Who"}, role, perms)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// newProtectedRouter wires a write route exactly as the real router does:
// JWT validation, then the permission gate, then a handler that records
// whether it ran at all.
func newProtectedRouter(auth *service.AuthService, permission string, handlerRan *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/guarded",
		RequireAdminJWT(auth),
		RequirePermission(permission),
		func(c *gin.Context) {
			*handlerRan = true
			c.Status(http.StatusNoContent)
		})
	return r
}

func TestViewerWriteRejectedBeforeHandler(t *testing.T) {
	auth := testAuthService()
	handlerRan := false
	r := newProtectedRouter(auth, string(model.PermissionSubjectsWrite), &handlerRan)

	token := tokenFor(t, auth, service.TokenTypeUser, model.RoleViewer, model.NoPermissions())

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if handlerRan {
		t.Fatal("handler ran for a viewer; rejection must happen in middleware")
	}
}

func TestAdminWithoutFlagRejected(t *testing.T) {
	auth := testAuthService()
	handlerRan := false
	r := newProtectedRouter(auth, string(model.PermissionEmailBroadcast), &handlerRan)

	// An admin holding only content permissions must not broadcast email.
	token := tokenFor(t, auth, service.TokenTypeAdmin, model.RoleAdmin, model.LegacyDefaultPermissions())

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden || handlerRan {
		t.Fatalf("status = %d handlerRan = %v, want 403 without handler", w.Code, handlerRan)
	}
}

func TestPermittedAdminPasses(t *testing.T) {
	auth := testAuthService()
	handlerRan := false
	r := newProtectedRouter(auth, string(model.PermissionSubjectsWrite), &handlerRan)

	token := tokenFor(t, auth, service.TokenTypeAdmin, model.RoleAdmin, model.LegacyDefaultPermissions())

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent || !handlerRan {
		t.Fatalf("status = %d handlerRan = %v, want 204 with handler", w.Code, handlerRan)
	}
}

func TestMissingTokenRejected(t *testing.T) {
	auth := testAuthService()
	handlerRan := false
	r := newProtectedRouter(auth, string(model.PermissionSubjectsWrite), &handlerRan)

	req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized || handlerRan {
		t.Fatalf("status = %d handlerRan = %v, want 401 without handler", w.Code, handlerRan)
	}
}

func TestSuperAdminGate(t *testing.T) {
	auth := testAuthService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlerRan := false
	r.POST("/admins", RequireAdminJWT(auth), RequireSuperAdmin(), func(c *gin.Context) {
		handlerRan = true
		c.Status(http.StatusNoContent)
	})

	// A plain admin with every flag still cannot manage admin records.
	token := tokenFor(t, auth, service.TokenTypeAdmin, model.RoleAdmin, model.AllPermissions())
	req := httptest.NewRequest(http.MethodPost, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden || handlerRan {
		t.Fatalf("admin reached super-admin route: status %d", w.Code)
	}

	super := tokenFor(t, auth, service.TokenTypeAdmin, model.RoleSuperAdmin, model.AllPermissions())
	req = httptest.NewRequest(http.MethodPost, "/admins", nil)
	req.Header.Set("Authorization", "Bearer "+super)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || !handlerRan {
		t.Fatalf("super admin blocked: status %d", w.Code)
	}
}
