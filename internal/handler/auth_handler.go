package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyhub/studyhub-backend/internal/middleware"
	"github.com/studyhub/studyhub-backend/internal/model"
	"github.com/studyhub/studyhub-backend/internal/repository"
	"github.com/studyhub/studyhub-backend/internal/response"
	"github.com/studyhub/studyhub-backend/internal/service"
	"github.com/studyhub/studyhub-backend/internal/validator"
)

type AuthHandler struct {
	principals      *repository.PrincipalRepository
	identityService *service.IdentityService
	authService     *service.AuthService
	adminService    *service.AdminService
}

func NewAuthHandler(
	principals *repository.PrincipalRepository,
	identityService *service.IdentityService,
	authService *service.AuthService,
	adminService *service.AdminService,
) *AuthHandler {
	return &AuthHandler{
		principals:      principals,
		identityService: identityService,
		authService:     authService,
		adminService:    adminService,
	}
}

// CreateSession godoc
// POST /api/v1/session
// Exchanges an identity-provider profile for a portal JWT. The principal row
// is created on first sign-in and refreshed after.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req model.SessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	principal := &model.Principal{
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	}
	if err := h.principals.Upsert(c.Request.Context(), principal); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	role, perms := h.identityService.Resolve(c.Request.Context(), principal.Email)
	token, err := h.authService.GenerateToken(service.TokenTypeUser, principal, role, perms)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":       token,
		"principal":   principal,
		"role":        role,
		"permissions": perms,
	})
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Password login for the dashboard. The effective role and permissions are
// re-resolved at login, never taken from the stored record alone.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	admin, err := h.adminService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	role, perms := h.identityService.Resolve(c.Request.Context(), admin.Email)
	principal := &model.Principal{ID: admin.ID, Email: admin.Email, Name: admin.Name}
	token, err := h.authService.GenerateToken(service.TokenTypeAdmin, principal, role, perms)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":       token,
		"admin":       admin,
		"role":        role,
		"permissions": perms,
	})
}

// Me godoc
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user_id":     claims.UserID,
		"email":       claims.Email,
		"name":        claims.Name,
		"role":        claims.Role,
		"permissions": claims.Permissions,
		"token_type":  claims.TokenType,
	})
}
