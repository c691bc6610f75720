package user

import (
	"idea-review-platform/auth"
	"idea-review-platform/internal/config"
	"idea-review-platform/internal/domain"
	"idea-review-platform/internal/errors"
	"idea-review-platform/internal/identity"
	"idea-review-platform/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for users
type Handler struct {
	service   Service
	directory *identity.GormDirectory
}

// NewHandler creates a new user handler
func NewHandler(service Service, directory *identity.GormDirectory) *Handler {
	return &Handler{service: service, directory: directory}
}

// FormLogin represents login form data
type FormLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// FormRegister represents registration form data
type FormRegister struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register handles user registration
func (h *Handler) Register(c *gin.Context) {
	var form FormRegister
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user := &domain.User{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		IsActive: true,
	}

	if err := h.service.Register(user); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user.ToSafeUser()})
}

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user, err := h.service.Login(form.Email, form.Password)
	if err != nil {
		c.Error(err)
		return
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.TokenVersion)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.TokenVersion)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	// Set refresh token as HttpOnly cookie
	c.SetCookie(
		"refresh_token",
		refreshToken,
		7*24*3600,
		"/",
		"",
		config.AppConfig.Environment == "production", // Secure
		true, // HttpOnly
	)

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"user":         user.ToSafeUser(),
	})
}

func (h *Handler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		c.Error(errors.Unauthorized("Refresh token not found", err))
		return
	}

	token, err := auth.VerifyJWT(refreshToken)
	if err != nil {
		c.Error(errors.Unauthorized("Invalid token or expired!", err))
		return
	}

	userID, tokenVersion, err := auth.GetDataFromToken(token)
	if err != nil {
		c.Error(errors.Unauthorized("Invalid token", err))
		return
	}

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		c.Error(errors.Unauthorized("User not found", err))
		return
	}

	// Check token version
	if user.TokenVersion != tokenVersion {
		c.Error(errors.Unauthorized("Invalid token!", nil))
		return
	}

	newAccessToken, err := auth.GenerateAccessToken(user.ID, user.TokenVersion)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": newAccessToken,
	})
}

// Logout invalidates every outstanding token by bumping the version.
func (h *Handler) Logout(c *gin.Context) {
	userID := utils.CurrentUserID(c)

	if err := h.service.IncreaseTokenVersion(userID); err != nil {
		c.Error(err)
		return
	}
	// Clear refresh cookie
	c.SetCookie("refresh_token", "", -1, "/", "", true, true)
	c.Status(http.StatusNoContent)
}

// GetProfile handles getting the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID := utils.CurrentUserID(c)

	user, err := h.service.GetUserByID(userID)
	if err != nil {
		c.Error(errors.NotFound("User not found", err))
		return
	}

	c.JSON(http.StatusOK, user.ToSafeUser())
}

func (h *Handler) SearchUsers(c *gin.Context) {
	query := c.Query("q")

	users, err := h.service.SearchUsers(c.Request.Context(), query)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type GrantRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=subject-matter-expert board deputy-director admin"`
}

// GrantRole assigns a role to a user. Admin only (enforced by route
// middleware).
func (h *Handler) GrantRole(c *gin.Context) {
	targetID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if _, err := h.service.GetUserByID(targetID); err != nil {
		c.Error(errors.NotFound("User not found", err))
		return
	}

	if err := h.directory.Grant(targetID, req.Role); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role granted"})
}

// RevokeRole removes a role grant. Admin only.
func (h *Handler) RevokeRole(c *gin.Context) {
	targetID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.directory.Revoke(targetID, req.Role); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role revoked"})
}
