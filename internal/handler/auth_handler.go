package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"karaoke/internal/errors"
	"karaoke/internal/model"
	"karaoke/internal/mw"
	"karaoke/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents a login request. Action is admin_login or table_login.
type LoginRequest struct {
	Action   string `json:"action" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Success   bool                `json:"success"`
	Role      model.Role          `json:"role"`
	Token     string              `json:"token,omitempty"`
	ExpiresAt time.Time           `json:"token_expires_at"`
	User      *model.AdminAccount `json:"user,omitempty"`
	Table     *model.TableSession `json:"table,omitempty"`
}

func newAuthResponse(desc *service.SessionDescriptor) AuthResponse {
	return AuthResponse{
		Success:   true,
		Role:      desc.Role,
		Token:     desc.Token,
		ExpiresAt: desc.TokenExpiresAt,
		User:      desc.Admin,
		Table:     desc.Table,
	}
}

var loginActions = map[string]model.Role{
	"admin_login": model.RoleAdmin,
	"table_login": model.RoleTable,
}

// Login godoc
// @Summary Log in as the operator or as a table
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	role, ok := loginActions[req.Action]
	if !ok {
		return fail(c, fmt.Errorf("%w: unknown action %q", errors.ErrValidation, req.Action))
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	desc, err := h.authService.Authenticate(c.Request().Context(), role, req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, newAuthResponse(desc))
}

// Logout godoc
// @Summary Revoke the current session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token := mw.BearerToken(c)
	if token == "" {
		return fail(c, errors.ErrUnauthorized)
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// Session godoc
// @Summary Describe the current session
// @Description Tables get their current lease; an expired or deleted table is rejected.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	desc := mw.Session(c)
	if desc == nil {
		return fail(c, errors.ErrUnauthorized)
	}
	return c.JSON(http.StatusOK, newAuthResponse(desc))
}
