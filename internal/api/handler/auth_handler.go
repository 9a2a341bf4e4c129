package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/learnhub/course-portal/internal/core/ports"
)

// AuthHandler issues API tokens.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token authenticates the caller with the configured login mode and returns
// a signed bearer token.
//
// @Summary      Issue an API token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		code, msg, _ := ErrorStatus(err)
		return c.JSON(code, errorResponse{Error: msg})
	}

	sess, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		code, msg, _ := ErrorStatus(err)
		return c.JSON(code, errorResponse{Error: msg})
	}

	token, err := h.authService.IssueToken(*sess)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not issue token"})
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token, User: sess.User, Role: sess.Role})
}
