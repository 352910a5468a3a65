package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/mockexam-backend/internal/model"
	"github.com/prepforge/mockexam-backend/internal/response"
	"github.com/prepforge/mockexam-backend/internal/service"
	"github.com/prepforge/mockexam-backend/internal/validator"
)

// AuthHandler handles the single-user access code login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/auth/login
// Exchanges the access code for a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.Login(req.AccessCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginDisabled):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrLoginDisabled)
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}
