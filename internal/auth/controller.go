package auth

import (
	"errors"
	"net/http"

	"stayhub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Register handles POST /api/v1/auth/register
func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyUsed) {
			response.Error(ctx, http.StatusConflict, err.Error(), nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Registration failed", nil)
		return
	}

	response.Success(ctx, http.StatusCreated, "Account registered successfully", resp)
}

// Login handles POST /api/v1/auth/login
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(ctx, http.StatusUnauthorized, err.Error(), nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	response.Success(ctx, http.StatusOK, "Logged in successfully", resp)
}
