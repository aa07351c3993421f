package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/service/auth"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
)

type AuthHandler struct {
	svc    *auth.Service
	logger *logger.Logger
}

func NewAuthHandler(svc *auth.Service, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse("invalid credentials"))
			return
		}
		h.logger.Error(err, "login failed", map[string]interface{}{"email": req.Email})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("login failed"))
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(resp))
}
