package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/service/appconfig"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
)

type SettingsHandler struct {
	svc    *appconfig.Service
	logger *logger.Logger
}

func NewSettingsHandler(svc *appconfig.Service, logger *logger.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, logger: logger}
}

func (h *SettingsHandler) List(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error(err, "failed to list settings", nil)
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to list settings"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(entries))
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req model.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	if err := h.svc.Update(c.Request.Context(), req.Entries); err != nil {
		h.logger.Error(err, "failed to update settings", nil)
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to update settings"))
		return
	}
	c.JSON(http.StatusOK, NewMessageResponse("settings updated"))
}
