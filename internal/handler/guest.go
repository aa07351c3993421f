package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/service/guest"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
)

type GuestHandler struct {
	svc    *guest.Service
	logger *logger.Logger
}

func NewGuestHandler(svc *guest.Service, logger *logger.Logger) *GuestHandler {
	return &GuestHandler{svc: svc, logger: logger}
}

// Register handles the public RSVP form submission.
func (h *GuestHandler) Register(c *gin.Context) {
	var req model.CreateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	result, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, guest.ErrDuplicateRSVP) {
			c.JSON(http.StatusConflict, NewMessageResponse("presença já confirmada"))
			return
		}
		h.logger.Error(err, "failed to register guest", map[string]interface{}{
			"phone": req.Phone,
		})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to register guest"))
		return
	}

	c.JSON(http.StatusCreated, NewSuccessResponse(result))
}

func (h *GuestHandler) List(c *gin.Context) {
	guests, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error(err, "failed to list guests", nil)
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to list guests"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(guests))
}

func (h *GuestHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid guest ID"))
		return
	}

	g, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("guest not found"))
			return
		}
		h.logger.Error(err, "failed to get guest", map[string]interface{}{"guest_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to get guest"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(g))
}

func (h *GuestHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid guest ID"))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("guest not found"))
			return
		}
		h.logger.Error(err, "failed to delete guest", map[string]interface{}{"guest_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to delete guest"))
		return
	}
	c.JSON(http.StatusOK, NewMessageResponse("guest deleted"))
}

// CheckIn toggles a guest between confirmed and checked_in.
func (h *GuestHandler) CheckIn(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid guest ID"))
		return
	}

	status, err := h.svc.CheckInToggle(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("guest not found"))
			return
		}
		h.logger.Error(err, "failed to toggle check-in", map[string]interface{}{"guest_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to toggle check-in"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"status": status}))
}

// ResendWelcome resends the welcome message to a guest and their companions.
func (h *GuestHandler) ResendWelcome(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid guest ID"))
		return
	}

	if err := h.svc.ResendWelcome(c.Request.Context(), id); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("guest not found"))
			return
		}
		h.logger.Error(err, "failed to resend welcome", map[string]interface{}{"guest_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to resend welcome"))
		return
	}
	c.JSON(http.StatusOK, NewMessageResponse("welcome message sent"))
}

// ScheduledMessages lists queue entries created for a guest.
func (h *GuestHandler) ScheduledMessages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid guest ID"))
		return
	}

	entries, err := h.svc.ScheduledMessages(c.Request.Context(), id)
	if err != nil {
		h.logger.Error(err, "failed to list scheduled messages", map[string]interface{}{"guest_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to list scheduled messages"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(entries))
}
