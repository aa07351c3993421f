package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pilger-eventos/rsvp-api/internal/service/automation"
	"github.com/pilger-eventos/rsvp-api/internal/service/dispatch"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
)

// TriggerHandler exposes the automation entry points: the signup trigger,
// the bulk fixed-date scheduler, and the queue-drain invocation used by the
// external cron.
type TriggerHandler struct {
	automation *automation.Service
	dispatcher *dispatch.Dispatcher
	logger     *logger.Logger
}

func NewTriggerHandler(automationSvc *automation.Service, dispatcher *dispatch.Dispatcher, logger *logger.Logger) *TriggerHandler {
	return &TriggerHandler{automation: automationSvc, dispatcher: dispatcher, logger: logger}
}

type signupTriggerRequest struct {
	GuestID uuid.UUID `json:"guest_id" binding:"required"`
}

type scheduleRuleRequest struct {
	RuleID uuid.UUID `json:"rule_id" binding:"required"`
}

// Signup schedules the signup-relative rules for one guest.
func (h *TriggerHandler) Signup(c *gin.Context) {
	var req signupTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	scheduled, err := h.automation.ScheduleSignup(c.Request.Context(), req.GuestID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("guest not found"))
			return
		}
		h.logger.Error(err, "signup trigger failed", map[string]interface{}{"guest_id": req.GuestID})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to schedule signup messages"))
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"scheduled": scheduled}))
}

// ScheduleRule broadcasts a fixed-date rule to every registered guest.
func (h *TriggerHandler) ScheduleRule(c *gin.Context) {
	var req scheduleRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	scheduled, err := h.automation.ScheduleFixedDateRule(c.Request.Context(), req.RuleID)
	if err != nil {
		switch {
		case errors.Is(err, automation.ErrNotFixedDate):
			c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"scheduled": 0, "skipped": err.Error()}))
		case apperrors.IsNotFound(err):
			c.JSON(http.StatusNotFound, NewErrorResponse("rule not found"))
		default:
			h.logger.Error(err, "schedule-rule trigger failed", map[string]interface{}{"rule_id": req.RuleID})
			c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to schedule rule"))
		}
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"scheduled": scheduled}))
}

// ProcessQueue runs one dispatch invocation. The external scheduler calls it
// periodically; a full batch also re-enters through the broker nudge.
func (h *TriggerHandler) ProcessQueue(c *gin.Context) {
	summary, err := h.dispatcher.ProcessQueue(c.Request.Context())
	if err != nil {
		if apperrors.IsConfiguration(err) {
			h.logger.Error(err, "dispatch aborted: configuration missing", nil)
			c.JSON(http.StatusServiceUnavailable, NewErrorResponse("messaging provider not configured"))
			return
		}
		h.logger.Error(err, "dispatch run failed", nil)
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to process queue"))
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(summary))
}
