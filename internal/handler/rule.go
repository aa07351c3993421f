package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pilger-eventos/rsvp-api/internal/model"
	"github.com/pilger-eventos/rsvp-api/internal/repository"
	apperrors "github.com/pilger-eventos/rsvp-api/pkg/errors"
	"github.com/pilger-eventos/rsvp-api/pkg/logger"
)

type RuleHandler struct {
	repo   repository.RuleRepository
	logger *logger.Logger
}

func NewRuleHandler(repo repository.RuleRepository, logger *logger.Logger) *RuleHandler {
	return &RuleHandler{repo: repo, logger: logger}
}

func (h *RuleHandler) Create(c *gin.Context) {
	var req model.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	rule := &model.AutomationRule{
		ID:              uuid.New(),
		Name:            req.Name,
		Type:            model.RuleType(req.Type),
		TriggerValue:    req.TriggerValue,
		MessageTemplate: req.MessageTemplate,
		Active:          req.Active,
	}
	if err := h.repo.Create(c.Request.Context(), rule); err != nil {
		h.logger.Error(err, "failed to create rule", nil)
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to create rule"))
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(rule))
}

func (h *RuleHandler) List(c *gin.Context) {
	rules, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error(err, "failed to list rules", nil)
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to list rules"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(rules))
}

func (h *RuleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid rule ID"))
		return
	}

	rule, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("rule not found"))
			return
		}
		h.logger.Error(err, "failed to get rule", map[string]interface{}{"rule_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to get rule"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(rule))
}

func (h *RuleHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid rule ID"))
		return
	}

	var req model.UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	rule := &model.AutomationRule{
		ID:              id,
		Name:            req.Name,
		Type:            model.RuleType(req.Type),
		TriggerValue:    req.TriggerValue,
		MessageTemplate: req.MessageTemplate,
		Active:          req.Active,
	}
	if err := h.repo.Update(c.Request.Context(), rule); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("rule not found"))
			return
		}
		h.logger.Error(err, "failed to update rule", map[string]interface{}{"rule_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to update rule"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(rule))
}

func (h *RuleHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid rule ID"))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, NewErrorResponse("rule not found"))
			return
		}
		h.logger.Error(err, "failed to delete rule", map[string]interface{}{"rule_id": id})
		c.JSON(http.StatusInternalServerError, NewErrorResponse("failed to delete rule"))
		return
	}
	c.JSON(http.StatusOK, NewMessageResponse("rule deleted"))
}
