package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kommunelab/lovassistent/internal/pkg/errcode"
	"github.com/kommunelab/lovassistent/internal/pkg/response"
	"github.com/kommunelab/lovassistent/internal/service"
)

type ChecklistHandler struct {
	checklists *service.ChecklistService
}

func NewChecklistHandler(checklists *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists}
}

type checklistRequest struct {
	Topic string `json:"topic"`
}

func (h *ChecklistHandler) Generate(c *gin.Context) {
	var req checklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	items, err := h.checklists.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}
