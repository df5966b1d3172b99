package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freightlens/backend/internal/application/services"
)

type InvestigatorHandler struct {
	svcMgr *services.ServiceManager
}

func NewInvestigatorHandler(svcMgr *services.ServiceManager) *InvestigatorHandler {
	return &InvestigatorHandler{svcMgr: svcMgr}
}

// AskRequest represents one question to the Investigator
type AskRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Question       string `json:"question" binding:"required"`
}

// Ask handles POST /api/investigator/ask
func (h *InvestigatorHandler) Ask(c *gin.Context) {
	session := GetUserFromContext(c)

	var req AskRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Investigator.Ask(c.Request.Context(), session, req.ConversationID, req.Question)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.Status(statusClientClosedRequest)
			return
		}
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListConversations handles GET /api/investigator/conversations
func (h *InvestigatorHandler) ListConversations(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "conversations", func() (interface{}, error) {
		return h.svcMgr.Investigator.ListConversations(c.Request.Context(), session)
	})
}

// GetConversation handles GET /api/investigator/conversations/:id
func (h *InvestigatorHandler) GetConversation(c *gin.Context) {
	session := GetUserFromContext(c)

	conv, turns, err := h.svcMgr.Investigator.GetConversation(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv, "turns": turns})
}

// ClearConversation handles POST /api/investigator/conversations/:id/clear
func (h *InvestigatorHandler) ClearConversation(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Conversation cleared", func() error {
		return h.svcMgr.Investigator.ClearConversation(c.Request.Context(), session, c.Param("id"))
	})
}

// DeleteConversation handles DELETE /api/investigator/conversations/:id
func (h *InvestigatorHandler) DeleteConversation(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Conversation deleted", func() error {
		return h.svcMgr.Investigator.DeleteConversation(c.Request.Context(), session, c.Param("id"))
	})
}
