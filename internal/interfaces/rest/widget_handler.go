package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freightlens/backend/internal/application/services"
	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

// statusClientClosedRequest is nginx's 499, reported when a newer request
// superseded this one.
const statusClientClosedRequest = 499

type WidgetHandler struct {
	svcMgr *services.ServiceManager
}

func NewWidgetHandler(svcMgr *services.ServiceManager) *WidgetHandler {
	return &WidgetHandler{svcMgr: svcMgr}
}

// Catalog handles GET /api/widgets/catalog
func (h *WidgetHandler) Catalog(c *gin.Context) {
	session := GetUserFromContext(c)
	c.JSON(http.StatusOK, gin.H{"fields": h.svcMgr.Widgets.Catalog(session)})
}

// SuggestRequest represents the prompt body
type SuggestRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Suggest handles POST /api/widgets/suggest
func (h *WidgetHandler) Suggest(c *gin.Context) {
	session := GetUserFromContext(c)

	var req SuggestRequest
	if !BindJSON(c, &req) {
		return
	}

	result, err := h.svcMgr.Widgets.Suggest(c.Request.Context(), session, req.Prompt)
	if err != nil {
		// A superseded request ends quietly; the client already moved on.
		if errors.Is(err, context.Canceled) {
			c.Status(statusClientClosedRequest)
			return
		}
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Execute handles POST /api/widgets/execute
func (h *WidgetHandler) Execute(c *gin.Context) {
	session := GetUserFromContext(c)

	var config models.WidgetConfiguration
	if !BindJSON(c, &config) {
		return
	}

	result, err := h.svcMgr.Widgets.Execute(c.Request.Context(), session, &config)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": result})
}

// Publish handles POST /api/widgets
func (h *WidgetHandler) Publish(c *gin.Context) {
	session := GetUserFromContext(c)

	var req services.PublishRequest
	if !BindJSON(c, &req) {
		return
	}

	widget, err := h.svcMgr.Widgets.Publish(c.Request.Context(), session, req)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{constants.FieldMessage: "Widget published", "widget": widget})
}

// List handles GET /api/widgets
func (h *WidgetHandler) List(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "widgets", func() (interface{}, error) {
		return h.svcMgr.Widgets.List(c.Request.Context(), session)
	})
}

// Get handles GET /api/widgets/:id
func (h *WidgetHandler) Get(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "widget", func() (interface{}, error) {
		return h.svcMgr.Widgets.Get(c.Request.Context(), session, c.Param("id"))
	})
}

// Update handles PUT /api/widgets/:id
func (h *WidgetHandler) Update(c *gin.Context) {
	session := GetUserFromContext(c)

	var widget models.Widget
	if !BindJSON(c, &widget) {
		return
	}
	widget.ID = c.Param("id")

	if err := h.svcMgr.Widgets.Update(c.Request.Context(), session, &widget); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Widget updated", "widget": widget})
}

// Delete handles DELETE /api/widgets/:id
func (h *WidgetHandler) Delete(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Widget deleted", func() error {
		return h.svcMgr.Widgets.Delete(c.Request.Context(), session, c.Param("id"))
	})
}
