package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freightlens/backend/internal/application/services"
	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

type DashboardHandler struct {
	svcMgr *services.ServiceManager
}

func NewDashboardHandler(svcMgr *services.ServiceManager) *DashboardHandler {
	return &DashboardHandler{svcMgr: svcMgr}
}

// List handles GET /api/dashboards
func (h *DashboardHandler) List(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "dashboards", func() (interface{}, error) {
		return h.svcMgr.Dashboards.List(c.Request.Context(), session)
	})
}

// Get handles GET /api/dashboards/:id
func (h *DashboardHandler) Get(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "dashboard", func() (interface{}, error) {
		return h.svcMgr.Dashboards.Get(c.Request.Context(), session, c.Param("id"))
	})
}

// Create handles POST /api/dashboards
func (h *DashboardHandler) Create(c *gin.Context) {
	session := GetUserFromContext(c)

	var dashboard models.Dashboard
	if !BindJSON(c, &dashboard) {
		return
	}

	created, err := h.svcMgr.Dashboards.Create(c.Request.Context(), session, &dashboard)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{constants.FieldMessage: "Dashboard created", "dashboard": created})
}

// Update handles PUT /api/dashboards/:id
func (h *DashboardHandler) Update(c *gin.Context) {
	session := GetUserFromContext(c)

	var dashboard models.Dashboard
	if !BindJSON(c, &dashboard) {
		return
	}
	dashboard.ID = c.Param("id")

	if err := h.svcMgr.Dashboards.Update(c.Request.Context(), session, &dashboard); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Dashboard updated", "dashboard": dashboard})
}

// Delete handles DELETE /api/dashboards/:id
func (h *DashboardHandler) Delete(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Dashboard deleted", func() error {
		return h.svcMgr.Dashboards.Delete(c.Request.Context(), session, c.Param("id"))
	})
}

// AttachRequest places a widget into a section.
type AttachRequest struct {
	SectionID string `json:"section_id" binding:"required"`
	WidgetID  string `json:"widget_id" binding:"required"`
}

// AttachWidget handles POST /api/dashboards/:id/widgets
func (h *DashboardHandler) AttachWidget(c *gin.Context) {
	session := GetUserFromContext(c)

	var req AttachRequest
	if !BindJSON(c, &req) {
		return
	}

	err := h.svcMgr.Dashboards.AttachWidget(c.Request.Context(), session, c.Param("id"), req.SectionID, req.WidgetID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Widget attached"})
}

// DetachWidget handles DELETE /api/dashboards/:id/widgets/:widgetId
func (h *DashboardHandler) DetachWidget(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Widget detached", func() error {
		return h.svcMgr.Dashboards.DetachWidget(c.Request.Context(), session, c.Param("id"), c.Param("widgetId"))
	})
}
