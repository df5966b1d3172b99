package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/internal/infrastructure/persistence"
	"github.com/freightlens/backend/pkg/constants"
	apperrors "github.com/freightlens/backend/pkg/errors"
	"github.com/freightlens/backend/pkg/utils"
)

// DashboardService manages dashboard layouts and widget placement.
type DashboardService struct {
	dashboards *persistence.DashboardRepository
	widgets    *persistence.WidgetRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(dashboards *persistence.DashboardRepository, widgets *persistence.WidgetRepository) *DashboardService {
	return &DashboardService{dashboards: dashboards, widgets: widgets}
}

// Create persists a new dashboard. Section ids are generated when absent.
func (s *DashboardService) Create(ctx context.Context, session *models.UserSession, d *models.Dashboard) (*models.Dashboard, error) {
	if strings.TrimSpace(d.Name) == "" {
		return nil, apperrors.NewValidationError("name", "dashboard name is required")
	}
	if d.Visibility == "" {
		d.Visibility = constants.VisibilityShared
	}
	if d.Visibility == constants.VisibilityAdmin && !session.IsAdmin {
		return nil, apperrors.NewPermissionError("create", "admin dashboard")
	}
	if d.Layout == "" {
		d.Layout = "two-column"
	}
	for i := range d.Sections {
		if d.Sections[i].ID == "" {
			d.Sections[i].ID = utils.GenerateID()
		}
	}

	d.ID = utils.GenerateID()
	d.CustomerID = session.CustomerID
	d.CreatedByID = session.ID
	if err := s.dashboards.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}

	log.Printf("🗂️ Dashboard %q created by %s", d.Name, session.Email)
	return d, nil
}

// Get returns one dashboard visible to the caller.
func (s *DashboardService) Get(ctx context.Context, session *models.UserSession, id string) (*models.Dashboard, error) {
	d, err := s.dashboards.Get(ctx, session.CustomerID, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if d == nil {
		return nil, apperrors.NewNotFoundError("dashboard", id)
	}
	if d.Visibility == constants.VisibilityAdmin && !session.IsAdmin {
		return nil, apperrors.NewNotFoundError("dashboard", id)
	}
	return d, nil
}

// List returns the caller's visible dashboards.
func (s *DashboardService) List(ctx context.Context, session *models.UserSession) ([]*models.Dashboard, error) {
	return s.dashboards.List(ctx, session.CustomerID, session.IsAdmin)
}

// Update replaces a dashboard's metadata and sections.
func (s *DashboardService) Update(ctx context.Context, session *models.UserSession, d *models.Dashboard) error {
	existing, err := s.Get(ctx, session, d.ID)
	if err != nil {
		return err
	}
	if existing.CreatedByID != session.ID && !session.IsAdmin {
		return apperrors.NewPermissionError("update", "dashboard")
	}
	if d.Visibility == constants.VisibilityAdmin && !session.IsAdmin {
		return apperrors.NewPermissionError("update", "admin dashboard")
	}

	d.CustomerID = session.CustomerID
	return s.dashboards.Update(ctx, d)
}

// Delete removes a dashboard. Widgets placed on it survive; only the
// layout goes away.
func (s *DashboardService) Delete(ctx context.Context, session *models.UserSession, id string) error {
	existing, err := s.Get(ctx, session, id)
	if err != nil {
		return err
	}
	if existing.CreatedByID != session.ID && !session.IsAdmin {
		return apperrors.NewPermissionError("delete", "dashboard")
	}
	return s.dashboards.Delete(ctx, session.CustomerID, id)
}

// AttachWidget places an existing widget into a dashboard section.
func (s *DashboardService) AttachWidget(ctx context.Context, session *models.UserSession, dashboardID, sectionID, widgetID string) error {
	d, err := s.Get(ctx, session, dashboardID)
	if err != nil {
		return err
	}

	widget, err := s.widgets.Get(ctx, session.CustomerID, widgetID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if widget == nil {
		return apperrors.NewNotFoundError("widget", widgetID)
	}

	var section *models.DashboardSection
	for i := range d.Sections {
		if d.Sections[i].ID == sectionID {
			section = &d.Sections[i]
			break
		}
	}
	if section == nil {
		return apperrors.NewNotFoundError("section", sectionID)
	}
	for _, id := range section.WidgetIDs {
		if id == widgetID {
			return apperrors.NewConflictError("widget placement", widgetID)
		}
	}

	section.WidgetIDs = append(section.WidgetIDs, widgetID)
	return s.dashboards.Update(ctx, d)
}

// DetachWidget removes a widget from every section it appears in.
func (s *DashboardService) DetachWidget(ctx context.Context, session *models.UserSession, dashboardID, widgetID string) error {
	d, err := s.Get(ctx, session, dashboardID)
	if err != nil {
		return err
	}

	removed := false
	for i := range d.Sections {
		ids := d.Sections[i].WidgetIDs[:0]
		for _, id := range d.Sections[i].WidgetIDs {
			if id == widgetID {
				removed = true
				continue
			}
			ids = append(ids, id)
		}
		d.Sections[i].WidgetIDs = ids
	}
	if !removed {
		return apperrors.NewNotFoundError("widget placement", widgetID)
	}
	return s.dashboards.Update(ctx, d)
}
