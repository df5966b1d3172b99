package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/internal/infrastructure/insight"
	"github.com/freightlens/backend/internal/infrastructure/persistence"
	"github.com/freightlens/backend/pkg/chartspec"
	"github.com/freightlens/backend/pkg/constants"
	apperrors "github.com/freightlens/backend/pkg/errors"
	"github.com/freightlens/backend/pkg/rowfilter"
	"github.com/freightlens/backend/pkg/utils"
)

// WidgetService drives the visual widget builder: prompt classification,
// data execution, and publishing.
type WidgetService struct {
	widgets *persistence.WidgetRepository
	client  insight.Client
	filters *rowfilter.Engine

	// One in-flight suggestion per session key. A newer request cancels
	// the prior one; the stale caller sees context.Canceled.
	mu       sync.Mutex
	inFlight map[string]*flight
}

type flight struct {
	cancel context.CancelFunc
}

// NewWidgetService creates a new WidgetService
func NewWidgetService(widgets *persistence.WidgetRepository, client insight.Client, filters *rowfilter.Engine) *WidgetService {
	return &WidgetService{
		widgets:  widgets,
		client:   client,
		filters:  filters,
		inFlight: make(map[string]*flight),
	}
}

// Catalog returns the shipment fields the caller may build on. Restricted
// financial fields are dropped for non-privileged sessions.
func (s *WidgetService) Catalog(session *models.UserSession) []chartspec.FieldDescriptor {
	return chartspec.ListFields(session.IsAdmin)
}

// Suggest turns a natural-language prompt into a chart suggestion. The
// remote classifier is tried first; any failure falls back to the local
// keyword heuristics, flagged so the UI can show reduced confidence.
func (s *WidgetService) Suggest(ctx context.Context, session *models.UserSession, prompt string) (*models.SuggestionResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperrors.NewValidationError("prompt", "prompt must not be empty")
	}

	ctx, release := s.acquire(ctx, suggestKey(session))
	defer release()

	catalog := chartspec.ListFields(session.IsAdmin)

	resp, err := s.client.Suggest(ctx, insight.SuggestRequest{
		Prompt:     prompt,
		CustomerID: session.CustomerID,
		Fields:     catalog,
	})
	if err == nil {
		if valid := s.validateSuggestion(catalog, &resp.Suggestion); valid {
			return &models.SuggestionResult{
				Success:     true,
				Origin:      "ai",
				Suggestion:  resp.Suggestion,
				Summary:     resp.Summary,
				Reasoning:   resp.Reasoning,
				Limitations: resp.Limitations,
			}, nil
		}
		err = fmt.Errorf("classifier suggested fields outside the caller's catalog")
	}
	if ctx.Err() != nil {
		// A newer request took over; do not answer with stale data.
		return nil, ctx.Err()
	}

	log.Printf("⚠️ Remote classification failed, using local heuristics: %v", err)
	suggestion := chartspec.Classify(prompt, catalog)
	return &models.SuggestionResult{
		Success:    true,
		Origin:     "local",
		Suggestion: suggestion,
		Warning:    "AI assistance unavailable; suggestion built from keyword matching",
	}, nil
}

// Execute fetches and normalizes the data for a widget configuration. On
// success the configuration's data points are fully replaced; on any error
// the prior state is left untouched.
func (s *WidgetService) Execute(ctx context.Context, session *models.UserSession, config *models.WidgetConfiguration) (*models.WidgetConfiguration, error) {
	catalog := chartspec.ListFields(session.IsAdmin)
	if err := validateConfig(catalog, config); err != nil {
		return nil, err
	}

	matcher, err := s.filters.Compile(config.Filters)
	if err != nil {
		return nil, apperrors.NewValidationError("filters", err.Error())
	}

	limit := config.Limit
	if limit <= 0 {
		limit = constants.DefaultQueryLimit
	}

	resp, err := s.client.Aggregate(ctx, insight.AggregateRequest{
		CustomerID:   session.CustomerID,
		GroupField:   config.GroupField,
		MeasureField: config.MeasureField,
		Aggregation:  config.Aggregation,
		Filters:      config.Filters,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}

	rows := matcher.Apply(resp.Rows)
	points := chartspec.Normalize(rows, config.GroupField, string(config.Aggregation))

	result := *config
	result.Data = points
	result.TotalRecords = resp.TotalRecords
	result.Limit = limit
	if result.ChartType == "" {
		result.ChartType = chartspec.Recommend(points, config.GroupField)
	}
	return &result, nil
}

// PublishRequest carries the publish destination alongside the
// configuration.
type PublishRequest struct {
	Config      models.WidgetConfiguration `json:"config"`
	Visibility  string                     `json:"visibility"`
	DashboardID string                     `json:"dashboard_id,omitempty"`
	Section     string                     `json:"section,omitempty"`
}

// Publish persists a widget configuration into the shared or admin bucket.
func (s *WidgetService) Publish(ctx context.Context, session *models.UserSession, req PublishRequest) (*models.Widget, error) {
	if strings.TrimSpace(req.Config.Name) == "" {
		return nil, apperrors.NewValidationError("name", "widget name is required")
	}
	catalog := chartspec.ListFields(session.IsAdmin)
	if err := validateConfig(catalog, &req.Config); err != nil {
		return nil, err
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = constants.VisibilityShared
	}
	if visibility != constants.VisibilityShared && visibility != constants.VisibilityAdmin {
		return nil, apperrors.NewValidationError("visibility", "must be shared or admin")
	}
	if visibility == constants.VisibilityAdmin && !session.IsAdmin {
		return nil, apperrors.NewPermissionError("publish", "admin widget")
	}

	widget := &models.Widget{
		ID:          utils.GenerateID(),
		CustomerID:  session.CustomerID,
		Name:        req.Config.Name,
		Description: req.Config.Description,
		Config:      req.Config,
		Visibility:  visibility,
		DashboardID: req.DashboardID,
		Section:     req.Section,
		CreatedByID: session.ID,
	}
	if err := s.widgets.Insert(ctx, widget); err != nil {
		return nil, fmt.Errorf("failed to publish widget: %w", err)
	}

	log.Printf("📊 Widget %q published by %s (%s)", widget.Name, session.Email, visibility)
	return widget, nil
}

// Get returns one published widget. Admin-bucket widgets are invisible to
// non-privileged callers.
func (s *WidgetService) Get(ctx context.Context, session *models.UserSession, id string) (*models.Widget, error) {
	widget, err := s.widgets.Get(ctx, session.CustomerID, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if widget == nil {
		return nil, apperrors.NewNotFoundError("widget", id)
	}
	if widget.Visibility == constants.VisibilityAdmin && !session.IsAdmin {
		return nil, apperrors.NewNotFoundError("widget", id)
	}
	return widget, nil
}

// List returns the caller's visible widgets.
func (s *WidgetService) List(ctx context.Context, session *models.UserSession) ([]*models.Widget, error) {
	return s.widgets.List(ctx, session.CustomerID, session.IsAdmin)
}

// Update replaces a published widget's configuration and metadata.
func (s *WidgetService) Update(ctx context.Context, session *models.UserSession, widget *models.Widget) error {
	existing, err := s.Get(ctx, session, widget.ID)
	if err != nil {
		return err
	}
	if existing.CreatedByID != session.ID && !session.IsAdmin {
		return apperrors.NewPermissionError("update", "widget")
	}
	catalog := chartspec.ListFields(session.IsAdmin)
	if err := validateConfig(catalog, &widget.Config); err != nil {
		return err
	}
	if widget.Visibility == constants.VisibilityAdmin && !session.IsAdmin {
		return apperrors.NewPermissionError("update", "admin widget")
	}

	widget.CustomerID = session.CustomerID
	return s.widgets.Update(ctx, widget)
}

// Delete removes a published widget.
func (s *WidgetService) Delete(ctx context.Context, session *models.UserSession, id string) error {
	existing, err := s.Get(ctx, session, id)
	if err != nil {
		return err
	}
	if existing.CreatedByID != session.ID && !session.IsAdmin {
		return apperrors.NewPermissionError("delete", "widget")
	}
	return s.widgets.Delete(ctx, session.CustomerID, id)
}

// acquire registers a cancellable context under key, cancelling whatever
// was in flight for that key. The returned release drops the registration
// when this request is still the current one.
func (s *WidgetService) acquire(ctx context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	f := &flight{cancel: cancel}

	s.mu.Lock()
	if prior, ok := s.inFlight[key]; ok {
		prior.cancel()
	}
	s.inFlight[key] = f
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if s.inFlight[key] == f {
			delete(s.inFlight, key)
		}
		s.mu.Unlock()
		cancel()
	}
}

func suggestKey(session *models.UserSession) string {
	return "suggest:" + session.ID
}

// validateSuggestion checks a remote suggestion references only fields in
// the caller's catalog.
func (s *WidgetService) validateSuggestion(catalog []chartspec.FieldDescriptor, sg *chartspec.Suggestion) bool {
	if sg.GroupField != "" && !chartspec.HasField(catalog, sg.GroupField) {
		return false
	}
	if sg.MeasureField != "" && !chartspec.HasField(catalog, sg.MeasureField) {
		return false
	}
	for _, f := range sg.Filters {
		if !chartspec.HasField(catalog, f.Field) {
			return false
		}
	}
	return true
}

// validateConfig rejects configurations referencing restricted or unknown
// fields before any remote call is made.
func validateConfig(catalog []chartspec.FieldDescriptor, config *models.WidgetConfiguration) error {
	if config.GroupField == "" {
		return apperrors.NewValidationError("groupField", "group field is required")
	}
	if !chartspec.HasField(catalog, config.GroupField) {
		return apperrors.NewPermissionError("query", config.GroupField)
	}
	if config.MeasureField != "" && !chartspec.HasField(catalog, config.MeasureField) {
		return apperrors.NewPermissionError("query", config.MeasureField)
	}
	for _, f := range config.Filters {
		if !chartspec.HasField(catalog, f.Field) {
			return apperrors.NewPermissionError("filter", f.Field)
		}
	}
	switch config.Aggregation {
	case "", chartspec.AggSum, chartspec.AggAvg, chartspec.AggCount, chartspec.AggMin, chartspec.AggMax:
	default:
		return apperrors.NewValidationError("aggregation", fmt.Sprintf("unknown aggregation %q", config.Aggregation))
	}
	if config.Aggregation == "" {
		config.Aggregation = chartspec.DefaultAggregation
	}
	return nil
}
