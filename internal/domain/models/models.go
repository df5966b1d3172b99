// Package models holds the domain records shared between services,
// repositories, and handlers.
package models

import (
	"time"

	"github.com/freightlens/backend/pkg/chartspec"
)

// UserSession is the authenticated caller identity threaded through every
// service call. Privilege and customer scoping are never read from ambient
// state; callers must pass the session explicitly.
type UserSession struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfileID  string `json:"profile_id"`
	CustomerID string `json:"customer_id"`
	IsAdmin    bool   `json:"is_admin"`
}

// User is a stored backend user.
type User struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	ProfileID  string     `json:"profile_id"`
	CustomerID string     `json:"customer_id"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// WidgetConfiguration is the record a user edits in the builder: chart type,
// axes, aggregation, filters, and the currently fetched data. It is owned by
// a single UI session until published; Data is fully replaced on every
// execution.
type WidgetConfiguration struct {
	ID           string                  `json:"id,omitempty"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description,omitempty"`
	ChartType    chartspec.ChartType     `json:"chartType"`
	GroupField   string                  `json:"groupField"`
	MeasureField string                  `json:"measureField"`
	Aggregation  chartspec.Aggregation   `json:"aggregation"`
	Filters      []chartspec.ValueFilter `json:"filters"`
	Data         []chartspec.DataPoint   `json:"data,omitempty"`
	TotalRecords int                     `json:"totalRecords"`
	Limit        int                     `json:"limit,omitempty"`
}

// Widget is a published widget configuration plus its publish metadata.
type Widget struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Config      WidgetConfiguration `json:"config"`
	Visibility  string              `json:"visibility"` // constants.VisibilityShared / VisibilityAdmin
	DashboardID string              `json:"dashboard_id,omitempty"`
	Section     string              `json:"section,omitempty"`
	CreatedByID string              `json:"created_by_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// SuggestionResult wraps a chart suggestion with its provenance so the UI
// can visually distinguish backend-AI suggestions from local fallbacks.
type SuggestionResult struct {
	Success     bool                 `json:"success"`
	Origin      string               `json:"origin"` // "ai" or "local"
	Suggestion  chartspec.Suggestion `json:"suggestion"`
	Summary     string               `json:"summary,omitempty"`
	Reasoning   []string             `json:"reasoning,omitempty"`
	Warning     string               `json:"warning,omitempty"`
	Limitations []string             `json:"limitations,omitempty"`
}

// DashboardSection is a named ordered slot list on a dashboard.
type DashboardSection struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	WidgetIDs []string `json:"widget_ids"`
}

// Dashboard groups published widgets into sections under a layout.
type Dashboard struct {
	ID          string             `json:"id"`
	CustomerID  string             `json:"customer_id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Layout      string             `json:"layout"`
	Sections    []DashboardSection `json:"sections"`
	Visibility  string             `json:"visibility"`
	CreatedByID string             `json:"created_by_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Conversation is one Investigator chat thread.
type Conversation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CustomerID string    `json:"customer_id"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ConversationTurn is a single question/answer exchange within a
// conversation. Chart holds the suggestion rendered alongside the answer,
// when the Investigator produced one.
type ConversationTurn struct {
	ID             string                `json:"id"`
	ConversationID string                `json:"conversation_id"`
	Role           string                `json:"role"` // "user" or "assistant"
	Content        string                `json:"content"`
	Chart          *WidgetConfiguration  `json:"chart,omitempty"`
	Points         []chartspec.DataPoint `json:"points,omitempty"`
	Fallback       bool                  `json:"fallback"`
	CreatedAt      time.Time             `json:"created_at"`
}

// GlossaryTerm is one knowledge-base glossary entry. Terms feed context to
// the AI backend's retrieval step.
type GlossaryTerm struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Category   string    `json:"category,omitempty"`
	Synonyms   []string  `json:"synonyms,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Document is an ingested knowledge-base document. Status moves from
// pending to embedded (or failed) when the scheduler dispatches the
// extracted text to the remote embed function.
type Document struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Filename   string    `json:"filename"`
	Format     string    `json:"format"`
	SizeBytes  int64     `json:"size_bytes"`
	WordCount  int       `json:"word_count"`
	Text       string    `json:"-"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
