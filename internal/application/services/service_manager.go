// Package services holds the application layer: domain logic between the
// REST handlers and the persistence/insight infrastructure.
package services

import (
	"github.com/freightlens/backend/internal/infrastructure/database"
	"github.com/freightlens/backend/internal/infrastructure/insight"
	"github.com/freightlens/backend/internal/infrastructure/persistence"
	"github.com/freightlens/backend/pkg/rowfilter"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	Auth         *AuthService
	Widgets      *WidgetService
	Dashboards   *DashboardService
	Investigator *InvestigatorService
	Knowledge    *KnowledgeService
	Scheduler    *SchedulerService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection, client insight.Client) *ServiceManager {
	sm := &ServiceManager{db: db}

	users := persistence.NewUserRepository(db.DB())
	sessions := persistence.NewSessionRepository(db.DB())
	widgets := persistence.NewWidgetRepository(db.DB())
	dashboards := persistence.NewDashboardRepository(db.DB())
	conversations := persistence.NewConversationRepository(db.DB())
	glossary := persistence.NewGlossaryRepository(db.DB())
	documents := persistence.NewDocumentRepository(db.DB())

	filters := rowfilter.NewEngine()

	sm.Auth = NewAuthService(users, sessions)
	sm.Widgets = NewWidgetService(widgets, client, filters)
	sm.Dashboards = NewDashboardService(dashboards, widgets)
	sm.Investigator = NewInvestigatorService(conversations, client, sm.Widgets)
	sm.Knowledge = NewKnowledgeService(glossary, documents)
	sm.Scheduler = NewSchedulerService(sessions, documents, client)

	return sm
}
