package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/freightlens/backend/internal/infrastructure/insight"
	"github.com/freightlens/backend/internal/infrastructure/persistence"
	"github.com/freightlens/backend/pkg/constants"
)

// embedBatchSize bounds one dispatch pass so a large backlog cannot hold
// the job slot for minutes.
const embedBatchSize = 20

// SchedulerService runs the background jobs: expired-session purging and
// shipping pending documents to the embedding backend.
type SchedulerService struct {
	sessions  *persistence.SessionRepository
	documents *persistence.DocumentRepository
	client    insight.Client
	cron      *cron.Cron
}

// NewSchedulerService creates a new SchedulerService
func NewSchedulerService(sessions *persistence.SessionRepository, documents *persistence.DocumentRepository, client insight.Client) *SchedulerService {
	return &SchedulerService{
		sessions:  sessions,
		documents: documents,
		client:    client,
		cron:      cron.New(),
	}
}

// Start registers and launches the background jobs.
func (s *SchedulerService) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.purgeSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 1m", s.dispatchPendingDocuments); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("⏰ Scheduler started")
	return nil
}

// Stop halts job scheduling and waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("⏰ Scheduler stopped")
}

func (s *SchedulerService) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Session purge failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("🧹 Purged %d expired sessions", removed)
	}
}

// dispatchPendingDocuments pushes pending documents to the embedding
// backend, oldest first. Upstream failures mark the document failed; it is
// not retried automatically.
func (s *SchedulerService) dispatchPendingDocuments() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pending, err := s.documents.ListPending(ctx, embedBatchSize)
	if err != nil {
		log.Printf("⚠️ Failed to list pending documents: %v", err)
		return
	}

	for _, doc := range pending {
		text, err := s.documents.GetText(ctx, doc.ID)
		if err != nil {
			log.Printf("⚠️ Failed to load text for document %s: %v", doc.ID, err)
			continue
		}

		err = s.client.EmbedDocument(ctx, insight.EmbedRequest{
			DocumentID: doc.ID,
			CustomerID: doc.CustomerID,
			Filename:   doc.Filename,
			Text:       text,
		})
		if err != nil {
			log.Printf("⚠️ Embedding failed for document %s: %v", doc.ID, err)
			if setErr := s.documents.SetStatus(ctx, doc.ID, constants.DocumentFailed, err.Error()); setErr != nil {
				log.Printf("⚠️ Failed to mark document %s failed: %v", doc.ID, setErr)
			}
			continue
		}

		if err := s.documents.SetStatus(ctx, doc.ID, constants.DocumentEmbedded, ""); err != nil {
			log.Printf("⚠️ Failed to mark document %s embedded: %v", doc.ID, err)
			continue
		}
		log.Printf("📄 Document %s embedded", doc.ID)
	}
}
