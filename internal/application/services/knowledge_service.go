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
	"github.com/freightlens/backend/pkg/extract"
	"github.com/freightlens/backend/pkg/utils"
)

// KnowledgeService manages the glossary and document ingestion feeding the
// AI backend's retrieval context.
type KnowledgeService struct {
	glossary  *persistence.GlossaryRepository
	documents *persistence.DocumentRepository
}

// NewKnowledgeService creates a new KnowledgeService
func NewKnowledgeService(glossary *persistence.GlossaryRepository, documents *persistence.DocumentRepository) *KnowledgeService {
	return &KnowledgeService{glossary: glossary, documents: documents}
}

// CreateTerm adds a glossary entry. Writes are admin only.
func (s *KnowledgeService) CreateTerm(ctx context.Context, session *models.UserSession, t *models.GlossaryTerm) (*models.GlossaryTerm, error) {
	if !session.IsAdmin {
		return nil, apperrors.NewPermissionError("create", "glossary term")
	}
	if strings.TrimSpace(t.Term) == "" {
		return nil, apperrors.NewValidationError("term", "term is required")
	}
	if strings.TrimSpace(t.Definition) == "" {
		return nil, apperrors.NewValidationError("definition", "definition is required")
	}

	t.ID = utils.GenerateID()
	t.CustomerID = session.CustomerID
	if err := s.glossary.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create glossary term: %w", err)
	}
	return t, nil
}

// UpdateTerm edits a glossary entry. Admin only.
func (s *KnowledgeService) UpdateTerm(ctx context.Context, session *models.UserSession, t *models.GlossaryTerm) error {
	if !session.IsAdmin {
		return apperrors.NewPermissionError("update", "glossary term")
	}
	existing, err := s.glossary.Get(ctx, session.CustomerID, t.ID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if existing == nil {
		return apperrors.NewNotFoundError("glossary term", t.ID)
	}

	t.CustomerID = session.CustomerID
	return s.glossary.Update(ctx, t)
}

// DeleteTerm removes a glossary entry. Admin only.
func (s *KnowledgeService) DeleteTerm(ctx context.Context, session *models.UserSession, id string) error {
	if !session.IsAdmin {
		return apperrors.NewPermissionError("delete", "glossary term")
	}
	existing, err := s.glossary.Get(ctx, session.CustomerID, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if existing == nil {
		return apperrors.NewNotFoundError("glossary term", id)
	}
	return s.glossary.Delete(ctx, session.CustomerID, id)
}

// ListTerms returns the customer's glossary, readable by every user.
func (s *KnowledgeService) ListTerms(ctx context.Context, session *models.UserSession) ([]*models.GlossaryTerm, error) {
	return s.glossary.List(ctx, session.CustomerID)
}

// UploadDocument validates, extracts, and stores a knowledge document.
// Rejections for type and size happen before any extraction work. The
// stored document starts in the pending bucket; the scheduler ships it to
// the embedding backend.
func (s *KnowledgeService) UploadDocument(ctx context.Context, session *models.UserSession, filename string, data []byte) (*models.Document, error) {
	if !session.IsAdmin {
		return nil, apperrors.NewPermissionError("upload", "document")
	}
	if !extract.IsSupported(filename) {
		return nil, apperrors.NewValidationError("file",
			fmt.Sprintf("unsupported file type; accepted: %s", strings.Join(extract.SupportedExtensions(), ", ")))
	}
	if int64(len(data)) > constants.MaxDocumentBytes {
		return nil, apperrors.NewValidationError("file",
			fmt.Sprintf("file exceeds the %d MB limit", constants.MaxDocumentBytes>>20))
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("file", "file is empty")
	}

	result, err := extract.FromFile(filename, data)
	if err != nil {
		return nil, apperrors.NewValidationError("file", fmt.Sprintf("could not extract text: %v", err))
	}
	if result.WordCount == 0 {
		return nil, apperrors.NewValidationError("file", "no readable text found in file")
	}

	doc := &models.Document{
		ID:         utils.GenerateID(),
		CustomerID: session.CustomerID,
		Filename:   filename,
		Format:     result.Format,
		SizeBytes:  int64(len(data)),
		WordCount:  result.WordCount,
		Text:       result.Text,
		Status:     constants.DocumentPending,
		UploadedBy: session.ID,
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	log.Printf("📄 Document %q ingested (%d words) by %s", filename, result.WordCount, session.Email)
	return doc, nil
}

// GetDocument returns document metadata without the extracted text.
func (s *KnowledgeService) GetDocument(ctx context.Context, session *models.UserSession, id string) (*models.Document, error) {
	doc, err := s.documents.Get(ctx, session.CustomerID, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if doc == nil {
		return nil, apperrors.NewNotFoundError("document", id)
	}
	return doc, nil
}

// ListDocuments returns the customer's documents.
func (s *KnowledgeService) ListDocuments(ctx context.Context, session *models.UserSession) ([]*models.Document, error) {
	return s.documents.List(ctx, session.CustomerID)
}

// DeleteDocument removes a document. Admin only.
func (s *KnowledgeService) DeleteDocument(ctx context.Context, session *models.UserSession, id string) error {
	if !session.IsAdmin {
		return apperrors.NewPermissionError("delete", "document")
	}
	existing, err := s.documents.Get(ctx, session.CustomerID, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if existing == nil {
		return apperrors.NewNotFoundError("document", id)
	}
	return s.documents.Delete(ctx, session.CustomerID, id)
}
