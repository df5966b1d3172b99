package rest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freightlens/backend/internal/application/services"
	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
	apperrors "github.com/freightlens/backend/pkg/errors"
)

type KnowledgeHandler struct {
	svcMgr *services.ServiceManager
}

func NewKnowledgeHandler(svcMgr *services.ServiceManager) *KnowledgeHandler {
	return &KnowledgeHandler{svcMgr: svcMgr}
}

// ListTerms handles GET /api/knowledge/terms
func (h *KnowledgeHandler) ListTerms(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "terms", func() (interface{}, error) {
		return h.svcMgr.Knowledge.ListTerms(c.Request.Context(), session)
	})
}

// CreateTerm handles POST /api/knowledge/terms
func (h *KnowledgeHandler) CreateTerm(c *gin.Context) {
	session := GetUserFromContext(c)

	var term models.GlossaryTerm
	if !BindJSON(c, &term) {
		return
	}

	created, err := h.svcMgr.Knowledge.CreateTerm(c.Request.Context(), session, &term)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{constants.FieldMessage: "Term created", "term": created})
}

// UpdateTerm handles PUT /api/knowledge/terms/:id
func (h *KnowledgeHandler) UpdateTerm(c *gin.Context) {
	session := GetUserFromContext(c)

	var term models.GlossaryTerm
	if !BindJSON(c, &term) {
		return
	}
	term.ID = c.Param("id")

	if err := h.svcMgr.Knowledge.UpdateTerm(c.Request.Context(), session, &term); err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.FieldMessage: "Term updated", "term": term})
}

// DeleteTerm handles DELETE /api/knowledge/terms/:id
func (h *KnowledgeHandler) DeleteTerm(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Term deleted", func() error {
		return h.svcMgr.Knowledge.DeleteTerm(c.Request.Context(), session, c.Param("id"))
	})
}

// ListDocuments handles GET /api/knowledge/documents
func (h *KnowledgeHandler) ListDocuments(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "documents", func() (interface{}, error) {
		return h.svcMgr.Knowledge.ListDocuments(c.Request.Context(), session)
	})
}

// GetDocument handles GET /api/knowledge/documents/:id
func (h *KnowledgeHandler) GetDocument(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleGetEnvelope(c, "document", func() (interface{}, error) {
		return h.svcMgr.Knowledge.GetDocument(c.Request.Context(), session, c.Param("id"))
	})
}

// UploadDocument handles POST /api/knowledge/documents as multipart form
// data with a single "file" part.
func (h *KnowledgeHandler) UploadDocument(c *gin.Context) {
	session := GetUserFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondAppError(c, apperrors.NewValidationError("file", "multipart file field is required"))
		return
	}
	if fileHeader.Size > constants.MaxDocumentBytes {
		RespondAppError(c, apperrors.NewValidationError("file", "file exceeds the upload limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondAppError(c, apperrors.NewInternalError("failed to open upload", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxDocumentBytes+1))
	if err != nil {
		RespondAppError(c, apperrors.NewInternalError("failed to read upload", err))
		return
	}

	doc, err := h.svcMgr.Knowledge.UploadDocument(c.Request.Context(), session, fileHeader.Filename, data)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{constants.FieldMessage: "Document ingested", "document": doc})
}

// DeleteDocument handles DELETE /api/knowledge/documents/:id
func (h *KnowledgeHandler) DeleteDocument(c *gin.Context) {
	session := GetUserFromContext(c)
	HandleDeleteEnvelope(c, "Document deleted", func() error {
		return h.svcMgr.Knowledge.DeleteDocument(c.Request.Context(), session, c.Param("id"))
	})
}
