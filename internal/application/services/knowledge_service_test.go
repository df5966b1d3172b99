package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/freightlens/backend/pkg/errors"
)

// Upload validation rejects before any persistence or network work, so a
// service with nil repositories exercises the full rejection path.
func newValidationOnlyKnowledgeService() *KnowledgeService {
	return NewKnowledgeService(nil, nil)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc := newValidationOnlyKnowledgeService()

	_, err := svc.UploadDocument(context.Background(), adminSession(), "report.exe", []byte("MZ"))
	require.Error(t, err)
	var vErr *apperrors.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := newValidationOnlyKnowledgeService()

	big := []byte(strings.Repeat("a", (10<<20)+1))
	_, err := svc.UploadDocument(context.Background(), adminSession(), "big.txt", big)
	require.Error(t, err)
	var vErr *apperrors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc := newValidationOnlyKnowledgeService()

	_, err := svc.UploadDocument(context.Background(), adminSession(), "notes.txt", nil)
	require.Error(t, err)
	var vErr *apperrors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestUploadRequiresAdmin(t *testing.T) {
	svc := newValidationOnlyKnowledgeService()

	_, err := svc.UploadDocument(context.Background(), standardSession(), "notes.txt", []byte("freight terms"))
	require.Error(t, err)
	assert.True(t, apperrors.IsPermission(err))
}

func TestGlossaryWritesRequireAdmin(t *testing.T) {
	svc := newValidationOnlyKnowledgeService()
	session := standardSession()

	_, err := svc.CreateTerm(context.Background(), session, nil)
	assert.True(t, apperrors.IsPermission(err))

	err = svc.DeleteTerm(context.Background(), session, "term-1")
	assert.True(t, apperrors.IsPermission(err))
}
