package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/internal/infrastructure/insight"
	"github.com/freightlens/backend/internal/infrastructure/persistence"
	"github.com/freightlens/backend/pkg/chartspec"
	apperrors "github.com/freightlens/backend/pkg/errors"
	"github.com/freightlens/backend/pkg/utils"
)

// maxHistoryTurns caps the conversational context sent upstream.
const maxHistoryTurns = 10

// InvestigatorService runs the ad-hoc analysis chat. Reasoning happens
// remotely; this service owns conversation persistence and the degraded
// local answer when the backend is unreachable.
type InvestigatorService struct {
	conversations *persistence.ConversationRepository
	client        insight.Client
	widgets       *WidgetService
}

// NewInvestigatorService creates a new InvestigatorService
func NewInvestigatorService(conversations *persistence.ConversationRepository, client insight.Client, widgets *WidgetService) *InvestigatorService {
	return &InvestigatorService{
		conversations: conversations,
		client:        client,
		widgets:       widgets,
	}
}

// AskResult is one answered exchange.
type AskResult struct {
	ConversationID string                  `json:"conversation_id"`
	Turn           *models.ConversationTurn `json:"turn"`
	Origin         string                  `json:"origin"` // "ai" or "local"
	Reasoning      []string                `json:"reasoning,omitempty"`
	Warning        string                  `json:"warning,omitempty"`
}

// Ask answers a question inside a conversation, creating the conversation
// when conversationID is empty. A newer question on the same conversation
// cancels the one still in flight.
func (s *InvestigatorService) Ask(ctx context.Context, session *models.UserSession, conversationID, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.NewValidationError("question", "question must not be empty")
	}

	conv, err := s.ensureConversation(ctx, session, conversationID, question)
	if err != nil {
		return nil, err
	}

	ctx, release := s.widgets.acquire(ctx, "investigate:"+conv.ID)
	defer release()

	history, err := s.recentHistory(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	userTurn := &models.ConversationTurn{
		ID:             utils.GenerateID(),
		ConversationID: conv.ID,
		Role:           "user",
		Content:        question,
	}
	if err := s.conversations.InsertTurn(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("failed to record question: %w", err)
	}

	answer, origin, err := s.answer(ctx, session, question, history)
	if err != nil {
		return nil, err
	}

	assistantTurn := &models.ConversationTurn{
		ID:             utils.GenerateID(),
		ConversationID: conv.ID,
		Role:           "assistant",
		Content:        answer.Content,
		Chart:          answer.Chart,
		Points:         answer.Points,
		Fallback:       origin == "local",
	}
	if err := s.conversations.InsertTurn(ctx, assistantTurn); err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}
	if err := s.conversations.Touch(ctx, conv.ID); err != nil {
		log.Printf("⚠️ Failed to touch conversation %s: %v", conv.ID, err)
	}

	return &AskResult{
		ConversationID: conv.ID,
		Turn:           assistantTurn,
		Origin:         origin,
		Reasoning:      answer.Reasoning,
		Warning:        answer.Warning,
	}, nil
}

type investigatorAnswer struct {
	Content   string
	Chart     *models.WidgetConfiguration
	Points    []chartspec.DataPoint
	Reasoning []string
	Warning   string
}

// answer asks the remote Investigator, degrading to a keyword-classified
// aggregation through the normal widget execution path on failure.
func (s *InvestigatorService) answer(ctx context.Context, session *models.UserSession, question string, history []string) (*investigatorAnswer, string, error) {
	resp, err := s.client.Investigate(ctx, insight.InvestigateRequest{
		Question:   question,
		CustomerID: session.CustomerID,
		UserID:     session.ID,
		History:    history,
	})
	if err == nil {
		ans := &investigatorAnswer{
			Content:   resp.Answer,
			Reasoning: resp.Reasoning,
			Warning:   resp.Warning,
		}
		if resp.Chart != nil {
			config := configFromSuggestion(resp.Chart)
			ans.Chart = config
			ans.Points = chartspec.Normalize(resp.Rows, resp.Chart.GroupField, string(resp.Chart.Aggregation))
		}
		return ans, "ai", nil
	}
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	log.Printf("⚠️ Investigator backend unavailable, building local answer: %v", err)

	catalog := chartspec.ListFields(session.IsAdmin)
	suggestion := chartspec.Classify(question, catalog)
	config := configFromSuggestion(&suggestion)

	executed, execErr := s.widgets.Execute(ctx, session, config)
	if execErr != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return &investigatorAnswer{
			Content: "The analysis service is unavailable and no data could be fetched for your question. Please try again shortly.",
			Warning: "degraded answer, no data",
		}, "local", nil
	}

	return &investigatorAnswer{
		Content: fmt.Sprintf("Showing %s of %s grouped by %s for your question.",
			executed.Aggregation, executed.MeasureField, executed.GroupField),
		Chart:   executed,
		Points:  executed.Data,
		Warning: "AI reasoning unavailable; answer built from keyword matching",
	}, "local", nil
}

// ListConversations returns the caller's conversation threads.
func (s *InvestigatorService) ListConversations(ctx context.Context, session *models.UserSession) ([]*models.Conversation, error) {
	return s.conversations.List(ctx, session.ID)
}

// GetConversation returns one thread with its full turn history.
func (s *InvestigatorService) GetConversation(ctx context.Context, session *models.UserSession, id string) (*models.Conversation, []*models.ConversationTurn, error) {
	conv, err := s.conversations.Get(ctx, session.ID, id)
	if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}
	if conv == nil {
		return nil, nil, apperrors.NewNotFoundError("conversation", id)
	}
	turns, err := s.conversations.ListTurns(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("database error: %w", err)
	}
	return conv, turns, nil
}

// ClearConversation drops a thread's turns, keeping the thread itself.
func (s *InvestigatorService) ClearConversation(ctx context.Context, session *models.UserSession, id string) error {
	conv, err := s.conversations.Get(ctx, session.ID, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if conv == nil {
		return apperrors.NewNotFoundError("conversation", id)
	}
	return s.conversations.ClearTurns(ctx, id)
}

// DeleteConversation removes a thread entirely.
func (s *InvestigatorService) DeleteConversation(ctx context.Context, session *models.UserSession, id string) error {
	conv, err := s.conversations.Get(ctx, session.ID, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if conv == nil {
		return apperrors.NewNotFoundError("conversation", id)
	}
	return s.conversations.Delete(ctx, session.ID, id)
}

func (s *InvestigatorService) ensureConversation(ctx context.Context, session *models.UserSession, id, question string) (*models.Conversation, error) {
	if id != "" {
		conv, err := s.conversations.Get(ctx, session.ID, id)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if conv == nil {
			return nil, apperrors.NewNotFoundError("conversation", id)
		}
		return conv, nil
	}

	conv := &models.Conversation{
		ID:         utils.GenerateID(),
		UserID:     session.ID,
		CustomerID: session.CustomerID,
		Title:      conversationTitle(question),
	}
	if err := s.conversations.Insert(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (s *InvestigatorService) recentHistory(ctx context.Context, conversationID string) ([]string, error) {
	turns, err := s.conversations.ListTurns(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	history := make([]string, 0, len(turns))
	for _, t := range turns {
		history = append(history, fmt.Sprintf("%s: %s", t.Role, t.Content))
	}
	return history, nil
}

func configFromSuggestion(sg *chartspec.Suggestion) *models.WidgetConfiguration {
	return &models.WidgetConfiguration{
		ChartType:    sg.ChartType,
		GroupField:   sg.GroupField,
		MeasureField: sg.MeasureField,
		Aggregation:  sg.Aggregation,
		Filters:      sg.Filters,
	}
}

func conversationTitle(question string) string {
	const maxTitle = 80
	if len(question) <= maxTitle {
		return question
	}
	return question[:maxTitle-1] + "…"
}
