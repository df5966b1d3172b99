package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freightlens/backend/internal/domain/models"
	"github.com/freightlens/backend/pkg/constants"
)

// ConversationRepository handles database operations for Investigator chats
type ConversationRepository struct {
	db *sql.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Insert persists a new conversation thread.
func (r *ConversationRepository) Insert(ctx context.Context, c *models.Conversation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, customer_id, title) VALUES (?, ?, ?, ?)`,
		constants.TableConversation)
	_, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.CustomerID, c.Title)
	return err
}

// Get retrieves a conversation scoped to its owner. Returns nil without
// error when missing.
func (r *ConversationRepository) Get(ctx context.Context, userID, id string) (*models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, customer_id, title, created_date, last_modified_date
		FROM %s WHERE user_id = ? AND id = ? LIMIT 1`,
		constants.TableConversation)

	var c models.Conversation
	var createdRaw, modifiedRaw interface{}
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&c.ID, &c.UserID, &c.CustomerID, &c.Title, &createdRaw, &modifiedRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CreatedAt = parseTime(createdRaw)
	c.UpdatedAt = parseTime(modifiedRaw)
	return &c, nil
}

// List returns a user's conversations, most recently active first.
func (r *ConversationRepository) List(ctx context.Context, userID string) ([]*models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, customer_id, title, created_date, last_modified_date
		FROM %s WHERE user_id = ? ORDER BY last_modified_date DESC`,
		constants.TableConversation)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		var createdRaw, modifiedRaw interface{}
		if err := rows.Scan(&c.ID, &c.UserID, &c.CustomerID, &c.Title, &createdRaw, &modifiedRaw); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdRaw)
		c.UpdatedAt = parseTime(modifiedRaw)
		convs = append(convs, &c)
	}
	return convs, rows.Err()
}

// Touch bumps a conversation's activity timestamp.
func (r *ConversationRepository) Touch(ctx context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET last_modified_date = NOW() WHERE id = ?", constants.TableConversation)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Delete removes a conversation and its turns.
func (r *ConversationRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE conversation_id = ?", constants.TableConversationTurn), id); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND id = ?", constants.TableConversation)
	_, err := r.db.ExecContext(ctx, query, userID, id)
	return err
}

// InsertTurn appends a turn to a conversation.
func (r *ConversationRepository) InsertTurn(ctx context.Context, t *models.ConversationTurn) error {
	var chartJSON, pointsJSON interface{}
	if t.Chart != nil {
		chartJSON = marshalOrDefault(t.Chart, "null")
	}
	if t.Points != nil {
		pointsJSON = marshalOrDefault(t.Points, "null")
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, conversation_id, role, content, chart, points, is_fallback)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		constants.TableConversationTurn)

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.ConversationID, t.Role, t.Content, chartJSON, pointsJSON, t.Fallback)
	return err
}

// ListTurns returns a conversation's turns in chronological order.
func (r *ConversationRepository) ListTurns(ctx context.Context, conversationID string) ([]*models.ConversationTurn, error) {
	query := fmt.Sprintf(`
		SELECT id, conversation_id, role, content, chart, points, is_fallback, created_date
		FROM %s WHERE conversation_id = ? ORDER BY created_date`,
		constants.TableConversationTurn)

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		var chartJSON, pointsJSON sql.NullString
		var createdRaw interface{}
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Role, &t.Content,
			&chartJSON, &pointsJSON, &t.Fallback, &createdRaw); err != nil {
			return nil, err
		}
		if chartJSON.Valid && chartJSON.String != "" {
			if err := json.Unmarshal([]byte(chartJSON.String), &t.Chart); err != nil {
				return nil, fmt.Errorf("corrupt chart on turn %s: %w", t.ID, err)
			}
		}
		if pointsJSON.Valid && pointsJSON.String != "" {
			if err := json.Unmarshal([]byte(pointsJSON.String), &t.Points); err != nil {
				return nil, fmt.Errorf("corrupt points on turn %s: %w", t.ID, err)
			}
		}
		t.CreatedAt = parseTime(createdRaw)
		turns = append(turns, &t)
	}
	return turns, rows.Err()
}

// ClearTurns removes all turns from a conversation, keeping the thread.
func (r *ConversationRepository) ClearTurns(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE conversation_id = ?", constants.TableConversationTurn)
	_, err := r.db.ExecContext(ctx, query, conversationID)
	return err
}
