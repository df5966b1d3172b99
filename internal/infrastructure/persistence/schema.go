package persistence

import (
	"database/sql"
	"fmt"

	"github.com/freightlens/backend/pkg/constants"
)

// schemaDDL creates the platform tables. The replicated shipment fact table
// is provisioned by the data pipeline, not here.
var schemaDDL = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255),
		profile_id VARCHAR(64) NOT NULL,
		customer_id VARCHAR(64) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_date DATETIME NULL,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_modified_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`, constants.TableUser),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		token TEXT NOT NULL,
		expires_at DATETIME NOT NULL,
		is_revoked BOOLEAN NOT NULL DEFAULT FALSE,
		last_activity DATETIME NOT NULL,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_session_user (user_id)
	)`, constants.TableSession),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		config JSON NOT NULL,
		visibility VARCHAR(16) NOT NULL DEFAULT 'shared',
		dashboard_id VARCHAR(36),
		section VARCHAR(64),
		created_by_id VARCHAR(36) NOT NULL,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_modified_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_widget_customer (customer_id, visibility)
	)`, constants.TableWidget),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		layout VARCHAR(32) NOT NULL DEFAULT 'two-column',
		sections JSON NOT NULL,
		visibility VARCHAR(16) NOT NULL DEFAULT 'shared',
		created_by_id VARCHAR(36) NOT NULL,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_modified_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_dashboard_customer (customer_id)
	)`, constants.TableDashboard),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		customer_id VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_modified_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_conversation_user (user_id)
	)`, constants.TableConversation),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		conversation_id VARCHAR(36) NOT NULL,
		role VARCHAR(16) NOT NULL,
		content TEXT NOT NULL,
		chart JSON,
		points JSON,
		is_fallback BOOLEAN NOT NULL DEFAULT FALSE,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_turn_conversation (conversation_id)
	)`, constants.TableConversationTurn),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		term VARCHAR(255) NOT NULL,
		definition TEXT NOT NULL,
		category VARCHAR(64),
		synonyms JSON,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_modified_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_term_customer (customer_id)
	)`, constants.TableGlossaryTerm),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id VARCHAR(36) PRIMARY KEY,
		customer_id VARCHAR(64) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		format VARCHAR(16) NOT NULL,
		size_bytes BIGINT NOT NULL,
		word_count INT NOT NULL,
		extracted_text LONGTEXT,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		error TEXT,
		uploaded_by VARCHAR(36) NOT NULL,
		created_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_modified_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_document_status (status),
		INDEX idx_document_customer (customer_id)
	)`, constants.TableDocument),
}

// InitializeSchema creates the platform tables if they do not exist.
func InitializeSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to run schema DDL: %w", err)
		}
	}
	return nil
}
