// Package transcript persists call transcripts and tool activity.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Message is one recorded utterance.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall is one recorded tool invocation.
type ToolCall struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	ToolName       string    `json:"tool_name"`
	Arguments      string    `json:"arguments"`
	Result         string    `json:"result,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Store is a SQLite-backed transcript store. Every conversation turn
// and every tool call is written through, so a call can be replayed
// afterwards for review.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the transcript database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Conversations
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	-- Messages
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, timestamp);

	-- Tool calls (structured, queryable)
	CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		tool_name TEXT NOT NULL,
		arguments TEXT NOT NULL,
		result TEXT,
		timestamp TIMESTAMP NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_conversation ON tool_calls(conversation_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureConversation inserts the conversation row if missing and bumps
// its updated_at timestamp.
func (s *Store) ensureConversation(ctx context.Context, id string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO conversations (id, created_at, updated_at)
		VALUES (?, ?, ?)
	`, id, now, now)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE conversations SET updated_at = ? WHERE id = ?
	`, now, id)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return nil
}

// RecordMessage appends one utterance to the conversation transcript.
func (s *Store) RecordMessage(ctx context.Context, conversationID, role, content string) error {
	now := time.Now()
	if err := s.ensureConversation(ctx, conversationID, now); err != nil {
		return err
	}

	msgID, _ := uuid.NewV7()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, msgID.String(), conversationID, role, content, now)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecordToolCall appends one tool invocation with its result payload.
func (s *Store) RecordToolCall(ctx context.Context, conversationID, toolName, arguments, result string) error {
	now := time.Now()
	if err := s.ensureConversation(ctx, conversationID, now); err != nil {
		return err
	}

	callID, _ := uuid.NewV7()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_calls (id, conversation_id, tool_name, arguments, result, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, callID.String(), conversationID, toolName, arguments, result, now)
	if err != nil {
		return fmt.Errorf("insert tool call: %w", err)
	}
	return nil
}

// Messages retrieves the transcript for a conversation in order.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ToolCalls retrieves recorded tool calls for a conversation, newest
// first.
func (s *Store) ToolCalls(ctx context.Context, conversationID string, limit int) ([]ToolCall, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, tool_name, arguments, result, timestamp
		FROM tool_calls
		WHERE conversation_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query tool calls: %w", err)
	}
	defer rows.Close()

	var calls []ToolCall
	for rows.Next() {
		var tc ToolCall
		var result sql.NullString
		if err := rows.Scan(&tc.ID, &tc.ConversationID, &tc.ToolName, &tc.Arguments, &result, &tc.Timestamp); err != nil {
			return nil, fmt.Errorf("scan tool call: %w", err)
		}
		if result.Valid {
			tc.Result = result.String
		}
		calls = append(calls, tc)
	}
	return calls, rows.Err()
}

// Stats returns transcript statistics.
func (s *Store) Stats(ctx context.Context) map[string]any {
	var convCount, msgCount, toolCount int

	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&convCount)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&msgCount)
	_ = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tool_calls`).Scan(&toolCount)

	return map[string]any{
		"conversations": convCount,
		"messages":      msgCount,
		"tool_calls":    toolCount,
		"storage":       "sqlite",
	}
}
