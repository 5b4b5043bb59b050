package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/kommunelab/lovassistent/internal/model"
	"github.com/kommunelab/lovassistent/internal/pkg/errs"
)

type ChatRepo struct {
	db *sqlx.DB
}

func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) CreateSession(ctx context.Context, session *model.ChatSession) error {
	const query = `
		INSERT INTO chat_sessions (session_id, ctime)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, session.SessionID, session.Ctime)
	return err
}

func (r *ChatRepo) GetSession(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.GetContext(ctx, &session,
		`SELECT session_id, ctime FROM chat_sessions WHERE session_id = $1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ChatRepo) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	const query = `
		INSERT INTO chat_messages (session_id, role, content, ctime)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, msg.SessionID, msg.Role, msg.Content, msg.Ctime)
	return err
}

// ListMessages returns the most recent limit messages in chronological
// order. limit <= 0 returns the whole history.
func (r *ChatRepo) ListMessages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if limit > 0 {
		const query = `
			SELECT id, session_id, role, content, ctime FROM (
				SELECT id, session_id, role, content, ctime
				FROM chat_messages
				WHERE session_id = $1
				ORDER BY id DESC
				LIMIT $2
			) AS recent
			ORDER BY id ASC
		`
		if err := r.db.SelectContext(ctx, &messages, query, sessionID, limit); err != nil {
			return nil, err
		}
		return messages, nil
	}
	const query = `
		SELECT id, session_id, role, content, ctime
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY id ASC
	`
	if err := r.db.SelectContext(ctx, &messages, query, sessionID); err != nil {
		return nil, err
	}
	return messages, nil
}
