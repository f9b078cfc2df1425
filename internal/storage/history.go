// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/linguatax/linguatax-tui/internal/model"
)

// ErrSessionNotFound is returned when a session is not in the local
// history.
var ErrSessionNotFound = errors.New("storage: session not found")

// SessionMeta describes a stored session for list views.
type SessionMeta struct {
	ID           string
	DocumentID   string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// =============================================================================
// HISTORY STORE
// =============================================================================

// History is the local SQLite mirror of chat sessions.
type History struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &History{db: db}, nil
}

// DefaultPath returns the standard history location under the user's
// home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".linguatax", "history.db"), nil
}

// Close releases the database handle.
func (h *History) Close() error {
	return h.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// SaveSession upserts a session and its full transcript. The transcript
// is replaced wholesale; positions are assigned from the session's
// message order.
func (h *History) SaveSession(ctx context.Context, s *model.ChatSession) error {
	if s == nil || s.ID == "" {
		return errors.New("storage: session has no ID")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	created := s.CreatedAt.Unix()
	if s.CreatedAt.IsZero() {
		created = now
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, document_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			title = excluded.title,
			updated_at = excluded.updated_at`,
		s.ID, s.DocumentID, s.Title, created, now)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, s.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages
			(id, session_id, position, role, content, plan, citations,
			 thinking_seconds, is_auto_summary, failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, msg := range s.Messages {
		citations := ""
		if len(msg.Citations) > 0 {
			data, err := json.Marshal(msg.Citations)
			if err != nil {
				return fmt.Errorf("failed to encode citations: %w", err)
			}
			citations = string(data)
		}
		_, err = stmt.ExecContext(ctx,
			msg.ID, s.ID, i, string(msg.Role), msg.DisplayContent(), msg.Plan(),
			citations, msg.ThinkingSeconds, boolToInt(msg.IsAutoSummary),
			boolToInt(msg.Failed), msg.Timestamp.Unix())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// =============================================================================
// LOAD
// =============================================================================

// LoadSession retrieves a full session by ID.
func (h *History) LoadSession(ctx context.Context, id string) (*model.ChatSession, error) {
	s := &model.ChatSession{}
	var created, updated int64
	err := h.db.QueryRowContext(ctx, `
		SELECT id, document_id, title, created_at, updated_at
		FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.DocumentID, &s.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.CreatedAt = time.Unix(created, 0)

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, role, content, plan, citations, thinking_seconds,
		       is_auto_summary, failed, created_at
		FROM messages WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msgID, role, content, plan, citations string
			thinking, auto, failed                int
			msgCreated                            int64
		)
		if err := rows.Scan(&msgID, &role, &content, &plan, &citations,
			&thinking, &auto, &failed, &msgCreated); err != nil {
			return nil, err
		}

		msg := model.RestoreMessage(msgID, model.Role(role), content, plan)
		msg.ChatID = s.ID
		msg.ThinkingSeconds = thinking
		msg.IsAutoSummary = auto != 0
		msg.Failed = failed != 0
		msg.Timestamp = time.Unix(msgCreated, 0)
		if citations != "" {
			if err := json.Unmarshal([]byte(citations), &msg.Citations); err != nil {
				return nil, fmt.Errorf("failed to decode citations: %w", err)
			}
		}
		s.Append(msg)
	}
	return s, rows.Err()
}

// SessionForDocument finds the most recently updated session bound to a
// document.
func (h *History) SessionForDocument(ctx context.Context, documentID string) (*model.ChatSession, error) {
	var id string
	err := h.db.QueryRowContext(ctx, `
		SELECT id FROM sessions WHERE document_id = ?
		ORDER BY updated_at DESC LIMIT 1`, documentID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return h.LoadSession(ctx, id)
}

// ListSessions returns stored sessions, most recently updated first.
func (h *History) ListSessions(ctx context.Context) ([]SessionMeta, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT s.id, s.document_id, s.title, s.created_at, s.updated_at,
		       COUNT(m.id)
		FROM sessions s LEFT JOIN messages m ON m.session_id = s.id
		GROUP BY s.id ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var created, updated int64
		if err := rows.Scan(&meta.ID, &meta.DocumentID, &meta.Title,
			&created, &updated, &meta.MessageCount); err != nil {
			return nil, err
		}
		meta.CreatedAt = time.Unix(created, 0)
		meta.UpdatedAt = time.Unix(updated, 0)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// DeleteSession removes a session and its messages.
func (h *History) DeleteSession(ctx context.Context, id string) error {
	res, err := h.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
