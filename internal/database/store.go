package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store is the keyed find/save contract for chats, users and messages.
// Find methods return nil, nil when the row does not exist.
type Store interface {
	Ping(ctx context.Context) error

	FindChat(ctx context.Context, id int64) (*Chat, error)
	SaveChat(ctx context.Context, chat *Chat) error

	FindUser(ctx context.Context, id int64) (*User, error)
	SaveUser(ctx context.Context, user *User) error

	FindMessage(ctx context.Context, id int64) (*Message, error)
	SaveMessage(ctx context.Context, message *Message) error

	// Stats returns row counts for every entity table.
	Stats(ctx context.Context) (Stats, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store on SQLite via sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store backed by db.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) FindChat(ctx context.Context, id int64) (*Chat, error) {
	var chat Chat
	err := s.db.GetContext(ctx, &chat, `SELECT id, kind, title, created_at, updated_at FROM chats WHERE id = ?;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat %d: %w", id, err)
	}
	return &chat, nil
}

func (s *sqlxStore) SaveChat(ctx context.Context, chat *Chat) error {
	if chat == nil {
		return errors.New("cannot save nil chat")
	}
	s.stamp(&chat.CreatedAt, &chat.UpdatedAt)

	const query = `
        INSERT INTO chats (id, kind, title, created_at, updated_at)
        VALUES (:id, :kind, :title, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            kind = excluded.kind,
            title = excluded.title,
            updated_at = excluded.updated_at;
    `
	if err := s.upsert(ctx, query, chat); err != nil {
		return fmt.Errorf("failed to save chat %d: %w", chat.ID, err)
	}
	s.logger.DebugContext(ctx, "Chat saved", "chat_id", chat.ID, "kind", chat.Kind)
	return nil
}

func (s *sqlxStore) FindUser(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `
        SELECT id, username, first_name, last_name, phone_number, is_contact, is_mutual_contact,
               is_close_friend, is_premium, is_support, language_code, kind, created_at, updated_at
        FROM users WHERE id = ?;
    `, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user %d: %w", id, err)
	}
	return &user, nil
}

func (s *sqlxStore) SaveUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("cannot save nil user")
	}
	s.stamp(&user.CreatedAt, &user.UpdatedAt)

	const query = `
        INSERT INTO users (id, username, first_name, last_name, phone_number, is_contact, is_mutual_contact,
                           is_close_friend, is_premium, is_support, language_code, kind, created_at, updated_at)
        VALUES (:id, :username, :first_name, :last_name, :phone_number, :is_contact, :is_mutual_contact,
                :is_close_friend, :is_premium, :is_support, :language_code, :kind, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            username = excluded.username,
            first_name = excluded.first_name,
            last_name = excluded.last_name,
            phone_number = excluded.phone_number,
            is_contact = excluded.is_contact,
            is_mutual_contact = excluded.is_mutual_contact,
            is_close_friend = excluded.is_close_friend,
            is_premium = excluded.is_premium,
            is_support = excluded.is_support,
            language_code = excluded.language_code,
            kind = excluded.kind,
            updated_at = excluded.updated_at;
    `
	if err := s.upsert(ctx, query, user); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	s.logger.DebugContext(ctx, "User saved", "user_id", user.ID, "kind", user.Kind)
	return nil
}

func (s *sqlxStore) FindMessage(ctx context.Context, id int64) (*Message, error) {
	var message Message
	err := s.db.GetContext(ctx, &message, `
        SELECT id, sender_id, chat_id, timestamp, text, created_at, updated_at
        FROM messages WHERE id = ?;
    `, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find message %d: %w", id, err)
	}
	return &message, nil
}

func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return errors.New("cannot save nil message")
	}
	if message.ChatID == 0 {
		return errors.New("message must have a non-zero chat_id")
	}
	s.stamp(&message.CreatedAt, &message.UpdatedAt)

	const query = `
        INSERT INTO messages (id, sender_id, chat_id, timestamp, text, created_at, updated_at)
        VALUES (:id, :sender_id, :chat_id, :timestamp, :text, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            sender_id = excluded.sender_id,
            chat_id = excluded.chat_id,
            timestamp = excluded.timestamp,
            text = excluded.text,
            updated_at = excluded.updated_at;
    `
	if err := s.upsert(ctx, query, message); err != nil {
		return fmt.Errorf("failed to save message %d (chat %d): %w", message.ID, message.ChatID, err)
	}
	s.logger.DebugContext(ctx, "Message saved", "message_id", message.ID, "chat_id", message.ChatID)
	return nil
}

func (s *sqlxStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.GetContext(ctx, &stats, `
        SELECT (SELECT COUNT(*) FROM chats)    AS chats,
               (SELECT COUNT(*) FROM users)    AS users,
               (SELECT COUNT(*) FROM messages) AS messages;
    `)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return stats, nil
}

// RunSQLMaintenance executes VACUUM, which SQLite requires outside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context done before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}
	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}

// upsert runs a named statement in its own transaction.
func (s *sqlxStore) upsert(ctx context.Context, query string, arg any) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	if _, err := tx.NamedExecContext(ctx, query, arg); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *sqlxStore) stamp(createdAt, updatedAt *time.Time) {
	now := s.now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
