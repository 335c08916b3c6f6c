package database

import (
	"database/sql"
	"time"
)

// ChatKind classifies a chat.
type ChatKind string

// Chat kinds.
const (
	ChatKindPrivate    ChatKind = "private"
	ChatKindBasicGroup ChatKind = "basic_group"
	ChatKindSupergroup ChatKind = "supergroup"
	ChatKindSecret     ChatKind = "secret"
	ChatKindUnknown    ChatKind = "unknown"
)

// UserKind classifies a user account.
type UserKind string

// User kinds.
const (
	UserKindRegular UserKind = "regular"
	UserKindBot     UserKind = "bot"
	UserKindDeleted UserKind = "deleted"
	UserKindUnknown UserKind = "unknown"
)

// Chat is a stored chat. The ID is assigned by Telegram.
type Chat struct {
	ID    int64          `db:"id"`
	Kind  ChatKind       `db:"kind"`
	Title sql.NullString `db:"title"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// User is a stored user. Boolean flags always mirror the latest observation.
type User struct {
	ID              int64          `db:"id"`
	Username        sql.NullString `db:"username"`
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	PhoneNumber     sql.NullString `db:"phone_number"`
	IsContact       bool           `db:"is_contact"`
	IsMutualContact bool           `db:"is_mutual_contact"`
	IsCloseFriend   bool           `db:"is_close_friend"`
	IsPremium       bool           `db:"is_premium"`
	IsSupport       bool           `db:"is_support"`
	LanguageCode    sql.NullString `db:"language_code"`
	Kind            UserKind       `db:"kind"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Message is a stored message. SenderID is a user ID or, for messages sent on
// behalf of a chat, a chat ID.
type Message struct {
	ID        int64          `db:"id"`
	SenderID  int64          `db:"sender_id"`
	ChatID    int64          `db:"chat_id"`
	Timestamp int32          `db:"timestamp"`
	Text      sql.NullString `db:"text"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Stats holds row counts per table.
type Stats struct {
	Chats    int64 `db:"chats"`
	Users    int64 `db:"users"`
	Messages int64 `db:"messages"`
}
