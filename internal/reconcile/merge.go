package reconcile

import (
	"database/sql"

	"github.com/edgard/yugram/internal/database"
	"github.com/edgard/yugram/internal/tdlib"
)

// NewChat builds a stored chat from its first observation.
func NewChat(c tdlib.Chat) *database.Chat {
	kind, _ := ChatKind(c.Type)
	return &database.Chat{
		ID:    c.ID,
		Kind:  kind,
		Title: nullString(c.Title),
	}
}

// MergeChat applies present, differing fields of c to existing and reports
// whether anything changed.
func MergeChat(existing *database.Chat, c tdlib.Chat) bool {
	changed := mergeNullString(&existing.Title, c.Title)
	if kind, ok := ChatKind(c.Type); ok && kind != existing.Kind {
		existing.Kind = kind
		changed = true
	}
	return changed
}

// NewUser builds a stored user from its first observation.
func NewUser(u tdlib.User) *database.User {
	kind, _ := UserKind(u.Type)
	return &database.User{
		ID:              u.ID,
		Username:        nullString(Username(u.Usernames)),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		PhoneNumber:     nullString(u.PhoneNumber),
		IsContact:       u.IsContact,
		IsMutualContact: u.IsMutualContact,
		IsCloseFriend:   u.IsCloseFriend,
		IsPremium:       u.IsPremium,
		IsSupport:       u.IsSupport,
		LanguageCode:    nullString(u.LanguageCode),
		Kind:            kind,
	}
}

// MergeUser applies present, differing fields of u to existing and reports
// whether anything changed. Boolean flags are always taken from u.
func MergeUser(existing *database.User, u tdlib.User) bool {
	changed := mergeNullString(&existing.Username, Username(u.Usernames))
	changed = mergeString(&existing.FirstName, u.FirstName) || changed
	changed = mergeString(&existing.LastName, u.LastName) || changed
	changed = mergeNullString(&existing.PhoneNumber, u.PhoneNumber) || changed
	changed = mergeNullString(&existing.LanguageCode, u.LanguageCode) || changed

	flags := [...]struct {
		dst *bool
		src bool
	}{
		{&existing.IsContact, u.IsContact},
		{&existing.IsMutualContact, u.IsMutualContact},
		{&existing.IsCloseFriend, u.IsCloseFriend},
		{&existing.IsPremium, u.IsPremium},
		{&existing.IsSupport, u.IsSupport},
	}
	for _, f := range flags {
		if *f.dst != f.src {
			*f.dst = f.src
			changed = true
		}
	}

	if kind, ok := UserKind(u.Type); ok && kind != existing.Kind {
		existing.Kind = kind
		changed = true
	}
	return changed
}

// NewMessage builds a stored message. Callers must not store messages with
// blank text.
func NewMessage(m tdlib.Message, senderID int64, text string) *database.Message {
	return &database.Message{
		ID:        m.ID,
		SenderID:  senderID,
		ChatID:    m.ChatID,
		Timestamp: m.Date,
		Text:      nullString(text),
	}
}

// MergeMessage refreshes the text of existing when text is not blank. All
// other fields are immutable after creation.
func MergeMessage(existing *database.Message, text string) bool {
	if isBlank(text) {
		return false
	}
	return mergeNullString(&existing.Text, text)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mergeString(dst *string, src string) bool {
	if src == "" || *dst == src {
		return false
	}
	*dst = src
	return true
}

func mergeNullString(dst *sql.NullString, src string) bool {
	if src == "" || (dst.Valid && dst.String == src) {
		return false
	}
	*dst = sql.NullString{String: src, Valid: true}
	return true
}
