package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edgard/yugram/internal/database"
	"github.com/edgard/yugram/internal/tdlib"
)

// ErrDecode marks a payload that cannot be reconciled. It aborts only the
// update that carried it.
var ErrDecode = errors.New("decode error")

// ChatKind maps a chat type to its stored kind. The boolean is false when the
// type is missing or unrecognized, in which case the kind is unknown.
func ChatKind(t tdlib.ChatType) (database.ChatKind, bool) {
	switch t.(type) {
	case *tdlib.ChatTypePrivate:
		return database.ChatKindPrivate, true
	case *tdlib.ChatTypeBasicGroup:
		return database.ChatKindBasicGroup, true
	case *tdlib.ChatTypeSupergroup:
		return database.ChatKindSupergroup, true
	case *tdlib.ChatTypeSecret:
		return database.ChatKindSecret, true
	default:
		return database.ChatKindUnknown, false
	}
}

// UserKind maps a user type to its stored kind. TDLib's explicit
// userTypeUnknown is recognized; missing or unrecognized types are not.
func UserKind(t tdlib.UserType) (database.UserKind, bool) {
	switch t.(type) {
	case *tdlib.UserTypeRegular:
		return database.UserKindRegular, true
	case *tdlib.UserTypeBot:
		return database.UserKindBot, true
	case *tdlib.UserTypeDeleted:
		return database.UserKindDeleted, true
	case *tdlib.UserTypeUnknown:
		return database.UserKindUnknown, true
	default:
		return database.UserKindUnknown, false
	}
}

// MessageText extracts the storable text: the text of a text message or the
// caption of a photo or video. Any other content yields "".
func MessageText(c tdlib.MessageContent) string {
	switch c := c.(type) {
	case *tdlib.MessageText:
		return c.Text.Text
	case *tdlib.MessagePhoto:
		return c.Caption.Text
	case *tdlib.MessageVideo:
		return c.Caption.Text
	default:
		return ""
	}
}

// SenderID returns the user ID or chat ID behind a message sender.
func SenderID(s tdlib.MessageSender) (int64, error) {
	switch s := s.(type) {
	case *tdlib.MessageSenderUser:
		return s.UserID, nil
	case *tdlib.MessageSenderChat:
		return s.ChatID, nil
	case nil:
		return 0, fmt.Errorf("%w: message has no sender", ErrDecode)
	default:
		return 0, fmt.Errorf("%w: unknown sender type %q", ErrDecode, s.Type())
	}
}

// Username picks the first active username, then the first disabled one, then
// the editable one.
func Username(u *tdlib.Usernames) string {
	if u == nil {
		return ""
	}
	if len(u.ActiveUsernames) > 0 {
		return u.ActiveUsernames[0]
	}
	if len(u.DisabledUsernames) > 0 {
		return u.DisabledUsernames[0]
	}
	return u.EditableUsername
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
