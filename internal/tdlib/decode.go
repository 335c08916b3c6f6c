package tdlib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownType is returned when an object carries no "@type".
var ErrUnknownType = errors.New("tdlib: object has no @type")

type envelope struct {
	Type  string          `json:"@type"`
	Extra json.RawMessage `json:"@extra"`
}

// decoders maps top-level tags to their concrete decoders. Tags missing from
// the table decode to *UnknownObject.
var decoders = map[string]func([]byte) (Object, error){
	TypeUpdateAuthorizationState: decodeInto[UpdateAuthorizationState],
	TypeUpdateNewChat:            decodeInto[UpdateNewChat],
	TypeUpdateUser:               decodeInto[UpdateUser],
	TypeUpdateNewMessage:         decodeInto[UpdateNewMessage],
	TypeOk:                       decodeInto[Ok],
	TypeError:                    decodeInto[Error],
}

// ptrObject constrains T so that *T is an Object.
type ptrObject[T any] interface {
	*T
	Object
}

func decodeInto[T any, P ptrObject[T]](data []byte) (Object, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return P(&v), nil
}

// Decode parses one TDLib JSON object. It returns the object and the request
// correlation value from "@extra", or "" when the object is an update.
func Decode(data []byte) (Object, string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, "", ErrUnknownType
	}
	extra := decodeExtra(env.Extra)

	decode, ok := decoders[env.Type]
	if !ok {
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return &UnknownObject{Tag: env.Type, Raw: raw}, extra, nil
	}
	obj, err := decode(data)
	if err != nil {
		return nil, extra, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return obj, extra, nil
}

func decodeExtra(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// tagOf returns the "@type" of a nested object, or "" for null or absent values.
func tagOf(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}
	if env.Type == "" {
		return "", ErrUnknownType
	}
	return env.Type, nil
}

func (u *UpdateAuthorizationState) UnmarshalJSON(data []byte) error {
	var raw struct {
		State json.RawMessage `json:"authorization_state"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tag, err := tagOf(raw.State)
	if err != nil {
		return fmt.Errorf("authorization_state: %w", err)
	}
	u.State = AuthorizationState(tag)
	return nil
}

func (c *Chat) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    int64           `json:"id"`
		Type  json.RawMessage `json:"type"`
		Title string          `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	chatType, err := decodeChatType(raw.Type)
	if err != nil {
		return fmt.Errorf("chat type: %w", err)
	}
	c.ID, c.Title, c.Type = raw.ID, raw.Title, chatType
	return nil
}

func decodeChatType(raw json.RawMessage) (ChatType, error) {
	tag, err := tagOf(raw)
	if err != nil || tag == "" {
		return nil, err
	}
	var t ChatType
	switch tag {
	case "chatTypePrivate":
		t = &ChatTypePrivate{}
	case "chatTypeBasicGroup":
		t = &ChatTypeBasicGroup{}
	case "chatTypeSupergroup":
		t = &ChatTypeSupergroup{}
	case "chatTypeSecret":
		t = &ChatTypeSecret{}
	default:
		return &ChatTypeOther{Tag: tag}, nil
	}
	if err := json.Unmarshal(raw, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              int64           `json:"id"`
		FirstName       string          `json:"first_name"`
		LastName        string          `json:"last_name"`
		Usernames       *Usernames      `json:"usernames"`
		PhoneNumber     string          `json:"phone_number"`
		IsContact       bool            `json:"is_contact"`
		IsMutualContact bool            `json:"is_mutual_contact"`
		IsCloseFriend   bool            `json:"is_close_friend"`
		IsPremium       bool            `json:"is_premium"`
		IsSupport       bool            `json:"is_support"`
		LanguageCode    string          `json:"language_code"`
		Type            json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	userType, err := decodeUserType(raw.Type)
	if err != nil {
		return fmt.Errorf("user type: %w", err)
	}
	*u = User{
		ID:              raw.ID,
		FirstName:       raw.FirstName,
		LastName:        raw.LastName,
		Usernames:       raw.Usernames,
		PhoneNumber:     raw.PhoneNumber,
		IsContact:       raw.IsContact,
		IsMutualContact: raw.IsMutualContact,
		IsCloseFriend:   raw.IsCloseFriend,
		IsPremium:       raw.IsPremium,
		IsSupport:       raw.IsSupport,
		LanguageCode:    raw.LanguageCode,
		Type:            userType,
	}
	return nil
}

func decodeUserType(raw json.RawMessage) (UserType, error) {
	tag, err := tagOf(raw)
	if err != nil || tag == "" {
		return nil, err
	}
	// The variants carry fields the bridge ignores, so no payload is decoded.
	switch tag {
	case "userTypeRegular":
		return &UserTypeRegular{}, nil
	case "userTypeBot":
		return &UserTypeBot{}, nil
	case "userTypeDeleted":
		return &UserTypeDeleted{}, nil
	case "userTypeUnknown":
		return &UserTypeUnknown{}, nil
	default:
		return &UserTypeOther{Tag: tag}, nil
	}
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       int64           `json:"id"`
		SenderID json.RawMessage `json:"sender_id"`
		ChatID   int64           `json:"chat_id"`
		Date     int32           `json:"date"`
		Content  json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sender, err := decodeMessageSender(raw.SenderID)
	if err != nil {
		return fmt.Errorf("sender_id: %w", err)
	}
	content, err := decodeMessageContent(raw.Content)
	if err != nil {
		return fmt.Errorf("content: %w", err)
	}
	*m = Message{
		ID:       raw.ID,
		SenderID: sender,
		ChatID:   raw.ChatID,
		Date:     raw.Date,
		Content:  content,
	}
	return nil
}

func decodeMessageSender(raw json.RawMessage) (MessageSender, error) {
	tag, err := tagOf(raw)
	if err != nil || tag == "" {
		return nil, err
	}
	var s MessageSender
	switch tag {
	case "messageSenderUser":
		s = &MessageSenderUser{}
	case "messageSenderChat":
		s = &MessageSenderChat{}
	default:
		return &MessageSenderOther{Tag: tag}, nil
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeMessageContent(raw json.RawMessage) (MessageContent, error) {
	tag, err := tagOf(raw)
	if err != nil || tag == "" {
		return nil, err
	}
	var c MessageContent
	switch tag {
	case "messageText":
		c = &MessageText{}
	case "messagePhoto":
		c = &MessagePhoto{}
	case "messageVideo":
		c = &MessageVideo{}
	default:
		return &MessageContentOther{Tag: tag}, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	return c, nil
}
