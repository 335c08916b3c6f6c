// Package tdlib models the subset of the TDLib JSON interface the bridge consumes
// and provides a client that speaks it over a newline-delimited stream.
package tdlib

import "encoding/json"

// Object is any value carried over the TDLib JSON interface. Type returns the
// "@type" discriminant.
type Object interface {
	Type() string
}

// Top-level object tags.
const (
	TypeUpdateAuthorizationState = "updateAuthorizationState"
	TypeUpdateNewChat            = "updateNewChat"
	TypeUpdateUser               = "updateUser"
	TypeUpdateNewMessage         = "updateNewMessage"
	TypeOk                       = "ok"
	TypeError                    = "error"
)

// AuthorizationState holds the "@type" of an authorizationState object.
type AuthorizationState string

// Authorization states reported by updateAuthorizationState.
const (
	AuthorizationStateWaitTdlibParameters AuthorizationState = "authorizationStateWaitTdlibParameters"
	AuthorizationStateWaitPhoneNumber     AuthorizationState = "authorizationStateWaitPhoneNumber"
	AuthorizationStateWaitCode            AuthorizationState = "authorizationStateWaitCode"
	AuthorizationStateWaitPassword        AuthorizationState = "authorizationStateWaitPassword"
	AuthorizationStateReady               AuthorizationState = "authorizationStateReady"
	AuthorizationStateLoggingOut          AuthorizationState = "authorizationStateLoggingOut"
	AuthorizationStateClosing             AuthorizationState = "authorizationStateClosing"
	AuthorizationStateClosed              AuthorizationState = "authorizationStateClosed"
)

// UpdateAuthorizationState is sent whenever the authorization state changes.
type UpdateAuthorizationState struct {
	State AuthorizationState
}

func (*UpdateAuthorizationState) Type() string { return TypeUpdateAuthorizationState }

// UpdateNewChat announces a chat the client has learned about.
type UpdateNewChat struct {
	Chat Chat `json:"chat"`
}

func (*UpdateNewChat) Type() string { return TypeUpdateNewChat }

// UpdateUser carries new or changed user data.
type UpdateUser struct {
	User User `json:"user"`
}

func (*UpdateUser) Type() string { return TypeUpdateUser }

// UpdateNewMessage carries a newly received message.
type UpdateNewMessage struct {
	Message Message `json:"message"`
}

func (*UpdateNewMessage) Type() string { return TypeUpdateNewMessage }

// Ok is the empty successful result of a request.
type Ok struct{}

func (*Ok) Type() string { return TypeOk }

// Error is returned by TDLib when a request fails.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (*Error) Type() string { return TypeError }

// UnknownObject keeps any object whose tag the bridge does not model.
type UnknownObject struct {
	Tag string
	Raw json.RawMessage
}

func (o *UnknownObject) Type() string { return o.Tag }

// Chat is the subset of TDLib's chat object the bridge stores.
type Chat struct {
	ID    int64
	Type  ChatType
	Title string
}

// ChatType is the sum type of chat kinds.
type ChatType interface {
	Object
	chatType()
}

// ChatTypePrivate is an ordinary one-to-one chat.
type ChatTypePrivate struct {
	UserID int64 `json:"user_id"`
}

// ChatTypeBasicGroup is a legacy small group.
type ChatTypeBasicGroup struct {
	BasicGroupID int64 `json:"basic_group_id"`
}

// ChatTypeSupergroup is a supergroup or channel.
type ChatTypeSupergroup struct {
	SupergroupID int64 `json:"supergroup_id"`
	IsChannel    bool  `json:"is_channel"`
}

// ChatTypeSecret is an end-to-end encrypted chat.
type ChatTypeSecret struct {
	SecretChatID int32 `json:"secret_chat_id"`
	UserID       int64 `json:"user_id"`
}

// ChatTypeOther is any chat type tag not listed above.
type ChatTypeOther struct {
	Tag string
}

func (*ChatTypePrivate) Type() string    { return "chatTypePrivate" }
func (*ChatTypeBasicGroup) Type() string { return "chatTypeBasicGroup" }
func (*ChatTypeSupergroup) Type() string { return "chatTypeSupergroup" }
func (*ChatTypeSecret) Type() string     { return "chatTypeSecret" }
func (t *ChatTypeOther) Type() string    { return t.Tag }

func (*ChatTypePrivate) chatType()    {}
func (*ChatTypeBasicGroup) chatType() {}
func (*ChatTypeSupergroup) chatType() {}
func (*ChatTypeSecret) chatType()     {}
func (*ChatTypeOther) chatType()      {}

// Usernames lists the usernames attached to a user.
type Usernames struct {
	ActiveUsernames   []string `json:"active_usernames"`
	DisabledUsernames []string `json:"disabled_usernames"`
	EditableUsername  string   `json:"editable_username"`
}

// User is the subset of TDLib's user object the bridge stores.
type User struct {
	ID              int64
	FirstName       string
	LastName        string
	Usernames       *Usernames
	PhoneNumber     string
	IsContact       bool
	IsMutualContact bool
	IsCloseFriend   bool
	IsPremium       bool
	IsSupport       bool
	LanguageCode    string
	Type            UserType
}

// UserType is the sum type of user kinds.
type UserType interface {
	Object
	userType()
}

// UserTypeRegular is a regular account.
type UserTypeRegular struct{}

// UserTypeBot is a bot account.
type UserTypeBot struct{}

// UserTypeDeleted is a deleted account.
type UserTypeDeleted struct{}

// UserTypeUnknown is TDLib's own "no information" user type.
type UserTypeUnknown struct{}

// UserTypeOther is any user type tag not listed above.
type UserTypeOther struct {
	Tag string
}

func (*UserTypeRegular) Type() string { return "userTypeRegular" }
func (*UserTypeBot) Type() string     { return "userTypeBot" }
func (*UserTypeDeleted) Type() string { return "userTypeDeleted" }
func (*UserTypeUnknown) Type() string { return "userTypeUnknown" }
func (t *UserTypeOther) Type() string { return t.Tag }

func (*UserTypeRegular) userType() {}
func (*UserTypeBot) userType()     {}
func (*UserTypeDeleted) userType() {}
func (*UserTypeUnknown) userType() {}
func (*UserTypeOther) userType()   {}

// Message is the subset of TDLib's message object the bridge stores.
type Message struct {
	ID       int64
	SenderID MessageSender
	ChatID   int64
	Date     int32
	Content  MessageContent
}

// MessageSender identifies who sent a message.
type MessageSender interface {
	Object
	messageSender()
}

// MessageSenderUser is a message sent by a user.
type MessageSenderUser struct {
	UserID int64 `json:"user_id"`
}

// MessageSenderChat is a message sent on behalf of a chat, such as a channel
// post or an anonymous administrator.
type MessageSenderChat struct {
	ChatID int64 `json:"chat_id"`
}

// MessageSenderOther is any sender tag not listed above.
type MessageSenderOther struct {
	Tag string
}

func (*MessageSenderUser) Type() string    { return "messageSenderUser" }
func (*MessageSenderChat) Type() string    { return "messageSenderChat" }
func (s *MessageSenderOther) Type() string { return s.Tag }

func (*MessageSenderUser) messageSender()  {}
func (*MessageSenderChat) messageSender()  {}
func (*MessageSenderOther) messageSender() {}

// FormattedText is text with entities; only the plain text is kept.
type FormattedText struct {
	Text string `json:"text"`
}

// MessageContent is the sum type of message payloads.
type MessageContent interface {
	Object
	messageContent()
}

// MessageText is a text message.
type MessageText struct {
	Text FormattedText `json:"text"`
}

// MessagePhoto is a photo with an optional caption.
type MessagePhoto struct {
	Caption FormattedText `json:"caption"`
}

// MessageVideo is a video with an optional caption.
type MessageVideo struct {
	Caption FormattedText `json:"caption"`
}

// MessageContentOther is any content tag not listed above.
type MessageContentOther struct {
	Tag string
}

func (*MessageText) Type() string           { return "messageText" }
func (*MessagePhoto) Type() string          { return "messagePhoto" }
func (*MessageVideo) Type() string          { return "messageVideo" }
func (c *MessageContentOther) Type() string { return c.Tag }

func (*MessageText) messageContent()         {}
func (*MessagePhoto) messageContent()        {}
func (*MessageVideo) messageContent()        {}
func (*MessageContentOther) messageContent() {}
