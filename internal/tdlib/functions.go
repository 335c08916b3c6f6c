package tdlib

import (
	"encoding/json"
	"fmt"
)

// Function is a request sent to TDLib.
type Function interface {
	Type() string
}

// SetTdlibParameters supplies the client parameters; sent in
// authorizationStateWaitTdlibParameters.
type SetTdlibParameters struct {
	UseTestDC             bool   `json:"use_test_dc"`
	DatabaseDirectory     string `json:"database_directory"`
	FilesDirectory        string `json:"files_directory"`
	DatabaseEncryptionKey string `json:"database_encryption_key"`
	UseFileDatabase       bool   `json:"use_file_database"`
	UseChatInfoDatabase   bool   `json:"use_chat_info_database"`
	UseMessageDatabase    bool   `json:"use_message_database"`
	UseSecretChats        bool   `json:"use_secret_chats"`
	APIID                 int32  `json:"api_id"`
	APIHash               string `json:"api_hash"`
	SystemLanguageCode    string `json:"system_language_code"`
	DeviceModel           string `json:"device_model"`
	SystemVersion         string `json:"system_version"`
	ApplicationVersion    string `json:"application_version"`
}

func (*SetTdlibParameters) Type() string { return "setTdlibParameters" }

// SetAuthenticationPhoneNumber starts phone number authentication.
type SetAuthenticationPhoneNumber struct {
	PhoneNumber string `json:"phone_number"`
}

func (*SetAuthenticationPhoneNumber) Type() string { return "setAuthenticationPhoneNumber" }

// CheckAuthenticationCode submits the one-time code received by the user.
type CheckAuthenticationCode struct {
	Code string `json:"code"`
}

func (*CheckAuthenticationCode) Type() string { return "checkAuthenticationCode" }

// CheckAuthenticationPassword submits the two-step verification password.
type CheckAuthenticationPassword struct {
	Password string `json:"password"`
}

func (*CheckAuthenticationPassword) Type() string { return "checkAuthenticationPassword" }

// LogOut closes the current session.
type LogOut struct{}

func (*LogOut) Type() string { return "logOut" }

// SetLogVerbosityLevel changes TDLib's internal log verbosity.
type SetLogVerbosityLevel struct {
	NewVerbosityLevel int32 `json:"new_verbosity_level"`
}

func (*SetLogVerbosityLevel) Type() string { return "setLogVerbosityLevel" }

// LogStream selects where TDLib writes its internal log.
type LogStream struct {
	Type           string `json:"@type"`
	Path           string `json:"path,omitempty"`
	MaxFileSize    int64  `json:"max_file_size,omitempty"`
	RedirectStderr bool   `json:"redirect_stderr"`
}

// NewLogStreamFile returns a logStreamFile writing to path, rotated at maxFileSize bytes.
func NewLogStreamFile(path string, maxFileSize int64) LogStream {
	return LogStream{Type: "logStreamFile", Path: path, MaxFileSize: maxFileSize}
}

// SetLogStream changes TDLib's log destination.
type SetLogStream struct {
	LogStream LogStream `json:"log_stream"`
}

func (*SetLogStream) Type() string { return "setLogStream" }

// Encode renders fn as a TDLib JSON object tagged with its "@type" and the
// given "@extra" correlation value.
func Encode(fn Function, extra string) ([]byte, error) {
	body, err := json.Marshal(fn)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", fn.Type(), err)
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s: %w", fn.Type(), err)
	}
	if fields["@type"], err = json.Marshal(fn.Type()); err != nil {
		return nil, err
	}
	if extra != "" {
		if fields["@extra"], err = json.Marshal(extra); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}
