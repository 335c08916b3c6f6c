package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Messages.SaveChatIDs) > 0 && len(c.Messages.SkipChatIDs) > 0 {
		return errors.New("messages: save_chat_ids and skip_chat_ids are mutually exclusive")
	}
	return nil
}

// Credentials reports which login secrets are configured without exposing them.
func (c *TDLibConfig) Credentials() map[string]bool {
	return map[string]bool{
		"api_hash":     c.APIHash != "",
		"phone_number": c.PhoneNumber != "",
		"password":     c.Password != "",
	}
}
