package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from, in increasing precedence:
//  1. Default values
//  2. The YAML file at path, or config.yaml in the working directory when path is empty
//  3. YUGRAM_* environment variables (e.g. YUGRAM_TDLIB_API_HASH)
//  4. SAVE_CHAT_IDS / SKIP_CHAT_IDS for the message filter lists
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("YUGRAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	if err := applyChatIDEnv(&cfg.Messages); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// applyChatIDEnv overrides the filter lists from the comma-separated
// environment variables and records where the active list came from.
func applyChatIDEnv(m *MessagesConfig) error {
	m.Source = SourceNone
	if len(m.SaveChatIDs) > 0 || len(m.SkipChatIDs) > 0 {
		m.Source = SourceFile
	}

	for name, target := range map[string]*[]int64{
		EnvSaveChatIDs: &m.SaveChatIDs,
		EnvSkipChatIDs: &m.SkipChatIDs,
	} {
		raw, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		ids, err := ParseChatIDs(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = ids
		m.Source = SourceEnvironment
	}
	return nil
}
