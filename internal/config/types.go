package config

import "time"

// Config is the full application configuration. Values come from defaults, an
// optional YAML file and YUGRAM_* environment variables, in increasing order
// of precedence.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	TDLib     TDLibConfig     `mapstructure:"tdlib"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// DatabaseConfig locates the SQLite entity store.
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"              validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"min=0"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"      validate:"min=0"`
}

// TDLibConfig holds the relay command, the client parameters and the login
// credentials.
type TDLibConfig struct {
	Command []string `mapstructure:"command" validate:"required,min=1,dive,required"`

	UseTestDC             bool   `mapstructure:"use_test_dc"`
	DatabaseDirectory     string `mapstructure:"database_directory" validate:"required"`
	FilesDirectory        string `mapstructure:"files_directory"`
	DatabaseEncryptionKey string `mapstructure:"database_encryption_key"`
	UseFileDatabase       bool   `mapstructure:"use_file_database"`
	UseChatInfoDatabase   bool   `mapstructure:"use_chat_info_database"`
	UseMessageDatabase    bool   `mapstructure:"use_message_database"`
	UseSecretChats        bool   `mapstructure:"use_secret_chats"`
	APIID                 int32  `mapstructure:"api_id"               validate:"required,gt=0"`
	APIHash               string `mapstructure:"api_hash"             validate:"required"`
	SystemLanguageCode    string `mapstructure:"system_language_code" validate:"required"`
	DeviceModel           string `mapstructure:"device_model"         validate:"required"`
	SystemVersion         string `mapstructure:"system_version"`
	ApplicationVersion    string `mapstructure:"application_version"  validate:"required"`

	PhoneNumber string `mapstructure:"phone_number" validate:"required"`
	Password    string `mapstructure:"password"`

	LogVerbosity   int    `mapstructure:"log_verbosity"     validate:"min=0,max=1023"`
	LogFile        string `mapstructure:"log_file"`
	LogMaxFileSize int64  `mapstructure:"log_max_file_size" validate:"min=0"`
}

// MessagesConfig restricts which chats have their messages stored. At most one
// of the two lists may be set.
type MessagesConfig struct {
	SaveChatIDs []int64 `mapstructure:"save_chat_ids"`
	SkipChatIDs []int64 `mapstructure:"skip_chat_ids"`

	// Source reports where the active list came from.
	Source string `mapstructure:"-"`
}

// HTTPConfig configures the control HTTP server.
type HTTPConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Addr              string        `mapstructure:"addr"                validate:"required_if=Enabled true"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"min=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"    validate:"min=0"`
}

// TelegramConfig configures the optional admin control bot.
type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"    validate:"required_if=Enabled true"`
	AdminID int64  `mapstructure:"admin_id" validate:"required_if=Enabled true,min=0"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a task on a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
