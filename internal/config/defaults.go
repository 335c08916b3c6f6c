package config

import "time"

// Default values for configuration.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultDBPath            = "yugram.db"
	DefaultDBMaxOpenConns    = 1
	DefaultDBConnMaxLifetime = 5 * time.Minute
	DefaultDBBusyTimeout     = 5 * time.Second

	DefaultTDLibDatabaseDirectory  = "tdlib/db"
	DefaultTDLibFilesDirectory     = "tdlib/files"
	DefaultTDLibSystemLanguageCode = "en"
	DefaultTDLibDeviceModel        = "Server"
	DefaultTDLibApplicationVersion = "1.0"
	DefaultTDLibLogVerbosity       = 1
	DefaultTDLibLogMaxFileSize     = 10 << 20

	DefaultHTTPAddr              = ":8080"
	DefaultHTTPReadHeaderTimeout = 5 * time.Second
	DefaultHTTPShutdownTimeout   = 10 * time.Second

	DefaultSQLMaintenanceSchedule = "0 0 3 * * 0"
	DefaultStoreStatsSchedule     = "0 */15 * * * *"
)

// Environment variables holding comma-separated chat ID lists. They take
// precedence over messages.save_chat_ids and messages.skip_chat_ids.
const (
	EnvSaveChatIDs = "SAVE_CHAT_IDS"
	EnvSkipChatIDs = "SKIP_CHAT_IDS"
)

// Sources reported in MessagesConfig.Source.
const (
	SourceNone        = "none"
	SourceFile        = "config"
	SourceEnvironment = "environment"
)

var defaults = map[string]any{
	"log.level":  DefaultLogLevel,
	"log.format": DefaultLogFormat,

	"database.path":              DefaultDBPath,
	"database.max_open_conns":    DefaultDBMaxOpenConns,
	"database.conn_max_lifetime": DefaultDBConnMaxLifetime,
	"database.busy_timeout":      DefaultDBBusyTimeout,

	"tdlib.command":                 []string{},
	"tdlib.use_test_dc":             false,
	"tdlib.database_directory":      DefaultTDLibDatabaseDirectory,
	"tdlib.files_directory":         DefaultTDLibFilesDirectory,
	"tdlib.database_encryption_key": "",
	"tdlib.use_file_database":       true,
	"tdlib.use_chat_info_database":  true,
	"tdlib.use_message_database":    true,
	"tdlib.use_secret_chats":        false,
	"tdlib.api_id":                  0,
	"tdlib.api_hash":                "",
	"tdlib.system_language_code":    DefaultTDLibSystemLanguageCode,
	"tdlib.device_model":            DefaultTDLibDeviceModel,
	"tdlib.system_version":          "",
	"tdlib.application_version":     DefaultTDLibApplicationVersion,
	"tdlib.phone_number":            "",
	"tdlib.password":                "",
	"tdlib.log_verbosity":           DefaultTDLibLogVerbosity,
	"tdlib.log_file":                "",
	"tdlib.log_max_file_size":       DefaultTDLibLogMaxFileSize,

	"messages.save_chat_ids": []int64{},
	"messages.skip_chat_ids": []int64{},

	"http.enabled":             true,
	"http.addr":                DefaultHTTPAddr,
	"http.read_header_timeout": DefaultHTTPReadHeaderTimeout,
	"http.shutdown_timeout":    DefaultHTTPShutdownTimeout,

	"telegram.enabled":  false,
	"telegram.token":    "",
	"telegram.admin_id": 0,

	"scheduler.tasks.sql_maintenance.enabled":  true,
	"scheduler.tasks.sql_maintenance.schedule": DefaultSQLMaintenanceSchedule,
	"scheduler.tasks.store_stats.enabled":      true,
	"scheduler.tasks.store_stats.schedule":     DefaultStoreStatsSchedule,
}
