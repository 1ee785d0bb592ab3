package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisFlowDB   int    `mapstructure:"REDIS_FLOW_DB"`
	RedisSyncDB   int    `mapstructure:"REDIS_SYNC_QUEUE_DB"`

	// Booking flow.
	FlowTTLMinutes     int `mapstructure:"FLOW_TTL_MINUTES"`
	FlowCleanupMinutes int `mapstructure:"FLOW_CLEANUP_MINUTES"`

	// Appointment policy defaults (clinic documents may override).
	DefaultTimezone        string `mapstructure:"DEFAULT_TIMEZONE"`
	SlotGranularityMinutes int    `mapstructure:"SLOT_GRANULARITY_MINUTES"`
	BufferMinutes          int    `mapstructure:"BUFFER_MINUTES"`
	MinAdvanceHours        int    `mapstructure:"MIN_ADVANCE_HOURS"`
	MaxAdvanceDays         int    `mapstructure:"MAX_ADVANCE_DAYS"`
	MaxDailyAppointments   int    `mapstructure:"MAX_DAILY_APPOINTMENTS"`

	// Remote calendar.
	GoogleCalendarID      string `mapstructure:"GOOGLE_CALENDAR_ID"`
	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	CalendarMaxRetries    int    `mapstructure:"CALENDAR_MAX_RETRIES"`
	CalendarRetryBaseMs   int    `mapstructure:"CALENDAR_RETRY_BASE_MS"`
	CalendarRetryMaxMs    int    `mapstructure:"CALENDAR_RETRY_MAX_MS"`
	CalendarTimeoutSecs   int    `mapstructure:"CALENDAR_TIMEOUT_SECONDS"`

	// Circuit breaker.
	BreakerFailureThreshold int `mapstructure:"BREAKER_FAILURE_THRESHOLD"`
	BreakerRecoverySeconds  int `mapstructure:"BREAKER_RECOVERY_SECONDS"`

	// Calendar synchronization.
	SyncIntervalMinutes int    `mapstructure:"SYNC_INTERVAL_MINUTES"`
	SyncBidirectional   bool   `mapstructure:"SYNC_BIDIRECTIONAL"`
	SyncConflictPolicy  string `mapstructure:"SYNC_CONFLICT_POLICY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_FLOW_DB", 1)
	viper.SetDefault("REDIS_SYNC_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("FLOW_TTL_MINUTES", 60)
	viper.SetDefault("FLOW_CLEANUP_MINUTES", 5)
	viper.SetDefault("DEFAULT_TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("SLOT_GRANULARITY_MINUTES", 30)
	viper.SetDefault("BUFFER_MINUTES", 0)
	viper.SetDefault("MIN_ADVANCE_HOURS", 24)
	viper.SetDefault("MAX_ADVANCE_DAYS", 30)
	viper.SetDefault("MAX_DAILY_APPOINTMENTS", 20)
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	viper.SetDefault("CALENDAR_MAX_RETRIES", 3)
	viper.SetDefault("CALENDAR_RETRY_BASE_MS", 1000)
	viper.SetDefault("CALENDAR_RETRY_MAX_MS", 10000)
	viper.SetDefault("CALENDAR_TIMEOUT_SECONDS", 10)
	viper.SetDefault("BREAKER_FAILURE_THRESHOLD", 5)
	viper.SetDefault("BREAKER_RECOVERY_SECONDS", 60)
	viper.SetDefault("SYNC_INTERVAL_MINUTES", 15)
	viper.SetDefault("SYNC_BIDIRECTIONAL", false)
	viper.SetDefault("SYNC_CONFLICT_POLICY", "remote_wins")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
