package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBDSN      string // overrides the individual DB_* values when set

	JWTKey        string
	SaltRound     int
	SessionSecret string
	CookieSecure  bool

	UploadDir       string
	MaxVideoMB      int
	MaxMaterialMB   int
	MaxThumbnailMB  int
	ThumbnailWidth  int
	OEmbedEndpoint  string
	RedisAddr       string
	ContactPerMin   int
	SeedFile        string
	DigestCron      string
	SendgridAPIKey  string
	MailFrom        string
	MailFromName    string
	AdminNotifyMail string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

var defaultMu sync.Mutex

// Current returns AppConfig, falling back to environment defaults when
// LoadConfig has not run (tests, tools).
func Current() *Config {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if AppConfig == nil {
		AppConfig = FromEnv()
	}
	return AppConfig
}

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = FromEnv()

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendgridAPIKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will only be logged.")
	}
}

// FromEnv builds a Config from the current environment without reading .env.
func FromEnv() *Config {
	return &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "coursehub"),
		DBDSN:      getEnv("DB_DSN", ""),

		JWTKey:        getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound:     getEnvInt("SALT_ROUND", 10),
		SessionSecret: getEnv("SESSION_SECRET", ""),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),

		UploadDir:       getEnv("UPLOAD_DIR", "./public/uploads"),
		MaxVideoMB:      getEnvInt("MAX_VIDEO_MB", 200),
		MaxMaterialMB:   getEnvInt("MAX_MATERIAL_MB", 20),
		MaxThumbnailMB:  getEnvInt("MAX_THUMBNAIL_MB", 2),
		ThumbnailWidth:  getEnvInt("THUMBNAIL_WIDTH", 800),
		OEmbedEndpoint:  getEnv("OEMBED_ENDPOINT", "https://noembed.com/embed"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		ContactPerMin:   getEnvInt("CONTACT_PER_MINUTE", 5),
		SeedFile:        getEnv("SEED_FILE", ""),
		DigestCron:      getEnv("DIGEST_CRON", "0 8 * * *"),
		SendgridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		MailFrom:        getEnv("MAIL_FROM", "no-reply@coursehub.local"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "CourseHub"),
		AdminNotifyMail: getEnv("ADMIN_NOTIFY_EMAIL", ""),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvBool retrieves an environment variable as a boolean or returns the default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
