package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Database configuration
var (
	DBHost     = "localhost"
	DBPort     = "5432"
	DBUser     = "postgres"
	DBPassword = "postgres"
	DBName     = "elections"
)

// Auth configuration
var JWTSecret = "change-me"

// APNs configuration (optional; push notifications are skipped when unset)
var (
	AuthKeyPath = ""
	AuthKeyID   = ""
	TeamID      = ""
	APNSTopic   = ""
)

// WebAuthn configuration
var (
	RPDisplayName = "Society Elections"
	RPID          = "localhost"
	RPOrigin      = "http://localhost:5173"
)

// Server configuration
var (
	ServerPort     = "5001"
	AllowedOrigins = []string{"http://localhost:5173"}
)

// Society configuration. FallbackTotalFlats is used whenever the registered
// voter count is zero or a stored statistic is missing.
var (
	WingAFlats         = 45
	WingBFlats         = 60
	FallbackTotalFlats = 105
)

// Load reads configuration from the environment, preferring a local .env file
// when one exists. Variables that are unset keep their defaults.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	setString(&DBHost, "DB_HOST")
	setString(&DBPort, "DB_PORT")
	setString(&DBUser, "DB_USER")
	setString(&DBPassword, "DB_PASSWORD")
	setString(&DBName, "DB_NAME")

	setString(&JWTSecret, "JWT_SECRET")

	setString(&AuthKeyPath, "APNS_KEY_PATH")
	setString(&AuthKeyID, "APNS_KEY_ID")
	setString(&TeamID, "APNS_TEAM_ID")
	setString(&APNSTopic, "APNS_TOPIC")

	setString(&RPDisplayName, "WEBAUTHN_RP_DISPLAY_NAME")
	setString(&RPID, "WEBAUTHN_RP_ID")
	setString(&RPOrigin, "WEBAUTHN_RP_ORIGIN")

	setString(&ServerPort, "PORT")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		AllowedOrigins = SplitOrigins(v)
	}

	setInt(&WingAFlats, "WING_A_FLATS")
	setInt(&WingBFlats, "WING_B_FLATS")
	setInt(&FallbackTotalFlats, "FALLBACK_TOTAL_FLATS")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = n
}

// SplitOrigins parses a comma-separated origin list.
func SplitOrigins(v string) []string {
	parts := strings.Split(v, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
