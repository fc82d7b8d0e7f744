// Package config loads the server's environment configuration. The core
// consumes it; ownership of credentials and paths stays with the deployment.
package config

import "os"

// Config is everything the server reads from the environment.
type Config struct {
	Addr string

	// StoreDriver selects the RowStore backend: "csv" (default) or "sqlite".
	StoreDriver string
	CSVPath     string
	SQLitePath  string

	// RealtimeFlagPath gates webhook writes: file present means enabled.
	RealtimeFlagPath string

	TypeformToken   string
	TypeformFormID  string
	TypeformBaseURL string

	JWTSecret string
	StaticDir string

	// Optional seed admin account, created at startup when both are set.
	AdminEmail    string
	AdminPassword string

	LogLevel  string
	LogFormat string
}

// FromEnv reads CMRA_* variables with workable defaults for local runs.
func FromEnv() Config {
	return Config{
		Addr:             envOr("CMRA_ADDR", ":8080"),
		StoreDriver:      envOr("CMRA_STORE_DRIVER", "csv"),
		CSVPath:          envOr("CMRA_CSV_PATH", "form_responses.csv"),
		SQLitePath:       envOr("CMRA_SQLITE_PATH", "responses.db"),
		RealtimeFlagPath: envOr("CMRA_REALTIME_FLAG_PATH", "realtime_enabled.flag"),
		TypeformToken:    os.Getenv("CMRA_TYPEFORM_TOKEN"),
		TypeformFormID:   os.Getenv("CMRA_TYPEFORM_FORM_ID"),
		TypeformBaseURL:  envOr("CMRA_TYPEFORM_BASE_URL", ""),
		JWTSecret:        envOr("CMRA_JWT_SECRET", "cmra-dev-secret"),
		StaticDir:        os.Getenv("CMRA_STATIC_DIR"),
		AdminEmail:       os.Getenv("CMRA_ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("CMRA_ADMIN_PASSWORD"),
		LogLevel:         envOr("CMRA_LOG_LEVEL", "info"),
		LogFormat:        envOr("CMRA_LOG_FORMAT", "console"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
