package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DataBackend  string // "sqlite" or "memory"
	SQLiteDBPath string
	FixturesDir  string // seed fixtures for the memory backend
	SummaryTTL   time.Duration
	SummarySlots int

	// AMQP change feed
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	// Nutrition daily targets (minor units: kcal and grams)
	TargetCalories int
	TargetProteinG int
	TargetCarbsG   int
	TargetFatG     int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/lifedash.db"),
		FixturesDir:  getEnv("FIXTURES_DIR", "./data/fixtures"),
		SummaryTTL:   getEnvDuration("SUMMARY_CACHE_TTL", 5*time.Minute),
		SummarySlots: getEnvInt("SUMMARY_CACHE_SIZE", 200),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "lifedash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Changes"),

		TargetCalories: getEnvInt("TARGET_CALORIES", 2000),
		TargetProteinG: getEnvInt("TARGET_PROTEIN_G", 120),
		TargetCarbsG:   getEnvInt("TARGET_CARBS_G", 250),
		TargetFatG:     getEnvInt("TARGET_FAT_G", 70),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "memory":
		// Fixtures directory is optional; an absent one yields an empty store.
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [sqlite memory]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SummaryTTL < time.Second || c.SummaryTTL > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid summary cache TTL %v: must be between 1s and 24h", c.SummaryTTL))
	}
	if c.SummarySlots < 1 {
		errs = append(errs, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummarySlots))
	}

	for name, v := range map[string]int{
		"TARGET_CALORIES":  c.TargetCalories,
		"TARGET_PROTEIN_G": c.TargetProteinG,
		"TARGET_CARBS_G":   c.TargetCarbsG,
		"TARGET_FAT_G":     c.TargetFatG,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("invalid %s %d: must not be negative", name, v))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
