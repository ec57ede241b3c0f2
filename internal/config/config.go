package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application and engine configuration.
type Config struct {
	// Data source / app settings
	AlphaVantageAPIKey string
	Symbols            []string
	OutputSize         int
	LogLevel           string
	RequestTimeout     int // seconds
	Schedule           string

	// Postgres sync (optional, empty DSN disables)
	DatabaseURL string

	// Telegram push (optional, empty token disables)
	TelegramToken  string
	TelegramChatID int64

	// Indicator parameters
	RSIPeriod        int
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
	BBPeriod         int
	BBStdDev         float64
	ATRPeriod        int
	MAPeriods        []int
	VolumePeriod     int
	VolumeThreshold  float64
	KDJPeriod        int
	BIASPeriod       int

	// Detector parameters
	DivergenceWindow  int
	DivergenceMinDist int
	DivergenceMax     int
	SRLookback        int
	PatternTolerance  float64
	ChartSwingWindow  int
}

// Load initializes configuration from environment variables. A .env file
// is honored when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		AlphaVantageAPIKey: os.Getenv("ALPHAVANTAGE_API_KEY"),
		Symbols:            getEnvList("SYMBOLS", []string{"AAPL"}),
		OutputSize:         getEnvInt("OUTPUT_SIZE", 120),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RequestTimeout:     getEnvInt("REQUEST_TIMEOUT", 30),
		Schedule:           os.Getenv("SCHEDULE"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		TelegramToken:      os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:     getEnvInt64("TELEGRAM_CHAT_ID", 0),

		RSIPeriod:        getEnvInt("RSI_PERIOD", 14),
		MACDFastPeriod:   getEnvInt("MACD_FAST_PERIOD", 12),
		MACDSlowPeriod:   getEnvInt("MACD_SLOW_PERIOD", 26),
		MACDSignalPeriod: getEnvInt("MACD_SIGNAL_PERIOD", 9),
		BBPeriod:         getEnvInt("BB_PERIOD", 20),
		BBStdDev:         getEnvFloat("BB_STD_DEV", 2.0),
		ATRPeriod:        getEnvInt("ATR_PERIOD", 14),
		MAPeriods:        getEnvIntList("MA_PERIODS", []int{5, 10, 20, 50, 200}),
		VolumePeriod:     getEnvInt("VOLUME_PERIOD", 20),
		VolumeThreshold:  getEnvFloat("VOLUME_THRESHOLD", 2.0),
		KDJPeriod:        getEnvInt("KDJ_PERIOD", 9),
		BIASPeriod:       getEnvInt("BIAS_PERIOD", 6),

		DivergenceWindow:  getEnvInt("DIVERGENCE_WINDOW", 3),
		DivergenceMinDist: getEnvInt("DIVERGENCE_MIN_DIST", 5),
		DivergenceMax:     getEnvInt("DIVERGENCE_MAX", 3),
		SRLookback:        getEnvInt("SR_LOOKBACK", 60),
		PatternTolerance:  getEnvFloat("PATTERN_TOLERANCE", 0.03),
		ChartSwingWindow:  getEnvInt("CHART_SWING_WINDOW", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-range parameters before any computation begins.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"RSI_PERIOD", c.RSIPeriod},
		{"MACD_FAST_PERIOD", c.MACDFastPeriod},
		{"MACD_SLOW_PERIOD", c.MACDSlowPeriod},
		{"MACD_SIGNAL_PERIOD", c.MACDSignalPeriod},
		{"BB_PERIOD", c.BBPeriod},
		{"ATR_PERIOD", c.ATRPeriod},
		{"VOLUME_PERIOD", c.VolumePeriod},
		{"KDJ_PERIOD", c.KDJPeriod},
		{"BIAS_PERIOD", c.BIASPeriod},
		{"DIVERGENCE_WINDOW", c.DivergenceWindow},
		{"DIVERGENCE_MIN_DIST", c.DivergenceMinDist},
		{"SR_LOOKBACK", c.SRLookback},
		{"CHART_SWING_WINDOW", c.ChartSwingWindow},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("config %s: must be positive, got %d", p.name, p.value)
		}
	}
	if c.MACDFastPeriod >= c.MACDSlowPeriod {
		return fmt.Errorf("config MACD_FAST_PERIOD: must be below MACD_SLOW_PERIOD (%d >= %d)",
			c.MACDFastPeriod, c.MACDSlowPeriod)
	}
	if c.BBStdDev <= 0 {
		return fmt.Errorf("config BB_STD_DEV: must be positive, got %g", c.BBStdDev)
	}
	if c.VolumeThreshold <= 0 {
		return fmt.Errorf("config VOLUME_THRESHOLD: must be positive, got %g", c.VolumeThreshold)
	}
	if c.PatternTolerance <= 0 || c.PatternTolerance >= 1 {
		return fmt.Errorf("config PATTERN_TOLERANCE: must be in (0,1), got %g", c.PatternTolerance)
	}
	if len(c.MAPeriods) == 0 {
		return fmt.Errorf("config MA_PERIODS: at least one period required")
	}
	for _, p := range c.MAPeriods {
		if p <= 0 {
			return fmt.Errorf("config MA_PERIODS: must be positive, got %d", p)
		}
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvIntList(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int
	for _, p := range strings.Split(value, ",") {
		if v, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
