package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Mode selects the signal regime: swing (2h cadence, wide targets) or
// scalp (5m evaluation cadence, tight targets). The regime is a single
// process-wide flag, never a per-signal attribute.
const (
	ModeSwing = "swing"
	ModeScalp = "scalp"
)

// Config holds all runtime configuration. Loaded once at startup and
// treated as read-only afterwards.
type Config struct {
	Port        string
	Environment string

	// Messaging sink
	TelegramToken  string
	TelegramChatID int64

	// Schedule
	ScanIntervalMinutes int
	EvalIntervalMinutes int
	Mode                string

	// Emission filters
	MinVolumeQuote     float64
	MaxRSIEntry        float64
	MaxChannelPosition float64

	// Scoring weights (must sum to 1.0)
	PatternWeight  float64
	TrendWeight    float64
	VolumeWeight   float64
	MomentumWeight float64

	// Classification thresholds
	StrongBuyThreshold float64
	BuyThreshold       float64
	PotentialThreshold float64

	// Upstreams
	QuoteCurrency      string
	TickerAPIURL       string
	EquityAPIURL       string
	EquitySymbols      []string
	EquityLookbackDays int

	// Persisted state
	SignalsFile  string
	LastScanFile string
}

// LoadConfig loads environment variables into a typed Config
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	mode := strings.ToLower(getEnv("MODE", ModeSwing))

	evalDefault := 120
	if mode == ModeScalp {
		evalDefault = 5
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),

		ScanIntervalMinutes: getEnvInt("SCAN_INTERVAL_MINUTES", 120),
		EvalIntervalMinutes: getEnvInt("EVAL_INTERVAL_MINUTES", evalDefault),
		Mode:                mode,

		MinVolumeQuote:     getEnvFloat("MIN_VOLUME_QUOTE", 1_000_000),
		MaxRSIEntry:        getEnvFloat("MAX_RSI_ENTRY", 70),
		MaxChannelPosition: getEnvFloat("MAX_CHANNEL_POSITION", 85),

		StrongBuyThreshold: getEnvFloat("STRONG_BUY_THRESHOLD", 80),
		BuyThreshold:       getEnvFloat("BUY_THRESHOLD", 65),
		PotentialThreshold: getEnvFloat("POTENTIAL_THRESHOLD", 50),

		QuoteCurrency:      strings.ToUpper(getEnv("QUOTE_CURRENCY", "TRY")),
		TickerAPIURL:       getEnv("TICKER_API_URL", "https://api.btcturk.com/api/v2/ticker"),
		EquityAPIURL:       getEnv("EQUITY_API_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
		EquitySymbols:      splitList(getEnv("EQUITY_SYMBOLS", "THYAO.IS,ASELS.IS,GARAN.IS,AKBNK.IS,EREGL.IS")),
		EquityLookbackDays: getEnvInt("EQUITY_LOOKBACK_DAYS", 60),

		SignalsFile:  getEnv("SIGNALS_FILE", "signals.json"),
		LastScanFile: getEnv("LAST_SCAN_FILE", "last_scan.json"),
	}

	weights := splitList(getEnv("SCORING_WEIGHTS", "0.40,0.25,0.20,0.15"))
	if len(weights) != 4 {
		return nil, fmt.Errorf("SCORING_WEIGHTS must contain exactly 4 values, got %d", len(weights))
	}
	parsed := make([]float64, 4)
	for i, w := range weights {
		v, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid scoring weight %q: %w", w, err)
		}
		parsed[i] = v
	}
	cfg.PatternWeight, cfg.TrendWeight, cfg.VolumeWeight, cfg.MomentumWeight = parsed[0], parsed[1], parsed[2], parsed[3]

	return cfg, nil
}

// Validate checks the configuration invariants. The process must exit
// non-zero before scheduling starts when validation fails.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if c.ScanIntervalMinutes <= 0 {
		return fmt.Errorf("SCAN_INTERVAL_MINUTES must be positive, got %d", c.ScanIntervalMinutes)
	}
	if c.EvalIntervalMinutes <= 0 {
		return fmt.Errorf("EVAL_INTERVAL_MINUTES must be positive, got %d", c.EvalIntervalMinutes)
	}
	if c.Mode != ModeSwing && c.Mode != ModeScalp {
		return fmt.Errorf("MODE must be %q or %q, got %q", ModeSwing, ModeScalp, c.Mode)
	}
	if c.MaxRSIEntry < 60 || c.MaxRSIEntry > 80 {
		return fmt.Errorf("MAX_RSI_ENTRY must be in [60,80], got %g", c.MaxRSIEntry)
	}
	if c.EquityLookbackDays < 5 || c.EquityLookbackDays > 180 {
		return fmt.Errorf("EQUITY_LOOKBACK_DAYS must be in [5,180], got %d", c.EquityLookbackDays)
	}

	// Integer arithmetic on scaled weights avoids float drift on the sum.
	sum := scaled(c.PatternWeight) + scaled(c.TrendWeight) + scaled(c.VolumeWeight) + scaled(c.MomentumWeight)
	if sum != 10000 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %g",
			c.PatternWeight+c.TrendWeight+c.VolumeWeight+c.MomentumWeight)
	}

	for _, w := range []float64{c.PatternWeight, c.TrendWeight, c.VolumeWeight, c.MomentumWeight} {
		if w < 0 {
			return fmt.Errorf("scoring weights must be non-negative, got %g", w)
		}
	}
	return nil
}

func scaled(w float64) int {
	return int(math.Round(w * 10000))
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %g", key, value, defaultValue)
		return defaultValue
	}
	return f
}
