package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"breakoutBot/internal/adapters/logger" // Import the logger package for LogLevel
	"breakoutBot/internal/phase"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Trading Parameters
	Symbol       string
	Interval     string  // Bar interval driving the evaluation cycle (e.g., "1h")
	QuoteAsset   string  // Asset the balance is read in (e.g., "USDT")
	Leverage     int
	RiskPerTrade float64 // Fraction of balance risked per trade (e.g., 0.04 for 4%)
	TickSize     float64 // Minimum tradable increment of the instrument

	// Max actionable decisions per UTC day; 0 disables the cap
	MaxDecisionsPerDay int

	// Strategy Parameters
	StrategyDonchianPeriod int     // e.g., 20
	StrategyADXPeriod      int     // e.g., 14
	StrategyATRPeriod      int     // e.g., 14
	StrategyADXThreshold   float64 // e.g., 25.0

	// Risk Parameters
	StopLossATRMultiplier   float64 // e.g., 1.5
	TakeProfitATRMultiplier float64 // e.g., 3.0

	// Phase bands (loaded from a YAML file, never hardcoded)
	PhasesPath string
	PhaseBands []phase.Band

	// Database
	DBPath string

	// Telegram notification (optional; empty token disables delivery)
	TelegramToken  string
	TelegramChatID int64

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string          // "std" or "zap"

	// Connection Settings
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// LoadConfig loads configuration from environment variables (.env file) and
// the phase-band YAML file.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	if cfg.APIKey == "" {
		errs = append(errs, "BINANCE_API_KEY must be set")
	}
	if cfg.SecretKey == "" {
		errs = append(errs, "BINANCE_API_SECRET must be set")
	}

	// Trading Parameters
	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.Interval = getEnv("INTERVAL", "1h")
	cfg.QuoteAsset = getEnv("QUOTE_ASSET", "USDT")

	cfg.Leverage, err = getEnvAsIntRequired("LEVERAGE", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEVERAGE: %v", err))
	} else if cfg.Leverage <= 0 {
		errs = append(errs, "LEVERAGE must be positive")
	}

	cfg.RiskPerTrade, err = getEnvAsFloatRequired("RISK_PER_TRADE", 0.04)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_PER_TRADE: %v", err))
	} else if cfg.RiskPerTrade <= 0 || cfg.RiskPerTrade >= 1.0 {
		errs = append(errs, "RISK_PER_TRADE must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.TickSize, err = getEnvAsFloatRequired("TICK_SIZE", 0.0001)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TICK_SIZE: %v", err))
	} else if cfg.TickSize <= 0 {
		errs = append(errs, "TICK_SIZE must be positive")
	}

	cfg.MaxDecisionsPerDay = getEnvAsInt("MAX_DECISIONS_PER_DAY", 5)
	if cfg.MaxDecisionsPerDay < 0 {
		errs = append(errs, "MAX_DECISIONS_PER_DAY cannot be negative")
	}

	// Strategy Parameters (using defaults if not set)
	cfg.StrategyDonchianPeriod = getEnvAsInt("STRATEGY_DONCHIAN_PERIOD", 20)
	cfg.StrategyADXPeriod = getEnvAsInt("STRATEGY_ADX_PERIOD", 14)
	cfg.StrategyATRPeriod = getEnvAsInt("STRATEGY_ATR_PERIOD", 14)
	cfg.StrategyADXThreshold = getEnvAsFloat("STRATEGY_ADX_THRESHOLD", 25.0)

	if cfg.StrategyDonchianPeriod <= 0 || cfg.StrategyADXPeriod <= 0 || cfg.StrategyATRPeriod <= 0 {
		errs = append(errs, "strategy periods (Donchian, ADX, ATR) must be positive")
	}
	if cfg.StrategyADXThreshold < 0 || cfg.StrategyADXThreshold >= 100 {
		errs = append(errs, "STRATEGY_ADX_THRESHOLD must be in [0,100)")
	}

	// Risk Parameters
	cfg.StopLossATRMultiplier = getEnvAsFloat("STOP_LOSS_ATR_MULT", 1.5)
	cfg.TakeProfitATRMultiplier = getEnvAsFloat("TAKE_PROFIT_ATR_MULT", 3.0)
	if cfg.StopLossATRMultiplier <= 0 || cfg.TakeProfitATRMultiplier <= 0 {
		errs = append(errs, "ATR multipliers must be positive")
	}

	// Phase bands
	cfg.PhasesPath = getEnv("PHASES_PATH", "./phases.yaml")
	bands, err := LoadPhaseBands(cfg.PhasesPath)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid phase bands: %v", err))
	} else {
		cfg.PhaseBands = bands
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/decisions.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Telegram
	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	chatIDStr := getEnv("TELEGRAM_CHAT_ID", "0")
	cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TELEGRAM_CHAT_ID: %v", err))
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", "std"))
	if cfg.LogFormat != "std" && cfg.LogFormat != "zap" {
		errs = append(errs, "LOG_FORMAT must be 'std' or 'zap'")
	}

	// Connection Settings
	reconnectDelaySeconds := getEnvAsInt("RECONNECT_DELAY_SECONDS", 5)
	if reconnectDelaySeconds <= 0 {
		errs = append(errs, "RECONNECT_DELAY_SECONDS must be positive")
	}
	cfg.ReconnectDelay = time.Duration(reconnectDelaySeconds) * time.Second

	cfg.MaxReconnectAttempts = getEnvAsInt("MAX_RECONNECT_ATTEMPTS", 10)
	if cfg.MaxReconnectAttempts < 0 {
		errs = append(errs, "MAX_RECONNECT_ATTEMPTS cannot be negative")
	}

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// phasesFile mirrors the YAML layout of the phase-band configuration file:
//
//	phases:
//	  - level: 1
//	    lower_bound: 10000
//	    upper_bound: 25000
//	    lot_factor: 1.0
type phasesFile struct {
	Phases []struct {
		Level      int     `yaml:"level"`
		LowerBound float64 `yaml:"lower_bound"`
		UpperBound float64 `yaml:"upper_bound"`
		LotFactor  float64 `yaml:"lot_factor"`
	} `yaml:"phases"`
}

// LoadPhaseBands reads the ordered phase bands from a YAML file. Structural
// validation (contiguity, ordering) happens in the phase manager; this only
// parses.
func LoadPhaseBands(path string) ([]phase.Band, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read phase config '%s': %w", path, err)
	}

	var pf phasesFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse phase config '%s': %w", path, err)
	}
	if len(pf.Phases) == 0 {
		return nil, fmt.Errorf("phase config '%s' defines no phases", path)
	}

	bands := make([]phase.Band, 0, len(pf.Phases))
	for _, p := range pf.Phases {
		bands = append(bands, phase.Band{
			Level:      p.Level,
			LowerBound: p.LowerBound,
			UpperBound: p.UpperBound,
			LotFactor:  p.LotFactor,
		})
	}
	return bands, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
