package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"breakoutBot/config"
	"breakoutBot/internal/adapters/binanceclient"
	"breakoutBot/internal/adapters/logger"
	"breakoutBot/internal/adapters/sqlite"
	"breakoutBot/internal/adapters/telegram"
	"breakoutBot/internal/app"
	"breakoutBot/internal/engine"
	"breakoutBot/internal/phase"
	"breakoutBot/internal/ports"
	"breakoutBot/internal/risk"
	"breakoutBot/internal/strategy"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	var appLogger ports.Logger
	if cfg.LogFormat == "zap" {
		zl, err := logger.NewZapLogger(cfg.LogLevel)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize zap logger: %v", err)
		}
		defer func() { _ = zl.Sync() }()
		appLogger = zl
	} else {
		appLogger = logger.NewStdLogger(cfg.LogLevel)
	}
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(context.Background(), "Database repository initialized")

	// 4. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:               cfg.APIKey,
		SecretKey:            cfg.SecretKey,
		UseTestnet:           cfg.IsTestnet,
		Logger:               appLogger,
		ReconnectDelay:       cfg.ReconnectDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	appLogger.Info(context.Background(), "Binance client initialized")

	// 5. Initialize Strategy
	strat, err := strategy.New(strategy.Config{
		DonchianPeriod: cfg.StrategyDonchianPeriod,
		ADXPeriod:      cfg.StrategyADXPeriod,
		ATRPeriod:      cfg.StrategyATRPeriod,
		ADXThreshold:   cfg.StrategyADXThreshold,
	}, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize breakout strategy")
		log.Fatalf("FATAL: Failed to initialize breakout strategy: %v", err)
	}
	appLogger.Info(context.Background(), "Breakout strategy initialized")

	// 6. Initialize Phase Manager
	phases, err := phase.NewManager(cfg.PhaseBands, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize phase manager")
		log.Fatalf("FATAL: Failed to initialize phase manager: %v", err)
	}
	appLogger.Info(context.Background(), "Phase manager initialized", map[string]interface{}{"bands": len(cfg.PhaseBands)})

	// 7. Initialize Risk Manager
	riskMgr, err := risk.NewManager(risk.Config{
		StopLossATRMultiplier:   cfg.StopLossATRMultiplier,
		TakeProfitATRMultiplier: cfg.TakeProfitATRMultiplier,
		RiskPerTrade:            cfg.RiskPerTrade,
		Leverage:                cfg.Leverage,
		TickSize:                cfg.TickSize,
	}, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize risk manager")
		log.Fatalf("FATAL: Failed to initialize risk manager: %v", err)
	}
	appLogger.Info(context.Background(), "Risk manager initialized")

	// 8. Initialize Decision Engine
	eng, err := engine.New(cfg.Symbol, strat, riskMgr, phases, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize decision engine")
		log.Fatalf("FATAL: Failed to initialize decision engine: %v", err)
	}
	appLogger.Info(context.Background(), "Decision engine initialized")

	// 9. Initialize Telegram Notifier (optional)
	var notifier ports.Notifier
	if cfg.TelegramToken != "" {
		tg, err := telegram.NewNotifier(telegram.Config{
			Token:  cfg.TelegramToken,
			ChatID: cfg.TelegramChatID,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Telegram notifier")
			log.Fatalf("FATAL: Failed to initialize Telegram notifier: %v", err)
		}
		notifier = tg
		appLogger.Info(context.Background(), "Telegram notifier initialized")
	} else {
		appLogger.Info(context.Background(), "Telegram notifier disabled (no token configured)")
	}

	// 10. Initialize Application Service
	decisionService, err := app.NewService(
		cfg,
		appLogger,
		binanceClient, // Pass the concrete implementation, service expects the interface
		repo,          // Pass the concrete implementation, service expects the interface
		notifier,
		eng,
		strat.RequiredDataPoints(),
	)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize decision service")
		log.Fatalf("FATAL: Failed to initialize decision service: %v", err)
	}
	appLogger.Info(context.Background(), "Decision service initialized")

	// 11. Start the Service
	// Use context.Background() as the base context for the application run
	if err := decisionService.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Decision service exited with error")
		log.Fatalf("FATAL: Decision service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
