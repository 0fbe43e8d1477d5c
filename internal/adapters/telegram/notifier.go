package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

// Notifier implements ports.Notifier by pushing decision messages to a
// Telegram chat.
type Notifier struct {
	bot    *tgbot.BotAPI
	chatID int64
	logger ports.Logger
}

// Config holds configuration for the Telegram notifier.
type Config struct {
	Token  string
	ChatID int64
	Logger ports.Logger
}

// NewNotifier creates a new Telegram notifier instance.
func NewNotifier(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token is required for Telegram notifier")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("chat ID is required for Telegram notifier")
	}

	bot, err := tgbot.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	cfg.Logger.Info(context.Background(), "Telegram notifier initialized", map[string]interface{}{"botUser": bot.Self.UserName})

	return &Notifier{bot: bot, chatID: cfg.ChatID, logger: cfg.Logger}, nil
}

// NotifyDecision renders the decision as a short human-readable message and
// sends it.
func (n *Notifier) NotifyDecision(ctx context.Context, decision *domain.Decision) error {
	msg := tgbot.NewMessage(n.chatID, FormatDecision(decision))
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error(ctx, err, "Failed to send Telegram notification", map[string]interface{}{"decisionID": decision.ID})
		return fmt.Errorf("failed to send Telegram notification: %w", err)
	}
	n.logger.Debug(ctx, "Telegram notification sent", map[string]interface{}{"decisionID": decision.ID})
	return nil
}

// FormatDecision builds the notification text for a decision record.
func FormatDecision(d *domain.Decision) string {
	var b strings.Builder

	switch d.Signal {
	case domain.Long:
		fmt.Fprintf(&b, "📈 %s LONG\n", d.Instrument)
	case domain.Short:
		fmt.Fprintf(&b, "📉 %s SHORT\n", d.Instrument)
	default:
		fmt.Fprintf(&b, "💤 %s no action\n", d.Instrument)
	}

	if d.Plan != nil {
		fmt.Fprintf(&b, "Entry: %.4f\n", d.Plan.EntryPrice)
		fmt.Fprintf(&b, "Stop Loss: %.4f\n", d.Plan.Risk.StopLoss)
		fmt.Fprintf(&b, "Take Profit: %.4f\n", d.Plan.Risk.TakeProfit)
		fmt.Fprintf(&b, "Size: %.4f\n", d.Plan.PositionSize)
	} else if d.Reason != "" {
		fmt.Fprintf(&b, "Note: %s\n", d.Reason)
	}

	fmt.Fprintf(&b, "Balance: %.2f | Phase %d", d.Balance, d.PhaseLevel)
	if d.PhaseChanged {
		b.WriteString(" (phase changed)")
	}
	fmt.Fprintf(&b, "\n%s", d.Timestamp.UTC().Format("2006-01-02 15:04 MST"))

	return b.String()
}
