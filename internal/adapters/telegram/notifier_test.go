package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"breakoutBot/internal/domain"
)

func TestFormatDecision(t *testing.T) {
	ts := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		decision    *domain.Decision
		contains    []string
		notContains []string
	}{
		{
			name: "long with full plan",
			decision: &domain.Decision{
				Instrument: "BTCUSDT",
				Signal:     domain.Long,
				Plan: &domain.TradePlan{
					EntryPrice:   50100,
					Risk:         domain.RiskLevels{StopLoss: 49700, TakeProfit: 50600},
					PositionSize: 0.12,
				},
				PhaseLevel: 1,
				Balance:    15000,
				Timestamp:  ts,
			},
			contains: []string{
				"BTCUSDT LONG",
				"Entry: 50100.0000",
				"Stop Loss: 49700.0000",
				"Take Profit: 50600.0000",
				"Size: 0.1200",
				"Balance: 15000.00 | Phase 1",
				"2026-08-29 14:00 UTC",
			},
			notContains: []string{"phase changed", "Note:"},
		},
		{
			name: "short signal",
			decision: &domain.Decision{
				Instrument: "ETHUSDT",
				Signal:     domain.Short,
				Plan: &domain.TradePlan{
					EntryPrice:   2000,
					Risk:         domain.RiskLevels{StopLoss: 2030, TakeProfit: 1940},
					PositionSize: 3.0,
				},
				PhaseLevel: 2,
				Balance:    30000,
				Timestamp:  ts,
			},
			contains: []string{"ETHUSDT SHORT", "Stop Loss: 2030.0000"},
		},
		{
			name: "none with phase transition",
			decision: &domain.Decision{
				Instrument:   "BTCUSDT",
				Signal:       domain.None,
				PhaseLevel:   2,
				PhaseChanged: true,
				Balance:      26000,
				Timestamp:    ts,
			},
			contains:    []string{"BTCUSDT no action", "Phase 2", "(phase changed)"},
			notContains: []string{"Entry:"},
		},
		{
			name: "downgraded signal carries the reason",
			decision: &domain.Decision{
				Instrument: "BTCUSDT",
				Signal:     domain.None,
				PhaseLevel: 1,
				Balance:    15000,
				Reason:     "downgraded LONG: position size rounds to zero",
				Timestamp:  ts,
			},
			contains: []string{"no action", "Note: downgraded LONG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FormatDecision(tt.decision)
			for _, want := range tt.contains {
				assert.True(t, strings.Contains(msg, want), "message %q missing %q", msg, want)
			}
			for _, unwanted := range tt.notContains {
				assert.False(t, strings.Contains(msg, unwanted), "message %q should not contain %q", msg, unwanted)
			}
		})
	}
}
