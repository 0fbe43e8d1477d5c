package indicators

import (
	"context"
	"errors"
	"testing"
	"time"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

func TestATR_Calculate(t *testing.T) {
	now := time.Now()
	bars := []*domain.Bar{
		{OpenTime: now.Add(-4 * time.Hour), High: 10, Low: 8, Close: 9}, // seed bar
		{OpenTime: now.Add(-3 * time.Hour), High: 11, Low: 9, Close: 10}, // TR = 2
		{OpenTime: now.Add(-2 * time.Hour), High: 12, Low: 10, Close: 11}, // TR = 2
		{OpenTime: now.Add(-1 * time.Hour), High: 14, Low: 11, Close: 13}, // TR = 3
		{OpenTime: now, High: 13, Low: 12, Close: 12.5}, // TR = 1
	}

	tests := []struct {
		name          string
		config        ATRConfig
		bars          []*domain.Bar
		expectedValue float64
		expectError   bool
	}{
		{
			name:   "ATR with Wilder smoothing past the seed average",
			config: ATRConfig{IndicatorConfig: IndicatorConfig{Period: 3}},
			bars:   bars,
			// Seed SMA (2+2+3)/3, then (seed*2 + 1)/3
			expectedValue: 17.0 / 9.0,
			expectError:   false,
		},
		{
			name:          "Insufficient data",
			config:        ATRConfig{IndicatorConfig: IndicatorConfig{Period: 5}},
			bars:          bars,
			expectedValue: 0,
			expectError:   true,
		},
		{
			name:   "Constant range without gaps",
			config: ATRConfig{IndicatorConfig: IndicatorConfig{Period: 3}},
			bars: []*domain.Bar{
				{High: 12, Low: 10, Close: 11},
				{High: 12, Low: 10, Close: 11},
				{High: 12, Low: 10, Close: 11},
				{High: 12, Low: 10, Close: 11},
				{High: 12, Low: 10, Close: 11},
			},
			expectedValue: 2.0,
			expectError:   false,
		},
		{
			name:   "Gap up dominates the bar range",
			config: ATRConfig{IndicatorConfig: IndicatorConfig{Period: 2}},
			bars: []*domain.Bar{
				{High: 10, Low: 9, Close: 10},
				// Gap: high-prevClose = 10 beats high-low = 2
				{High: 20, Low: 18, Close: 19},
				{High: 20, Low: 18, Close: 19},
			},
			// TRs are 10 and 2, seed SMA = 6
			expectedValue: 6.0,
			expectError:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atr := NewATR(tt.config)
			value, err := atr.Calculate(context.Background(), tt.bars)

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				if !errors.Is(err, ports.ErrInsufficientData) {
					t.Errorf("Expected ErrInsufficientData, got %v", err)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			// Allow for small floating point differences
			if value-tt.expectedValue > 0.0001 || value-tt.expectedValue < -0.0001 {
				t.Errorf("Expected value %f, got %f", tt.expectedValue, value)
			}
		})
	}
}

// The true range is linear in price, so doubling every price must exactly
// double the ATR.
func TestATR_ScaleInvariance(t *testing.T) {
	atr := NewATR(ATRConfig{IndicatorConfig: IndicatorConfig{Period: 3}})

	bars := []*domain.Bar{
		{High: 10, Low: 8, Close: 9},
		{High: 11, Low: 9, Close: 10},
		{High: 12, Low: 10, Close: 11},
		{High: 14, Low: 11, Close: 13},
		{High: 13, Low: 12, Close: 12.5},
	}
	doubled := make([]*domain.Bar, len(bars))
	for i, b := range bars {
		doubled[i] = &domain.Bar{High: 2 * b.High, Low: 2 * b.Low, Close: 2 * b.Close}
	}

	base, err := atr.Calculate(context.Background(), bars)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	scaled, err := atr.Calculate(context.Background(), doubled)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if diff := scaled - 2*base; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("Expected doubled ATR %f, got %f", 2*base, scaled)
	}
}

func TestATR_RequiredDataPoints(t *testing.T) {
	atr := NewATR(ATRConfig{IndicatorConfig: IndicatorConfig{Period: 14}})
	if got := atr.RequiredDataPoints(); got != 15 {
		t.Errorf("Expected 15 required data points, got %d", got)
	}
}
