package indicators

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

func TestDonchian_Calculate(t *testing.T) {
	// Highs 12..16, lows 10..14; the last bar is the evaluation bar and must
	// stay outside the channel window.
	bars := []*domain.Bar{
		{High: 12, Low: 10, Close: 11},
		{High: 13, Low: 11, Close: 12},
		{High: 14, Low: 12, Close: 13},
		{High: 15, Low: 13, Close: 14},
		{High: 16, Low: 14, Close: 15},
	}

	tests := []struct {
		name          string
		config        DonchianConfig
		bars          []*domain.Bar
		expectedUpper float64
		expectedLower float64
		expectError   bool
	}{
		{
			name:   "Window excludes the evaluation bar",
			config: DonchianConfig{IndicatorConfig: IndicatorConfig{Period: 3}},
			bars:   bars,
			// Bars 1..3: highs 13,14,15 and lows 11,12,13
			expectedUpper: 15,
			expectedLower: 11,
		},
		{
			name:          "Window covers everything but the last bar",
			config:        DonchianConfig{IndicatorConfig: IndicatorConfig{Period: 4}},
			bars:          bars,
			expectedUpper: 15,
			expectedLower: 10,
		},
		{
			name:        "Insufficient data",
			config:      DonchianConfig{IndicatorConfig: IndicatorConfig{Period: 5}},
			bars:        bars,
			expectError: true,
		},
		{
			name:   "Extremes in the middle of the window",
			config: DonchianConfig{IndicatorConfig: IndicatorConfig{Period: 3}},
			bars: []*domain.Bar{
				{High: 11, Low: 9, Close: 10},
				{High: 20, Low: 5, Close: 10},
				{High: 12, Low: 8, Close: 10},
				{High: 13, Low: 9, Close: 10},
			},
			expectedUpper: 20,
			expectedLower: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			donchian := NewDonchian(tt.config)
			ch, err := donchian.Calculate(context.Background(), tt.bars)

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
			if ch.Upper != tt.expectedUpper {
				t.Errorf("Expected upper %f, got %f", tt.expectedUpper, ch.Upper)
			}
			if ch.Lower != tt.expectedLower {
				t.Errorf("Expected lower %f, got %f", tt.expectedLower, ch.Lower)
			}
		})
	}
}

func TestDonchian_UpperNeverBelowLower(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	donchian := NewDonchian(DonchianConfig{IndicatorConfig: IndicatorConfig{Period: 20}})

	for run := 0; run < 50; run++ {
		bars := make([]*domain.Bar, 30)
		for i := range bars {
			low := 1000 + rng.Float64()*100
			bars[i] = &domain.Bar{High: low + rng.Float64()*50, Low: low}
		}
		ch, err := donchian.Calculate(context.Background(), bars)
		if err != nil {
			t.Fatalf("Unexpected error on run %d: %v", run, err)
		}
		if ch.Upper < ch.Lower {
			t.Fatalf("Run %d: upper %f below lower %f", run, ch.Upper, ch.Lower)
		}
	}
}
