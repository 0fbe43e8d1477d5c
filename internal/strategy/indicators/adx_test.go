package indicators

import (
	"context"
	"errors"
	"testing"

	"breakoutBot/internal/domain"
	"breakoutBot/internal/ports"
)

func trendBars(n int, scale float64) []*domain.Bar {
	bars := make([]*domain.Bar, n)
	for i := range bars {
		f := float64(i)
		bars[i] = &domain.Bar{
			High:  (f + 2) * scale,
			Low:   f * scale,
			Close: (f + 1) * scale,
		}
	}
	return bars
}

func TestADX_Calculate(t *testing.T) {
	tests := []struct {
		name          string
		config        ADXConfig
		bars          []*domain.Bar
		expectedValue float64
		expectError   bool
	}{
		{
			name:   "Monotonic uptrend saturates the index",
			config: ADXConfig{IndicatorConfig: IndicatorConfig{Period: 3}},
			bars:   trendBars(10, 1),
			// Every delta is an up move, so DX is 100 on every bar
			expectedValue: 100,
		},
		{
			name:   "Choppy overlapping ranges stay weak",
			config: ADXConfig{IndicatorConfig: IndicatorConfig{Period: 3}},
			bars: []*domain.Bar{
				{High: 10, Low: 8, Close: 9},
				{High: 12, Low: 9, Close: 11},
				{High: 11, Low: 7, Close: 8},
				{High: 13, Low: 9.5, Close: 12},
				{High: 12, Low: 7.5, Close: 8.5},
				{High: 14, Low: 10, Close: 13},
				{High: 12.5, Low: 8, Close: 9},
			},
			expectedValue: 22.633745,
		},
		{
			name:   "Flat series has no trend at all",
			config: ADXConfig{IndicatorConfig: IndicatorConfig{Period: 3}},
			bars: []*domain.Bar{
				{High: 10, Low: 10, Close: 10},
				{High: 10, Low: 10, Close: 10},
				{High: 10, Low: 10, Close: 10},
				{High: 10, Low: 10, Close: 10},
				{High: 10, Low: 10, Close: 10},
			},
			expectedValue: 0,
		},
		{
			name:        "Insufficient data",
			config:      ADXConfig{IndicatorConfig: IndicatorConfig{Period: 14}},
			bars:        trendBars(10, 1),
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adx := NewADX(tt.config)
			value, err := adx.Calculate(context.Background(), tt.bars)

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
			if value < 0 || value > 100 {
				t.Errorf("ADX %f outside [0,100]", value)
			}

			// Allow for small floating point differences
			if value-tt.expectedValue > 0.0001 || value-tt.expectedValue < -0.0001 {
				t.Errorf("Expected value %f, got %f", tt.expectedValue, value)
			}
		})
	}
}

// The index is a pure ratio, so rescaling every price must not move it.
func TestADX_ScaleInvariance(t *testing.T) {
	adx := NewADX(ADXConfig{IndicatorConfig: IndicatorConfig{Period: 3}})

	base, err := adx.Calculate(context.Background(), trendBars(10, 1))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	scaled, err := adx.Calculate(context.Background(), trendBars(10, 10))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if base-scaled > 0.0001 || base-scaled < -0.0001 {
		t.Errorf("Expected scale invariance, got %f vs %f", base, scaled)
	}
}
