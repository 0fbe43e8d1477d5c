package phase

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"breakoutBot/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	infoMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func testBands() []Band {
	return []Band{
		{Level: 1, LowerBound: 10000, UpperBound: 25000, LotFactor: 1.0},
		{Level: 2, LowerBound: 25000, UpperBound: 50000, LotFactor: 0.8},
		{Level: 3, LowerBound: 50000, UpperBound: 100000, LotFactor: 0.6},
		{Level: 4, LowerBound: 100000, LotFactor: 0.5},
	}
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name    string
		bands   []Band
		wantErr bool
	}{
		{
			name:  "valid contiguous bands",
			bands: testBands(),
		},
		{
			name:    "no bands",
			bands:   nil,
			wantErr: true,
		},
		{
			name: "levels out of order",
			bands: []Band{
				{Level: 2, LowerBound: 10000, UpperBound: 25000, LotFactor: 1.0},
				{Level: 1, LowerBound: 25000, LotFactor: 0.8},
			},
			wantErr: true,
		},
		{
			name: "gap between bands",
			bands: []Band{
				{Level: 1, LowerBound: 10000, UpperBound: 25000, LotFactor: 1.0},
				{Level: 2, LowerBound: 30000, LotFactor: 0.8},
			},
			wantErr: true,
		},
		{
			name: "overlapping bands",
			bands: []Band{
				{Level: 1, LowerBound: 10000, UpperBound: 25000, LotFactor: 1.0},
				{Level: 2, LowerBound: 20000, LotFactor: 0.8},
			},
			wantErr: true,
		},
		{
			name: "inverted bounds",
			bands: []Band{
				{Level: 1, LowerBound: 25000, UpperBound: 10000, LotFactor: 1.0},
				{Level: 2, LowerBound: 10000, LotFactor: 0.8},
			},
			wantErr: true,
		},
		{
			name: "non-positive lot factor",
			bands: []Band{
				{Level: 1, LowerBound: 10000, UpperBound: 25000, LotFactor: 0},
				{Level: 2, LowerBound: 25000, LotFactor: 0.8},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, err := NewManager(tt.bands, &mockLogger{})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ports.ErrPhaseConfig)
				assert.Nil(t, mgr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, mgr)
		})
	}

	_, err := NewManager(testBands(), nil)
	assert.Error(t, err)
}

func TestNewManager_LastBandIsOpenEnded(t *testing.T) {
	// A configured upper bound on the last band is ignored
	bands := testBands()
	bands[3].UpperBound = 200000

	mgr, err := NewManager(bands, &mockLogger{})
	require.NoError(t, err)

	phase, _, err := mgr.Resolve(context.Background(), 5000000)
	require.NoError(t, err)
	assert.Equal(t, 4, phase.Level)
	assert.True(t, math.IsInf(phase.UpperBound, 1))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		balance       float64
		expectedLevel int
		wantErr       bool
	}{
		{name: "inside the first band", balance: 15000, expectedLevel: 1},
		{name: "boundary belongs to the band above", balance: 25000, expectedLevel: 2},
		{name: "just below the boundary", balance: 24999.99, expectedLevel: 1},
		{name: "inside the third band", balance: 75000, expectedLevel: 3},
		{name: "open-ended last band", balance: 1000000, expectedLevel: 4},
		{name: "lowest bound is inclusive", balance: 10000, expectedLevel: 1},
		{name: "below the lowest bound", balance: 9999, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, err := NewManager(testBands(), &mockLogger{})
			require.NoError(t, err)

			phase, transitioned, err := mgr.Resolve(context.Background(), tt.balance)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ports.ErrPhaseConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedLevel, phase.Level)
			// The first resolution is never a transition
			assert.False(t, transitioned)
		})
	}
}

func TestResolve_Transitions(t *testing.T) {
	log := &mockLogger{}
	mgr, err := NewManager(testBands(), log)
	require.NoError(t, err)
	ctx := context.Background()

	// First cycle establishes the level without a transition
	phase, transitioned, err := mgr.Resolve(ctx, 24999)
	require.NoError(t, err)
	assert.Equal(t, 1, phase.Level)
	assert.False(t, transitioned)

	// Same band again: no transition
	_, transitioned, err = mgr.Resolve(ctx, 24000)
	require.NoError(t, err)
	assert.False(t, transitioned)

	// Balance crosses into band 2
	phase, transitioned, err = mgr.Resolve(ctx, 25001)
	require.NoError(t, err)
	assert.Equal(t, 2, phase.Level)
	assert.True(t, transitioned)
	assert.Contains(t, log.infoMsgs, "Phase transition")

	// Stays in band 2: the flag resets
	_, transitioned, err = mgr.Resolve(ctx, 26000)
	require.NoError(t, err)
	assert.False(t, transitioned)

	// Losses move the balance back down: transitions fire both ways
	phase, transitioned, err = mgr.Resolve(ctx, 20000)
	require.NoError(t, err)
	assert.Equal(t, 1, phase.Level)
	assert.True(t, transitioned)

	assert.Equal(t, 1, mgr.LastLevel())
}
