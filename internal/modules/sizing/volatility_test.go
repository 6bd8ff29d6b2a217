package sizing

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolatilityBasedCalculator_Calculate(t *testing.T) {
	calc := NewVolatilityBasedCalculator(zerolog.Nop())

	t.Run("default multiplier", func(t *testing.T) {
		result, err := calc.Calculate(CalculationRequest{
			Method:         MethodVolatilityBased,
			AccountValue:   100000,
			RiskPercentage: fp(0.02),
			EntryPrice:     fp(50),
			ATR:            fp(1.25),
		})
		require.NoError(t, err)

		// risk 2000 against a 2.50 stop distance
		require.NotNil(t, result.PositionSize)
		assert.Equal(t, int64(800), *result.PositionSize)
		assert.InDelta(t, 2.5, result.Details["per_unit_risk"], 1e-9)
		assert.InDelta(t, 40000.0, result.PositionValue, 1e-9)
		assert.InDelta(t, 0.05, result.StopLossPercentage, 1e-9)
	})

	t.Run("explicit multiplier", func(t *testing.T) {
		result, err := calc.Calculate(CalculationRequest{
			Method:         MethodVolatilityBased,
			AccountValue:   100000,
			RiskPercentage: fp(0.02),
			EntryPrice:     fp(50),
			ATR:            fp(1.25),
			ATRMultiplier:  fp(4.0),
		})
		require.NoError(t, err)

		require.NotNil(t, result.PositionSize)
		assert.Equal(t, int64(400), *result.PositionSize)
	})

	t.Run("higher volatility shrinks the position", func(t *testing.T) {
		base := CalculationRequest{
			Method:         MethodVolatilityBased,
			AccountValue:   100000,
			RiskPercentage: fp(0.02),
			EntryPrice:     fp(50),
		}

		prev := int64(1 << 40)
		for _, atr := range []float64{0.5, 1.0, 2.0, 4.0} {
			req := base
			req.ATR = fp(atr)
			result, err := calc.Calculate(req)
			require.NoError(t, err)
			require.NotNil(t, result.PositionSize)
			assert.LessOrEqual(t, *result.PositionSize, prev)
			prev = *result.PositionSize
		}
	})

	t.Run("zero atr is a domain error", func(t *testing.T) {
		_, err := calc.Calculate(CalculationRequest{
			Method:         MethodVolatilityBased,
			AccountValue:   100000,
			RiskPercentage: fp(0.02),
			EntryPrice:     fp(50),
			ATR:            fp(0),
		})
		require.Error(t, err)
		assert.IsType(t, &DomainError{}, err)
	})

	t.Run("buying power clamp", func(t *testing.T) {
		result, err := calc.Calculate(CalculationRequest{
			Method:         MethodVolatilityBased,
			AccountValue:   10000,
			RiskPercentage: fp(0.02),
			EntryPrice:     fp(50),
			ATR:            fp(0.02),
		})
		require.NoError(t, err)

		require.NotNil(t, result.PositionSize)
		assert.Equal(t, int64(200), *result.PositionSize)
		assert.Contains(t, result.Warnings, WarnLimitedByBalance)
	})
}
