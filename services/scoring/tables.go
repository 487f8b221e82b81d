package scoring

// Historical accuracy per pattern: the fraction of past occurrences that
// reached their target. Fixed configuration, not learned at runtime.
var patternAccuracy = map[string]float64{
	"ACCUMULATION":           0.62,
	"BREAKOUT":               0.68,
	"GOLDEN_CROSS":           0.70,
	"MACD_BULLISH_CROSS":     0.64,
	"OVERSOLD_REVERSAL":      0.58,
	"RSI_RECOVERY":           0.55,
	"SUPPORT_BOUNCE":         0.60,
	"VOLUME_SPIKE":           0.52,
	"HIGHER_LOWS":            0.63,
	"BOLLINGER_SQUEEZE":      0.54,
	"BULLISH_ENGULFING":      0.61,
	"CUP_AND_HANDLE":         0.75,
	"DOUBLE_BOTTOM":          0.71,
	"ASCENDING_TRIANGLE":     0.69,
	"FALLING_WEDGE":          0.66,
	"INVERSE_HEAD_SHOULDERS": 0.72,
	"FLAT_BASE":              0.57,
	"PULLBACK_TO_MA":         0.59,
	"GAP_FILL":               0.48,
	"THREE_WHITE_SOLDIERS":   0.45,
}

// Strength weight per pattern: how much a single occurrence moves the
// pattern subscore relative to the others.
var patternStrength = map[string]float64{
	"ACCUMULATION":           1.40,
	"BREAKOUT":               1.80,
	"GOLDEN_CROSS":           1.70,
	"MACD_BULLISH_CROSS":     1.30,
	"OVERSOLD_REVERSAL":      1.20,
	"RSI_RECOVERY":           1.00,
	"SUPPORT_BOUNCE":         1.25,
	"VOLUME_SPIKE":           0.95,
	"HIGHER_LOWS":            1.35,
	"BOLLINGER_SQUEEZE":      1.05,
	"BULLISH_ENGULFING":      1.15,
	"CUP_AND_HANDLE":         2.00,
	"DOUBLE_BOTTOM":          1.85,
	"ASCENDING_TRIANGLE":     1.75,
	"FALLING_WEDGE":          1.50,
	"INVERSE_HEAD_SHOULDERS": 1.90,
	"FLAT_BASE":              1.10,
	"PULLBACK_TO_MA":         1.15,
	"GAP_FILL":               0.95,
	"THREE_WHITE_SOLDIERS":   1.00,
}

const (
	defaultAccuracy = 0.50
	defaultStrength = 1.00
)

func accuracyOf(pattern string) float64 {
	if v, ok := patternAccuracy[pattern]; ok {
		return v
	}
	return defaultAccuracy
}

func strengthOf(pattern string) float64 {
	if v, ok := patternStrength[pattern]; ok {
		return v
	}
	return defaultStrength
}
