package vitals

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// criticalDeviation is the normalized excess above which a breach is
// critical: the reading sits more than half a band-width outside the band.
const criticalDeviation = 0.5

// Score returns how far value lies outside [low, high], in units of the
// band's width. It is zero inside the band and grows linearly outside it.
// high-low must be positive.
func Score(value, low, high float64) float64 {
	span := high - low
	return math.Max(math.Max((low-value)/span, (value-high)/span), 0)
}

// Classify maps a deviation to a severity. ok is false when the deviation
// does not warrant an alert.
func Classify(deviation float64) (sev Severity, ok bool) {
	switch {
	case deviation > criticalDeviation:
		return SeverityCritical, true
	case deviation > 0:
		return SeverityWarning, true
	}
	return "", false
}

// Evaluate scores value against r and classifies the result.
func (r VitalRange) Evaluate(value float64) (deviation float64, sev Severity, breached bool) {
	deviation = Score(value, r.Low, r.High)
	sev, breached = Classify(deviation)
	return deviation, sev, breached
}

// exactDigits covers the longest fractional expansion a float64 can have.
const exactDigits = 1074

// round2 rounds the exact binary value of f to two decimal places, ties to
// even. 2.675 is stored as 2.67499999... and so rounds down.
func round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	exact := new(big.Float).SetFloat64(f).Text('f', exactDigits)
	d, err := decimal.NewFromString(exact)
	if err != nil {
		return f
	}
	return d.RoundBank(2).InexactFloat64()
}
