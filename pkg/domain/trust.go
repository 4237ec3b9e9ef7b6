package domain

import (
	"fmt"
	"strconv"
	"strings"

	dErrors "itrust/pkg/domain-errors"
)

// TrustAmount is a fixed-point quantity of TRUST in thousandths (milliTRUST).
// 1 TRUST == 1000. The ledger never touches floating point; amounts are
// formatted as decimal strings only at the JSON boundary.
type TrustAmount int64

// VouchCost is the policy constant spent per vouch: 0.2 TRUST.
// It is stamped onto every event row so a future variable-cost policy does
// not require a schema change.
const VouchCost TrustAmount = 200

const trustScale = 1000

// TrustFromMilli wraps a raw milliTRUST value.
func TrustFromMilli(v int64) TrustAmount {
	return TrustAmount(v)
}

// ParseTrustAmount parses a decimal string such as "0.2" or "1" into a
// TrustAmount. At most three fractional digits are accepted.
func ParseTrustAmount(s string) (TrustAmount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "trust amount cannot be empty")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 3 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "trust amount supports at most three decimal places")
	}
	for len(frac) < 3 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid trust amount: "+s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid trust amount: "+s)
	}
	v := w*trustScale + f
	if neg {
		v = -v
	}
	return TrustAmount(v), nil
}

// Milli returns the raw milliTRUST value for storage.
func (a TrustAmount) Milli() int64 {
	return int64(a)
}

// IsNegative reports whether the amount is below zero.
func (a TrustAmount) IsNegative() bool {
	return a < 0
}

// Sub returns a minus other.
func (a TrustAmount) Sub(other TrustAmount) TrustAmount {
	return a - other
}

// Add returns a plus other.
func (a TrustAmount) Add(other TrustAmount) TrustAmount {
	return a + other
}

// String renders the amount as a decimal such as "0.2", "1.0" or "-0.25".
// A whole TRUST keeps one fractional digit to match the UI's display style.
func (a TrustAmount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / trustScale
	frac := v % trustScale
	if frac == 0 {
		return fmt.Sprintf("%s%d.0", sign, whole)
	}
	s := fmt.Sprintf("%s%d.%03d", sign, whole, frac)
	return strings.TrimRight(s, "0")
}

// MarshalJSON renders the amount as a JSON string, e.g. "0.8".
func (a TrustAmount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts either a JSON string ("0.2") or a bare number.
func (a *TrustAmount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTrustAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
