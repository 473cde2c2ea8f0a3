package model

// Ratio divides num by den. The result is nil when either operand is nil or
// den is zero, so callers can tell "no attempts" apart from zero percent.
// Per-row unit costs and the daily rate trend use this form.
func Ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

// RatioOrZero divides num by den and returns 0 when den is zero. Headline
// totals use this form so they always render as a number.
func RatioOrZero(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
