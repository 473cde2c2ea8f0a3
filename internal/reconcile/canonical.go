package reconcile

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/adrecon/internal/model"
)

// CleanID renders a plan identifier as a stable join key. Null becomes "",
// whole numbers written as floats lose their fraction ("12345.0",
// "1.2345e4" and "1.234567890123456E+15" become plain digits), and
// everything else is trimmed.
func CleanID(v *string) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(*v)
	if !strings.ContainsAny(s, ".eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if f != math.Trunc(f) || math.Abs(f) >= maxExactFloat {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Integers above 2^53 are not exactly representable as float64.
const maxExactFloat = 1 << 53

const isoDate = "2006-01-02"

var dateLayouts = []string{
	isoDate,
	"2006/01/02",
	"2006.01.02",
	"20060102",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-1-2 15:04:05",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1-2-06",
	"1/2/06",
	"1/2/06 15:04",
	"2006年1月2日",
}

// Excel stores dates as days since 1899-12-30.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// NormalizeDate parses v permissively and returns it as YYYY-MM-DD, or nil
// when it cannot be read as a calendar date.
func NormalizeDate(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Ptr(t.Format(isoDate))
		}
	}
	// spreadsheet serial day number
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 1 && f < 2958466 {
		days := math.Floor(f)
		return model.Ptr(excelEpoch.AddDate(0, 0, int(days)).Format(isoDate))
	}
	return nil
}

// NormalizeEnum trims v and upper-cases it. Empty, "nan" and "none" (any
// case) are null.
func NormalizeEnum(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if isNullToken(s) {
		return nil
	}
	return model.Ptr(strings.ToUpper(s))
}

func isNullToken(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "none":
		return true
	}
	return false
}

// ageAliases collapses alternate spellings of the same age range.
var ageAliases = map[string]string{
	"24～54岁": "24-54岁",
	"24至54岁": "24-54岁",
	"24~54岁": "24-54岁",
}

// NormalizeAge maps known age bucket synonyms to their canonical spelling.
// Unknown values are returned unchanged.
func NormalizeAge(v *string) *string {
	if v == nil {
		return nil
	}
	if canon, ok := ageAliases[*v]; ok {
		return model.Ptr(canon)
	}
	return v
}

// CanonicalizeKeys cleans the plan id and date of every row in place.
func CanonicalizeKeys(t *Table) {
	for _, r := range t.Rows {
		r[model.ColPlanID] = model.Ptr(CleanID(r[model.ColPlanID]))
		r[model.ColDate] = NormalizeDate(r[model.ColDate])
	}
}

// CanonicalizeDimensions normalizes the enumerated dimension columns of
// every row in place.
func CanonicalizeDimensions(t *Table) {
	for _, r := range t.Rows {
		r[model.ColBiddingMethod] = NormalizeEnum(r[model.ColBiddingMethod])
		r[model.ColTargeting] = NormalizeEnum(r[model.ColTargeting])
		r[model.ColAgeBucket] = NormalizeAge(r[model.ColAgeBucket])
	}
}
