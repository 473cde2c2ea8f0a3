package reconcile

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/adrecon/internal/model"
)

// TypeRule assigns a column kind to every column whose name is listed in
// Exact or contains one of Tokens (case-insensitive).
type TypeRule struct {
	Name   string
	Kind   model.ColumnKind
	Exact  []string
	Tokens []string
}

// Matches reports whether the rule applies to col.
func (r TypeRule) Matches(col string) bool {
	for _, e := range r.Exact {
		if col == e {
			return true
		}
	}
	lower := strings.ToLower(col)
	for _, tok := range r.Tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// TypeRules is the ordered column typing table. The first matching rule
// wins; columns matching none are text.
var TypeRules = []TypeRule{
	{
		Name: "key",
		Kind: model.KindText,
		Exact: append([]string{
			model.ColPlanName,
			model.ColPlanID,
			model.ColDate,
			model.ColAgentSource,
		}, model.DimensionColumns...),
	},
	{
		Name:   "rate",
		Kind:   model.KindRate,
		Tokens: []string{"rate", "率"},
	},
	{
		Name: "numeric",
		Kind: model.KindNumber,
		Tokens: []string{
			"spend", "cost", "amount", "count", "impression", "click", "download", "install",
			"花费", "曝光", "点击", "下载", "安装", "金额", "人数", "成本", "笔数",
		},
	},
}

// Classify returns the kind of col under TypeRules.
func Classify(col string) model.ColumnKind {
	for _, r := range TypeRules {
		if r.Matches(col) {
			return r.Kind
		}
	}
	return model.KindText
}

// ParseNumber converts a cell to a number. Null tokens ("", "nan", "none")
// and unparsable text become nil; thousands separators are ignored. For
// rates a percent sign is stripped and the number kept as-is ("12.5%" is
// 12.5).
func ParseNumber(v *string, kind model.ColumnKind) *float64 {
	f, _ := parseNumber(v, kind)
	return f
}

// parseNumber also reports whether a non-null input failed to parse.
func parseNumber(v *string, kind model.ColumnKind) (*float64, bool) {
	if v == nil {
		return nil, false
	}
	s := strings.TrimSpace(*v)
	if kind == model.KindRate {
		s = strings.TrimSpace(strings.ReplaceAll(s, "%", ""))
	}
	if isNullToken(s) {
		return nil, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, true
	}
	return &f, false
}

// columnAliases copies a column to a second name after coercion to absorb
// naming drift between backend export versions.
var columnAliases = []struct{ from, to string }{
	{model.ColCreditSuccess, model.ColCreditCount},
	{model.ColLoanApproved, model.ColLoanSuccess},
}

// CoerceStats counts values that could not be parsed, per column.
type CoerceStats struct {
	Anomalies map[string]int
}

// Coerce types every column of t under TypeRules and converts its rows to
// records. Values that fail to parse become null.
func Coerce(t *Table) ([]model.Column, []model.Record, CoerceStats) {
	stats := CoerceStats{Anomalies: make(map[string]int)}

	columns := make([]model.Column, 0, len(t.Columns)+len(columnAliases))
	kinds := make(map[string]model.ColumnKind, len(t.Columns))
	for _, c := range t.Columns {
		k := Classify(c)
		kinds[c] = k
		columns = append(columns, model.Column{Name: c, Kind: k})
	}
	var aliases []struct{ from, to string }
	for _, a := range columnAliases {
		if _, ok := kinds[a.from]; !ok {
			continue
		}
		aliases = append(aliases, a)
		if _, ok := kinds[a.to]; !ok {
			kinds[a.to] = kinds[a.from]
			columns = append(columns, model.Column{Name: a.to, Kind: kinds[a.from]})
		}
	}

	records := make([]model.Record, len(t.Rows))
	for i, row := range t.Rows {
		rec := model.Record{
			PlanName:    row.String(model.ColPlanName),
			PlanID:      row.String(model.ColPlanID),
			Date:        row.Get(model.ColDate),
			AgentSource: model.AgentSource(row.String(model.ColAgentSource)),
		}
		for _, c := range t.Columns {
			switch {
			case c == model.ColPlanName, c == model.ColPlanID, c == model.ColDate, c == model.ColAgentSource:
			case model.IsDimension(c):
				rec.Dimensions.Set(c, row[c])
			case kinds[c].Numeric():
				f, bad := parseNumber(row[c], kinds[c])
				if bad {
					stats.Anomalies[c]++
				}
				if f != nil {
					rec.SetNumber(c, f)
				}
			default:
				if v := row[c]; v != nil {
					if rec.Text == nil {
						rec.Text = make(map[string]*string)
					}
					rec.Text[c] = v
				}
			}
		}
		for _, a := range aliases {
			if v := rec.Numbers[a.from]; v != nil {
				rec.SetNumber(a.to, v)
			} else {
				delete(rec.Numbers, a.to)
			}
		}
		records[i] = rec
	}

	for col, n := range stats.Anomalies {
		zap.L().Debug("reconcile: unparsable values coerced to null",
			zap.String("column", col),
			zap.Int("count", n),
		)
	}
	return columns, records, stats
}
