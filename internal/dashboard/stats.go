package dashboard

import (
	"sort"
	"strings"

	"github.com/sells-group/adrecon/internal/model"
)

// TopN caps the spend breakdowns.
const TopN = 15

// Bidding categories.
const (
	CategoryOCPC  = "OCPC"
	CategoryCPC   = "CPC"
	CategoryOther = "OTHER"
)

var coreColumns = []string{
	model.ColSpend,
	model.ColImpressions,
	model.ColClicks,
	model.ColDownloads,
	model.ColInstalls,
}

// dailyOptional are summed per day when the snapshot has them.
var dailyOptional = []string{
	model.ColRegistrations,
	model.ColEntries,
	model.ColEntrySuccess,
	model.ColCreditSubmit,
	model.ColCreditSuccess,
	model.ColCreditCount,
	model.ColLoanApply,
	model.ColLoanSuccess,
	model.ColLoanUsers,
	model.ColLoanOrders,
	model.ColLoanAmount,
	model.ColSettlementSpend,
	model.ColCreditAmount,
}

// dailyZeroFill are always present in a daily row, zero when the snapshot
// lacks them.
var dailyZeroFill = []string{
	model.ColRegistrations,
	model.ColEntries,
	model.ColEntrySuccess,
	model.ColCreditSubmit,
	model.ColCreditSuccess,
	model.ColLoanApply,
	model.ColLoanSuccess,
	model.ColCreditAmount,
	model.ColLoanAmount,
	model.ColSettlementSpend,
}

// GroupSum is one group of a grouped sum.
type GroupSum struct {
	Key  string             `json:"key"`
	Sums map[string]float64 `json:"sums"`
}

// MixEntry is spend for one agent and bidding category.
type MixEntry struct {
	Agent    string  `json:"agent_source"`
	Category string  `json:"bidding_category"`
	Spend    float64 `json:"spend"`
}

// SpendShare is spend for one dimension value.
type SpendShare struct {
	Key   string  `json:"key"`
	Spend float64 `json:"spend"`
}

// RatePoint holds the funnel pass rates of one day. A nil rate means the
// stage had no attempts.
type RatePoint struct {
	Date       string   `json:"date"`
	EntryRate  *float64 `json:"entry_pass_rate"`
	CreditRate *float64 `json:"credit_pass_rate"`
	LoanRate   *float64 `json:"loan_pass_rate"`
}

// CostMetrics are unit costs over the filtered totals, zero when undefined.
type CostMetrics struct {
	Registration float64 `json:"registration_cost"`
	Entry        float64 `json:"entry_cost"`
	Credit       float64 `json:"credit_cost"`
	Loan         float64 `json:"loan_cost"`
	Download     float64 `json:"download_cost"`
}

// Totals are the headline figures. Averages are zero when undefined.
type Totals struct {
	Spend           float64 `json:"total_spend"`
	Settlement      float64 `json:"total_settlement"`
	Registrations   float64 `json:"total_register"`
	Entries         float64 `json:"total_entry"`
	EntrySuccess    float64 `json:"total_entry_success"`
	CreditSubmit    float64 `json:"total_credit_submit"`
	CreditSuccess   float64 `json:"total_credit"`
	LoanApply       float64 `json:"total_loan_apply"`
	LoanSuccess     float64 `json:"total_loan"`
	DisbursePeople  float64 `json:"total_disburse_people"`
	LoanOrders      float64 `json:"total_loan_orders"`
	LoanAmount      float64 `json:"total_loan_amount"`
	CreditAmount    float64 `json:"total_credit_amount"`
	Downloads       float64 `json:"total_downloads"`
	AvgCreditAmount float64 `json:"avg_credit_amount"`
	AvgLoanPerOrder float64 `json:"avg_loan_per_order"`
	AvgExecRate     float64 `json:"avg_exec_rate"`
}

// Statistics is the aggregation bundle for one filtered view.
type Statistics struct {
	Daily           []GroupSum   `json:"daily_stats"`
	Agents          []GroupSum   `json:"agent_stats"`
	Bidding         []GroupSum   `json:"bidding_stats"`
	AgentBiddingMix []MixEntry   `json:"agent_bidding_mix"`
	TargetingSpend  []SpendShare `json:"targeting_spend"`
	ResourceSpend   []SpendShare `json:"resource_spend"`
	RateTrend       []RatePoint  `json:"rate_trend"`
	CostMetrics     CostMetrics  `json:"cost_metrics"`
	Totals
}

// Compute filters s with f and aggregates the result.
func Compute(s *model.Snapshot, f Filter) *Statistics {
	return Aggregate(s, f.Apply(s))
}

// Aggregate builds the statistics over recs, which must belong to s.
func Aggregate(s *model.Snapshot, recs []*model.Record) *Statistics {
	st := &Statistics{
		Daily:   Daily(s, recs),
		Agents:  groupSums(recs, agentKey, present(s, coreColumns)),
		Bidding: groupSums(recs, dimKey(model.ColBiddingMethod), present(s, []string{model.ColSpend, model.ColImpressions, model.ColClicks})),
	}
	st.AgentBiddingMix = AgentBiddingMix(recs)
	st.TargetingSpend = TopSpend(recs, model.ColTargeting, TopN)
	st.ResourceSpend = TopSpend(recs, model.ColResourceSlot, TopN)
	st.RateTrend = RateTrend(st.Daily)
	st.Totals = HeadlineTotals(s, recs)
	st.CostMetrics = CostMetricsFor(st.Totals)
	return st
}

// present keeps the numeric columns of cols that s carries.
func present(s *model.Snapshot, cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if k, ok := s.Kind(c); ok && k.Numeric() {
			out = append(out, c)
		}
	}
	return out
}

type keyFunc func(r *model.Record) (string, bool)

func agentKey(r *model.Record) (string, bool) {
	return string(r.AgentSource), r.AgentSource != ""
}

func dateKey(r *model.Record) (string, bool) {
	if r.Date == nil {
		return "", false
	}
	return *r.Date, true
}

func dimKey(col string) keyFunc {
	return func(r *model.Record) (string, bool) {
		v := r.Dimensions.Get(col)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}

// groupSums sums cols per key, skipping records without a key and null
// values. Groups are sorted by key.
func groupSums(recs []*model.Record, key keyFunc, cols []string) []GroupSum {
	index := make(map[string]int)
	var groups []GroupSum
	for _, r := range recs {
		k, ok := key(r)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			sums := make(map[string]float64, len(cols))
			for _, c := range cols {
				sums[c] = 0
			}
			groups = append(groups, GroupSum{Key: k, Sums: sums})
		}
		for _, c := range cols {
			groups[i].Sums[c] += r.Float(c)
		}
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Key < groups[b].Key })
	if groups == nil {
		groups = []GroupSum{}
	}
	return groups
}

// Daily sums the core and available funnel columns per date, in date order.
// The fixed funnel columns are always present, zero when absent from s.
func Daily(s *model.Snapshot, recs []*model.Record) []GroupSum {
	cols := present(s, coreColumns)
	cols = append(cols, present(s, dailyOptional)...)
	days := groupSums(recs, dateKey, cols)
	for i := range days {
		for _, c := range dailyZeroFill {
			if _, ok := days[i].Sums[c]; !ok {
				days[i].Sums[c] = 0
			}
		}
	}
	return days
}

// BiddingCategory classifies a bidding method. OCPC is checked before CPC.
func BiddingCategory(method *string) string {
	if method == nil {
		return CategoryOther
	}
	text := strings.ToUpper(*method)
	switch {
	case strings.Contains(text, CategoryOCPC):
		return CategoryOCPC
	case strings.Contains(text, CategoryCPC):
		return CategoryCPC
	default:
		return CategoryOther
	}
}

// AgentBiddingMix sums spend by agent and bidding category, sorted by agent
// then category.
func AgentBiddingMix(recs []*model.Record) []MixEntry {
	type mixKey struct{ agent, category string }
	index := make(map[mixKey]int)
	out := []MixEntry{}
	for _, r := range recs {
		if r.AgentSource == "" {
			continue
		}
		k := mixKey{string(r.AgentSource), BiddingCategory(r.Dimensions.BiddingMethod)}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, MixEntry{Agent: k.agent, Category: k.category})
		}
		out[i].Spend += r.Float(model.ColSpend)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Agent != out[b].Agent {
			return out[a].Agent < out[b].Agent
		}
		return out[a].Category < out[b].Category
	})
	return out
}

// TopSpend sums spend by a dimension column and returns the n largest
// groups, descending. Ties keep first-appearance order.
func TopSpend(recs []*model.Record, col string, n int) []SpendShare {
	key := dimKey(col)
	index := make(map[string]int)
	out := []SpendShare{}
	for _, r := range recs {
		k, ok := key(r)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, SpendShare{Key: k})
		}
		out[i].Spend += r.Float(model.ColSpend)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Spend > out[b].Spend })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// RateTrend derives the daily funnel pass rates from daily sums. Rates with
// a zero denominator are nil.
func RateTrend(daily []GroupSum) []RatePoint {
	out := make([]RatePoint, len(daily))
	for i, d := range daily {
		out[i] = RatePoint{
			Date:       d.Key,
			EntryRate:  ratioOf(d.Sums, model.ColEntrySuccess, model.ColEntries),
			CreditRate: ratioOf(d.Sums, model.ColCreditSuccess, model.ColCreditSubmit),
			LoanRate:   ratioOf(d.Sums, model.ColLoanSuccess, model.ColLoanApply),
		}
	}
	return out
}

func ratioOf(sums map[string]float64, num, den string) *float64 {
	n, ok := sums[num]
	if !ok {
		return nil
	}
	d, ok := sums[den]
	if !ok {
		return nil
	}
	return model.Ratio(&n, &d)
}

func sumColumn(recs []*model.Record, col string) float64 {
	if col == "" {
		return 0
	}
	var total float64
	for _, r := range recs {
		total += r.Float(col)
	}
	return total
}

// HeadlineTotals sums the headline figures over recs, resolving each
// logical metric to the column s actually carries.
func HeadlineTotals(s *model.Snapshot, recs []*model.Record) Totals {
	t := Totals{
		Spend:         sumColumn(recs, s.Pick(model.MetricSpend)),
		Settlement:    sumColumn(recs, s.Pick(model.MetricSettlement)),
		Registrations: sumColumn(recs, s.Pick(model.MetricRegistrations)),
		Entries:       sumColumn(recs, s.Pick(model.MetricEntries)),
		EntrySuccess:  sumColumn(recs, s.Pick(model.MetricEntrySuccess)),
		CreditSubmit:  sumColumn(recs, s.Pick(model.MetricCreditSubmit)),
		CreditSuccess: sumColumn(recs, s.Pick(model.MetricCreditSuccess)),
		LoanApply:     sumColumn(recs, s.Pick(model.MetricLoanApply)),
		LoanSuccess:   sumColumn(recs, s.Pick(model.MetricLoanSuccess)),
		LoanOrders:    sumColumn(recs, s.Pick(model.MetricLoanOrders)),
		CreditAmount:  sumColumn(recs, s.Pick(model.MetricCreditAmount)),
		Downloads:     sumColumn(recs, s.Pick(model.MetricDownloads)),
	}

	loanAmountCol := s.Pick(model.MetricLoanAmount)
	t.LoanAmount = sumColumn(recs, loanAmountCol)

	if s.Supports(model.MetricLoanUsers) {
		t.DisbursePeople = sumColumn(recs, s.Pick(model.MetricLoanUsers))
	} else {
		t.DisbursePeople = t.LoanSuccess
	}

	var weightedExec float64
	if execCol := s.Pick(model.MetricExecRate); execCol != "" && loanAmountCol != "" {
		for _, r := range recs {
			weightedExec += r.Float(execCol) * r.Float(loanAmountCol)
		}
	}

	t.AvgCreditAmount = model.RatioOrZero(t.CreditAmount, t.CreditSuccess)
	t.AvgLoanPerOrder = model.RatioOrZero(t.LoanAmount, t.LoanOrders)
	t.AvgExecRate = model.RatioOrZero(weightedExec, t.LoanAmount)
	return t
}

// CostMetricsFor derives unit costs from headline totals.
func CostMetricsFor(t Totals) CostMetrics {
	return CostMetrics{
		Registration: model.RatioOrZero(t.Spend, t.Registrations),
		Entry:        model.RatioOrZero(t.Spend, t.Entries),
		Credit:       model.RatioOrZero(t.Spend, t.CreditSuccess),
		Loan:         model.RatioOrZero(t.Spend, t.LoanSuccess),
		Download:     model.RatioOrZero(t.Spend, t.Downloads),
	}
}
