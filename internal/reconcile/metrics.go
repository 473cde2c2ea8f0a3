package reconcile

import (
	"strings"

	"github.com/sells-group/adrecon/internal/model"
)

// SettlementRate is a flat per-click settlement price for agents whose name
// contains Fragment.
type SettlementRate struct {
	Fragment string  `yaml:"fragment" mapstructure:"fragment"`
	Rate     float64 `yaml:"rate" mapstructure:"rate"`
}

// DefaultSettlementRates returns the built-in rates in match order.
func DefaultSettlementRates() []SettlementRate {
	return []SettlementRate{
		{Fragment: string(model.AgentKiwi), Rate: 0.58},
		{Fragment: string(model.AgentWabang), Rate: 0.5},
	}
}

// stageCost is a derived unit cost: spend divided by a funnel count.
type stageCost struct {
	column      string
	denominator string
}

var stageCosts = []stageCost{
	{model.ColRegistrationCost, model.ColRegistrations},
	{model.ColEntryCost, model.ColEntries},
	{model.ColCreditCost, model.ColCreditSuccess},
	{model.ColLoanCost, model.ColLoanSuccess},
	{model.ColDownloadCost, model.ColDownloads},
}

// Calculator derives settlement spend and per-stage unit costs.
type Calculator struct {
	rates []SettlementRate
}

// NewCalculator creates a Calculator. An empty rate list uses the defaults.
func NewCalculator(rates []SettlementRate) *Calculator {
	if len(rates) == 0 {
		rates = DefaultSettlementRates()
	}
	return &Calculator{rates: rates}
}

// agentText prefers the decomposed agent code and falls back to the source
// tag.
func agentText(r *model.Record) string {
	if code := r.Dimensions.AgentCode; code != nil && *code != "" {
		return *code
	}
	return string(r.AgentSource)
}

// Settlement returns clicks times the first matching agent rate, or nil when
// clicks are missing or zero or no rate matches.
func (c *Calculator) Settlement(r *model.Record) *float64 {
	clicks := r.Number(model.ColClicks)
	if clicks == nil || *clicks == 0 {
		return nil
	}
	agent := agentText(r)
	if agent == "" {
		return nil
	}
	for _, sr := range c.rates {
		if strings.Contains(agent, sr.Fragment) {
			v := *clicks * sr.Rate
			return &v
		}
	}
	return nil
}

// Apply computes the derived columns on every record in place and returns
// the extended column list. A stage cost is produced only when its
// denominator column exists; settlement only when impressions exist.
func (c *Calculator) Apply(columns []model.Column, records []model.Record) []model.Column {
	has := make(map[string]bool, len(columns))
	for _, col := range columns {
		has[col.Name] = true
	}
	add := func(name string) {
		if !has[name] {
			has[name] = true
			columns = append(columns, model.Column{Name: name, Kind: model.KindNumber})
		}
	}

	if has[model.ColImpressions] {
		add(model.ColSettlementSpend)
		for i := range records {
			setOrClear(&records[i], model.ColSettlementSpend, c.Settlement(&records[i]))
		}
	}

	if !has[model.ColSpend] {
		return columns
	}
	for _, sc := range stageCosts {
		if !has[sc.denominator] {
			continue
		}
		add(sc.column)
		for i := range records {
			r := &records[i]
			setOrClear(r, sc.column, model.Ratio(r.Number(model.ColSpend), r.Number(sc.denominator)))
		}
	}
	return columns
}

func setOrClear(r *model.Record, col string, v *float64) {
	if v == nil {
		delete(r.Numbers, col)
		return
	}
	r.SetNumber(col, v)
}
