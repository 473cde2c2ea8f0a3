// Package dashboard filters a snapshot and aggregates it into the views
// served to the reporting dashboard.
package dashboard

import (
	"net/url"
	"strings"

	"github.com/sells-group/adrecon/internal/model"
)

// allToken disables a filter.
const allToken = "all"

// Filter holds the dashboard selection. Empty fields do not filter.
type Filter struct {
	DateFrom      string
	DateTo        string
	Agent         string
	BiddingMethod string
	ResourceSlot  string
	MaterialStyle string
	BenefitPoint  string
	// Targeting is the multi-select dimension, upper-cased.
	Targeting []string
}

// ParseFilter extracts the filter from query parameters.
func ParseFilter(q url.Values) Filter {
	return Filter{
		DateFrom:      single(q.Get("date_from")),
		DateTo:        single(q.Get("date_to")),
		Agent:         single(q.Get("agent")),
		BiddingMethod: single(q.Get("bidding_method")),
		ResourceSlot:  single(q.Get("resource")),
		MaterialStyle: single(q.Get("material")),
		BenefitPoint:  single(q.Get("benefit")),
		Targeting:     ParseMulti(strings.Join(q["targeting"], ",")),
	}
}

func single(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, allToken) {
		return ""
	}
	return v
}

// ParseMulti splits a comma-delimited selection, dropping blanks and the
// "all" token. Values are upper-cased to match canonical targeting.
func ParseMulti(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, allToken) {
			continue
		}
		out = append(out, strings.ToUpper(part))
	}
	return out
}

// Match reports whether r passes every active filter.
func (f Filter) Match(r *model.Record) bool {
	if f.DateFrom != "" && (r.Date == nil || *r.Date < f.DateFrom) {
		return false
	}
	if f.DateTo != "" && (r.Date == nil || *r.Date > f.DateTo) {
		return false
	}
	if f.Agent != "" && string(r.AgentSource) != f.Agent {
		return false
	}
	if !matchDim(f.BiddingMethod, r.Dimensions.BiddingMethod) ||
		!matchDim(f.ResourceSlot, r.Dimensions.ResourceSlot) ||
		!matchDim(f.MaterialStyle, r.Dimensions.MaterialStyle) ||
		!matchDim(f.BenefitPoint, r.Dimensions.BenefitPoint) {
		return false
	}
	if len(f.Targeting) > 0 {
		t := r.Dimensions.Targeting
		if t == nil {
			return false
		}
		found := false
		for _, want := range f.Targeting {
			if *t == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchDim(want string, got *string) bool {
	if want == "" {
		return true
	}
	return got != nil && *got == want
}

// Apply returns the snapshot records passing f, in snapshot order.
func (f Filter) Apply(s *model.Snapshot) []*model.Record {
	out := make([]*model.Record, 0, len(s.Records))
	for i := range s.Records {
		if f.Match(&s.Records[i]) {
			out = append(out, &s.Records[i])
		}
	}
	return out
}
