package dashboard

import (
	"sort"

	"github.com/sells-group/adrecon/internal/model"
)

// Options lists the distinct non-null values of each filterable dimension,
// sorted, for populating selection controls.
type Options struct {
	Agents         []string `json:"agents"`
	BiddingMethods []string `json:"bidding_methods"`
	Targetings     []string `json:"targetings"`
	Resources      []string `json:"resources"`
	Materials      []string `json:"materials"`
	Benefits       []string `json:"benefits"`
	Dates          []string `json:"dates"`
}

type distinct map[string]struct{}

func (d distinct) add(v *string) {
	if v != nil {
		d[*v] = struct{}{}
	}
}

func (d distinct) sorted() []string {
	out := make([]string, 0, len(d))
	for v := range d {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// FilterOptions collects the options over every record of s.
func FilterOptions(s *model.Snapshot) Options {
	agents, bidding, targeting := distinct{}, distinct{}, distinct{}
	resources, materials, benefits, dates := distinct{}, distinct{}, distinct{}, distinct{}

	for i := range s.Records {
		r := &s.Records[i]
		if r.AgentSource != "" {
			agents.add(model.Ptr(string(r.AgentSource)))
		}
		bidding.add(r.Dimensions.BiddingMethod)
		targeting.add(r.Dimensions.Targeting)
		resources.add(r.Dimensions.ResourceSlot)
		materials.add(r.Dimensions.MaterialStyle)
		benefits.add(r.Dimensions.BenefitPoint)
		dates.add(r.Date)
	}

	return Options{
		Agents:         agents.sorted(),
		BiddingMethods: bidding.sorted(),
		Targetings:     targeting.sorted(),
		Resources:      resources.sorted(),
		Materials:      materials.sorted(),
		Benefits:       benefits.sorted(),
		Dates:          dates.sorted(),
	}
}
