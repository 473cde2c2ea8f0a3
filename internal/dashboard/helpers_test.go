package dashboard

import (
	"time"

	"github.com/sells-group/adrecon/internal/model"
)

type rec struct {
	agent     model.AgentSource
	date      string
	bidding   string
	targeting string
	resource  string
	material  string
	benefit   string
	nums      map[string]float64
}

func opt(s string) *string {
	if s == "" {
		return nil
	}
	return model.Ptr(s)
}

func buildSnapshot(extra []string, rows ...rec) *model.Snapshot {
	cols := []model.Column{
		{Name: model.ColPlanName, Kind: model.KindText},
		{Name: model.ColPlanID, Kind: model.KindText},
		{Name: model.ColDate, Kind: model.KindText},
		{Name: model.ColSpend, Kind: model.KindNumber},
		{Name: model.ColImpressions, Kind: model.KindNumber},
		{Name: model.ColClicks, Kind: model.KindNumber},
		{Name: model.ColDownloads, Kind: model.KindNumber},
		{Name: model.ColInstalls, Kind: model.KindNumber},
		{Name: model.ColAgentSource, Kind: model.KindText},
	}
	for _, d := range model.DimensionColumns {
		cols = append(cols, model.Column{Name: d, Kind: model.KindText})
	}
	for _, e := range extra {
		cols = append(cols, model.Column{Name: e, Kind: model.KindNumber})
	}

	records := make([]model.Record, len(rows))
	for i, r := range rows {
		records[i] = model.Record{
			PlanID:      "1",
			Date:        opt(r.date),
			AgentSource: r.agent,
			Dimensions: model.Dimensions{
				BiddingMethod: opt(r.bidding),
				Targeting:     opt(r.targeting),
				ResourceSlot:  opt(r.resource),
				MaterialStyle: opt(r.material),
				BenefitPoint:  opt(r.benefit),
			},
		}
		for k, v := range r.nums {
			records[i].SetNumber(k, model.Ptr(v))
		}
	}
	return model.NewSnapshot("snap", time.Unix(0, 0), cols, records)
}
