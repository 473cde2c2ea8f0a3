package store

import (
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/sells-group/adrecon/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testSnapshot(id string, spends ...float64) *model.Snapshot {
	cols := []model.Column{
		{Name: model.ColPlanID, Kind: model.KindText},
		{Name: model.ColSpend, Kind: model.KindNumber},
	}
	recs := make([]model.Record, len(spends))
	for i, v := range spends {
		recs[i] = model.Record{PlanID: "P" + string(rune('1'+i))}
		recs[i].SetNumber(model.ColSpend, model.Ptr(v))
	}
	return model.NewSnapshot(id, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), cols, recs)
}
