package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *Snapshot {
	cols := []Column{
		{Name: ColPlanName, Kind: KindText},
		{Name: ColPlanID, Kind: KindText},
		{Name: ColDate, Kind: KindText},
		{Name: ColSpend, Kind: KindNumber},
		{Name: ColCreditSuccess, Kind: KindNumber},
		{Name: ColCreditCount, Kind: KindNumber},
		{Name: ColLoanAmount + BackendSuffix, Kind: KindNumber},
		{Name: ColAgentSource, Kind: KindText},
		{Name: ColTargeting, Kind: KindText},
	}
	recs := []Record{
		{
			PlanName:    "a-b",
			PlanID:      "1",
			Date:        Ptr("2024-01-01"),
			AgentSource: AgentKiwi,
			Dimensions:  Dimensions{Targeting: Ptr("DMP")},
			Numbers: map[string]*float64{
				ColSpend:                      Ptr(12.5),
				ColCreditSuccess:              nil,
				ColCreditCount:                Ptr(3.0),
				ColLoanAmount + BackendSuffix: Ptr(1000.0),
			},
		},
		{
			PlanName:    "c",
			PlanID:      "2",
			AgentSource: AgentWabang,
		},
	}
	return NewSnapshot("snap-1", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), cols, recs)
}

func TestSnapshot_Capabilities(t *testing.T) {
	t.Parallel()
	s := testSnapshot()

	assert.True(t, s.Has(ColSpend))
	assert.False(t, s.Has(ColRegistrations))
	assert.True(t, s.Populated(ColCreditCount))
	assert.False(t, s.Populated(ColCreditSuccess))

	kind, ok := s.Kind(ColSpend)
	require.True(t, ok)
	assert.Equal(t, KindNumber, kind)
	_, ok = s.Kind("missing")
	assert.False(t, ok)
}

func TestSnapshot_Pick(t *testing.T) {
	t.Parallel()
	s := testSnapshot()

	t.Run("primary empty falls back to populated alternate", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, ColCreditCount, s.Pick(MetricCreditSuccess))
	})

	t.Run("suffixed alternate when primary missing", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, ColLoanAmount+BackendSuffix, s.Pick(MetricLoanAmount))
	})

	t.Run("unsupported metric", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", s.Pick(MetricLoanOrders))
		assert.False(t, s.Supports(MetricLoanOrders))
		assert.True(t, s.Supports(MetricCreditSuccess))
	})
}

func TestSnapshot_PickPrefersPrimary(t *testing.T) {
	t.Parallel()
	s := NewSnapshot("x", time.Now(), []Column{
		{Name: ColCreditAmount, Kind: KindNumber},
		{Name: ColCreditAmount + BackendSuffix, Kind: KindNumber},
	}, []Record{{Numbers: map[string]*float64{
		ColCreditAmount:                 Ptr(1.0),
		ColCreditAmount + BackendSuffix: Ptr(2.0),
	}}})

	assert.Equal(t, ColCreditAmount, s.Pick(MetricCreditAmount))
}

func TestSnapshot_RowOrdering(t *testing.T) {
	t.Parallel()
	s := testSnapshot()

	row := s.Row(&s.Records[0])
	data, err := json.Marshal(row)
	require.NoError(t, err)

	want := `{"plan_name":"a-b","plan_id":"1","date":"2024-01-01","spend":12.5,"credit_success_count":null,` +
		`"credit_count":3,"loan_amount_backend":1000,"agent_source":"奇异果","targeting":"DMP"}`
	assert.JSONEq(t, want, string(data))
	assert.Equal(t, s.ColumnNames(), row.Columns())
	assert.Equal(t, 12.5, row.Get(ColSpend))
	assert.Nil(t, row.Get(ColDate+"x"))

	second := s.Row(&s.Records[1])
	assert.Nil(t, second.Get(ColDate))
	assert.Nil(t, second.Get(ColTargeting))
}

func TestSnapshot_Preview(t *testing.T) {
	t.Parallel()
	s := testSnapshot()

	assert.Len(t, s.Preview(1), 1)
	assert.Len(t, s.Preview(100), 2)
}

func TestSnapshot_JSONRoundTripRebuildsIndex(t *testing.T) {
	t.Parallel()
	s := testSnapshot()

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored Snapshot
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, s.ID, restored.ID)
	assert.Equal(t, 2, restored.Len())
	assert.True(t, restored.Has(ColSpend))
	assert.Equal(t, ColCreditCount, restored.Pick(MetricCreditSuccess))
	require.NotNil(t, restored.Records[0].Number(ColSpend))
	assert.InDelta(t, 12.5, *restored.Records[0].Number(ColSpend), 1e-9)
}
