package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/adrecon/internal/model"
)

func TestCleanID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *string
		want string
	}{
		{"nil", nil, ""},
		{"whole float", model.Ptr("12345.0"), "12345"},
		{"plain digits", model.Ptr("12345"), "12345"},
		{"padded", model.Ptr(" 12345 "), "12345"},
		{"scientific", model.Ptr("1.2345e4"), "12345"},
		{"padded float", model.Ptr(" 678.00 "), "678"},
		{"fractional kept", model.Ptr("12.5"), "12.5"},
		{"leading zeros kept", model.Ptr("000123"), "000123"},
		{"text", model.Ptr(" plan-abc "), "plan-abc"},
		{"sixteen digit scientific", model.Ptr("1.234567890123456E+15"), "1234567890123456"},
		{"sixteen digit float", model.Ptr("1234567890123456.0"), "1234567890123456"},
		{"beyond exact range kept", model.Ptr("1e20"), "1e20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanID(tt.in))
		})
	}
}

func TestCleanID_Idempotent(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"12345.0", " 9 ", "abc", "1.5", "7e2"} {
		once := CleanID(&in)
		assert.Equal(t, once, CleanID(&once), in)
	}
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want *string
	}{
		{"2024-01-05", model.Ptr("2024-01-05")},
		{"2024/01/05", model.Ptr("2024-01-05")},
		{"2024.1.5", model.Ptr("2024-01-05")},
		{"20240105", model.Ptr("2024-01-05")},
		{"2024-1-5", model.Ptr("2024-01-05")},
		{"2024-01-05 13:45:00", model.Ptr("2024-01-05")},
		{"2024-01-05T13:45:00Z", model.Ptr("2024-01-05")},
		{"01/05/2024", model.Ptr("2024-01-05")},
		{"1/5/24", model.Ptr("2024-01-05")},
		{"1/5/24 00:00", model.Ptr("2024-01-05")},
		{"01-05-24", model.Ptr("2024-01-05")},
		{"2024年1月5日", model.Ptr("2024-01-05")},
		{"45296", model.Ptr("2024-01-05")},
		{" 2024-01-05 ", model.Ptr("2024-01-05")},
		{"", nil},
		{"not a date", nil},
		{"2024-13-45", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			in := tt.in
			assert.Equal(t, tt.want, NormalizeDate(&in))
		})
	}

	assert.Nil(t, NormalizeDate(nil))
}

func TestNormalizeDate_OrderingMatchesChronology(t *testing.T) {
	t.Parallel()
	// written in mixed layouts, chronological order
	inputs := []string{"2023/12/31", "2024-1-2", "20240110", "2024年2月1日", "2024-11-30"}
	var prev string
	for _, in := range inputs {
		got := NormalizeDate(&in)
		if assert.NotNil(t, got, in) && prev != "" {
			assert.Less(t, prev, *got)
		}
		prev = *got
	}
}

func TestNormalizeEnum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *string
		want *string
	}{
		{"nil", nil, nil},
		{"empty", model.Ptr("  "), nil},
		{"nan", model.Ptr("NaN"), nil},
		{"none", model.Ptr("None"), nil},
		{"lower", model.Ptr(" ocpc "), model.Ptr("OCPC")},
		{"mixed", model.Ptr("Dmp"), model.Ptr("DMP")},
		{"chinese", model.Ptr("定向包"), model.Ptr("定向包")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeEnum(tt.in))
		})
	}
}

func TestNormalizeAge(t *testing.T) {
	t.Parallel()
	for _, alias := range []string{"24～54岁", "24至54岁", "24~54岁"} {
		assert.Equal(t, model.Ptr("24-54岁"), NormalizeAge(&alias), alias)
	}
	assert.Equal(t, model.Ptr("18-30岁"), NormalizeAge(model.Ptr("18-30岁")))
	assert.Nil(t, NormalizeAge(nil))
}

func TestCanonicalize_Idempotent(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Columns: []string{model.ColPlanName, model.ColPlanID, model.ColDate},
		Rows: []Row{
			{model.ColPlanName: model.Ptr("QYG-信息流-ocpc-24~54岁-dmp-视频-免息-0101"), model.ColPlanID: model.Ptr("1001.0"), model.ColDate: model.Ptr("2024/1/1")},
			{model.ColPlanName: nil, model.ColPlanID: nil, model.ColDate: model.Ptr("bad")},
		},
	}
	CanonicalizeKeys(tbl)
	DecomposeTable(tbl)

	snapshot := func() []map[string]any {
		var out []map[string]any
		for _, r := range tbl.Rows {
			m := map[string]any{}
			for k, v := range r {
				if v == nil {
					m[k] = nil
				} else {
					m[k] = *v
				}
			}
			out = append(out, m)
		}
		return out
	}
	first := snapshot()

	CanonicalizeKeys(tbl)
	CanonicalizeDimensions(tbl)
	assert.Equal(t, first, snapshot())

	assert.Equal(t, "1001", first[0][model.ColPlanID])
	assert.Equal(t, "2024-01-01", first[0][model.ColDate])
	assert.Equal(t, "OCPC", first[0][model.ColBiddingMethod])
	assert.Equal(t, "24-54岁", first[0][model.ColAgeBucket])
	assert.Equal(t, "DMP", first[0][model.ColTargeting])
	assert.Equal(t, "", first[1][model.ColPlanID])
	assert.Nil(t, first[1][model.ColDate])
}
