package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/adrecon/internal/model"
)

func TestDecompose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *string
		want model.Dimensions
	}{
		{
			name: "full name",
			in:   model.Ptr("奇异果-信息流-OCPC-24-54岁-DMP-视频-免息-20240101"),
			want: model.Dimensions{
				AgentCode:     model.Ptr("奇异果"),
				ResourceSlot:  model.Ptr("信息流"),
				BiddingMethod: model.Ptr("OCPC"),
				AgeBucket:     model.Ptr("24"),
				Targeting:     model.Ptr("54岁"),
				MaterialStyle: model.Ptr("DMP"),
				BenefitPoint:  model.Ptr("视频"),
			},
		},
		{
			name: "eight segments",
			in:   model.Ptr("哇棒-搜索-CPC-18岁以上-通投-图文-低息-0105"),
			want: model.Dimensions{
				AgentCode:     model.Ptr("哇棒"),
				ResourceSlot:  model.Ptr("搜索"),
				BiddingMethod: model.Ptr("CPC"),
				AgeBucket:     model.Ptr("18岁以上"),
				Targeting:     model.Ptr("通投"),
				MaterialStyle: model.Ptr("图文"),
				BenefitPoint:  model.Ptr("低息"),
			},
		},
		{
			name: "short name",
			in:   model.Ptr("KW-banner"),
			want: model.Dimensions{
				AgentCode:    model.Ptr("KW"),
				ResourceSlot: model.Ptr("banner"),
			},
		},
		{
			name: "no delimiter",
			in:   model.Ptr("freeform"),
			want: model.Dimensions{AgentCode: model.Ptr("freeform")},
		},
		{
			name: "empty segment kept",
			in:   model.Ptr("KW--CPC"),
			want: model.Dimensions{
				AgentCode:     model.Ptr("KW"),
				ResourceSlot:  model.Ptr(""),
				BiddingMethod: model.Ptr("CPC"),
			},
		},
		{
			name: "nil name",
			in:   nil,
			want: model.Dimensions{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Decompose(tt.in))
		})
	}
}

func TestDecomposeTable_NormalizesEnums(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Columns: []string{model.ColPlanName},
		Rows: []Row{
			{model.ColPlanName: model.Ptr("KW-feed- ocpc -24至54岁-none-video-gift-0101")},
			{model.ColPlanName: model.Ptr("KW")},
		},
	}
	DecomposeTable(tbl)

	for _, col := range model.DimensionColumns {
		assert.True(t, tbl.Has(col), col)
	}
	r := tbl.Rows[0]
	assert.Equal(t, "OCPC", *r[model.ColBiddingMethod])
	assert.Equal(t, "24-54岁", *r[model.ColAgeBucket])
	assert.Nil(t, r[model.ColTargeting])
	assert.Equal(t, "video", *r[model.ColMaterialStyle])

	short := tbl.Rows[1]
	assert.Equal(t, "KW", *short[model.ColAgentCode])
	assert.Nil(t, short[model.ColBiddingMethod])
	assert.Nil(t, short[model.ColBenefitPoint])
}
