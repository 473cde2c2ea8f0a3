package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/adrecon/internal/fetcher"
	"github.com/sells-group/adrecon/internal/reconcile"
)

func createTestXLSX(t *testing.T, dir, name, sheet string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sh, err := f.AddSheet(sheet)
	require.NoError(t, err)
	for _, data := range rows {
		row := sh.AddRow()
		for _, v := range data {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.Save(path))
	return path
}

func testInputs(t *testing.T) reconcile.Inputs {
	t.Helper()
	dir := t.TempDir()
	return reconcile.Inputs{
		Kiwi: createTestXLSX(t, dir, "kiwi.xlsx", "计划数据", [][]string{
			{"计划名称", "计划ID", "日期", "花费", "点击量"},
			{"奇异果-信息流-ocpc-24~54岁-dmp-视频-免息", "1001", "2024-01-01", "100", "10"},
			{"奇异果-信息流-cpc-24~54岁-lbs-图片-免息", "1002", "2024-01-02", "200", "20"},
		}),
		Wabang: createTestXLSX(t, dir, "wabang.xlsx", "总数据源", [][]string{
			{"计划名称", "计划ID", "时间", "花费", "点击量"},
			{"哇棒-开屏-ocpc-18~24岁-dmp-视频-额度", "2001", "2024-01-01", "50", "5"},
		}),
		Backend: createTestXLSX(t, dir, "backend.xlsx", "分计划明细表", [][]string{
			{"event_chnl_dtl", "event_dt", "注册人数"},
			{"1001", "2024-01-01", "10"},
			{"2001", "2024-01-01", "5"},
		}),
	}
}

func TestRunProcess_WritesWorkbook(t *testing.T) {
	out := filepath.Join(t.TempDir(), "merged.xlsx")
	var stdout bytes.Buffer

	err := runProcess(context.Background(), reconcile.New(reconcile.Options{}), fetcher.NewResolver(nil, nil),
		processOptions{inputs: testInputs(t), out: out}, &stdout)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	rows, err := fetcher.ReadXLSX(out, fetcher.XLSXOptions{SheetName: "data"})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "plan_name", rows[0][0])
}

func TestRunProcess_Statistics(t *testing.T) {
	var stdout bytes.Buffer
	opts := processOptions{
		inputs: testInputs(t),
		stats:  true,
		filter: map[string][]string{"bidding_method": {"OCPC"}},
	}

	err := runProcess(context.Background(), reconcile.New(reconcile.Options{}), fetcher.NewResolver(nil, nil), opts, &stdout)
	require.NoError(t, err)

	var stats struct {
		TotalSpend    float64 `json:"total_spend"`
		TotalRegister float64 `json:"total_register"`
		AgentStats    []any   `json:"agent_stats"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &stats))
	assert.InDelta(t, 150.0, stats.TotalSpend, 1e-9)
	assert.InDelta(t, 15.0, stats.TotalRegister, 1e-9)
	assert.Len(t, stats.AgentStats, 2)
}

func TestRunProcess_MissingSource(t *testing.T) {
	in := testInputs(t)
	in.Backend = ""

	err := runProcess(context.Background(), reconcile.New(reconcile.Options{}), fetcher.NewResolver(nil, nil),
		processOptions{inputs: in, stats: true}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, reconcile.IsMissingSource(err))
}

func TestRunProcess_UnreadableLocation(t *testing.T) {
	in := testInputs(t)
	in.Kiwi = filepath.Join(t.TempDir(), "nope.xlsx")

	err := runProcess(context.Background(), reconcile.New(reconcile.Options{}), fetcher.NewResolver(nil, nil),
		processOptions{inputs: in, stats: true}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, reconcile.IsSourceRead(err))
}
