package reconcile

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/adrecon/internal/model"
)

// SourceKind identifies one of the three inputs of a run.
type SourceKind string

const (
	SourceKiwi    SourceKind = "kiwi"
	SourceWabang  SourceKind = "wabang"
	SourceBackend SourceKind = "backend"
)

// FieldMap maps a source header to its canonical column name.
type FieldMap map[string]string

// SourceSpec describes how to read and normalize one source kind.
type SourceSpec struct {
	Kind  SourceKind
	Sheet string
	// Agent tags every row of an agency source. Empty for the backend.
	Agent  model.AgentSource
	Fields FieldMap
	// Passthrough keeps unmapped headers under their own (folded) name
	// instead of dropping them.
	Passthrough bool
}

// AgencyColumns is the canonical column list every agency source is
// normalized to, in order.
var AgencyColumns = []string{
	model.ColPlanName,
	model.ColPlanID,
	model.ColDate,
	model.ColSpend,
	model.ColImpressions,
	model.ColClicks,
	model.ColClickRate,
	model.ColDownloads,
	model.ColDownloadClickRate,
	model.ColDownloadCost,
	model.ColInstalls,
}

// Sources bundles the specs used by a pipeline.
type Sources struct {
	Kiwi    SourceSpec
	Wabang  SourceSpec
	Backend SourceSpec
}

// Spec returns the spec for kind.
func (s Sources) Spec(kind SourceKind) SourceSpec {
	switch kind {
	case SourceKiwi:
		return s.Kiwi
	case SourceWabang:
		return s.Wabang
	default:
		return s.Backend
	}
}

// DefaultSources returns the built-in sheet names and field maps.
func DefaultSources() Sources {
	return Sources{
		Kiwi: SourceSpec{
			Kind:  SourceKiwi,
			Sheet: "计划数据",
			Agent: model.AgentKiwi,
			Fields: FieldMap{
				"计划名称":  model.ColPlanName,
				"计划ID":  model.ColPlanID,
				"计划id":  model.ColPlanID,
				"日期":    model.ColDate,
				"时间":    model.ColDate,
				"花费":    model.ColSpend,
				"消耗":    model.ColSpend,
				"曝光量":   model.ColImpressions,
				"展示量":   model.ColImpressions,
				"点击量":   model.ColClicks,
				"点击率":   model.ColClickRate,
				"下载量":   model.ColDownloads,
				"点击下载率": model.ColDownloadClickRate,
				"下载成本":  model.ColDownloadCost,
				"安装量":   model.ColInstalls,
			},
		},
		Wabang: SourceSpec{
			Kind:  SourceWabang,
			Sheet: "总数据源",
			Agent: model.AgentWabang,
			Fields: FieldMap{
				"计划名称":  model.ColPlanName,
				"计划ID":  model.ColPlanID,
				"时间":    model.ColDate,
				"花费":    model.ColSpend,
				"曝光量":   model.ColImpressions,
				"点击量":   model.ColClicks,
				"点击率":   model.ColClickRate,
				"下载量":   model.ColDownloads,
				"点击下载率": model.ColDownloadClickRate,
				"下载成本":  model.ColDownloadCost,
				"安装量":   model.ColInstalls,
			},
		},
		Backend: SourceSpec{
			Kind:        SourceBackend,
			Sheet:       "分计划明细表",
			Passthrough: true,
			Fields: FieldMap{
				"event_chnl_dtl": model.ColPlanID,
				"event_dt":       model.ColDate,
				"计划名称":           model.ColPlanName,
				"花费":             model.ColSpend,
				"点击量":            model.ColClicks,
				"结算花费":           model.ColSettlementSpend,
				"注册人数":           model.ColRegistrations,
				"进件人数":           model.ColEntries,
				"进件成功人数":         model.ColEntrySuccess,
				"授信提交人数":         model.ColCreditSubmit,
				"授信成功人数":         model.ColCreditSuccess,
				"授信人数":           model.ColCreditCount,
				"支用申请人数":         model.ColLoanApply,
				"支用成功人数":         model.ColLoanSuccess,
				"支用通过人数":         model.ColLoanApproved,
				"支用人数":           model.ColLoanUsers,
				"支用笔数":           model.ColLoanOrders,
				"支用金额":           model.ColLoanAmount,
				"授信金额":           model.ColCreditAmount,
				"平均执行利率":         model.ColAvgExecRate,
				"平均对客利率":         model.ColAvgCustomerRate,
			},
		},
	}
}

// foldHeader trims a header and applies NFKC so full-width variants of
// ASCII letters and digits match the field map.
func foldHeader(h string) string {
	return strings.TrimSpace(norm.NFKC.String(h))
}

// Lookup returns the canonical name for a source header.
func (m FieldMap) Lookup(header string) (string, bool) {
	if c, ok := m[header]; ok {
		return c, true
	}
	c, ok := m[foldHeader(header)]
	return c, ok
}

// With returns a copy of m extended by aliases. Aliases override entries
// with the same header.
func (m FieldMap) With(aliases FieldMap) FieldMap {
	out := make(FieldMap, len(m)+len(aliases))
	for k, v := range m {
		out[foldHeader(k)] = v
	}
	for k, v := range aliases {
		out[foldHeader(k)] = v
	}
	return out
}

// AliasFile is the on-disk shape of extra header aliases, one map per source.
type AliasFile struct {
	Kiwi    FieldMap `yaml:"kiwi"`
	Wabang  FieldMap `yaml:"wabang"`
	Backend FieldMap `yaml:"backend"`
}

// LoadAliases reads a YAML alias file.
func LoadAliases(path string) (*AliasFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reconcile: read alias file %s", path)
	}
	var af AliasFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, eris.Wrapf(err, "reconcile: parse alias file %s", path)
	}
	return &af, nil
}

// WithAliases returns s with the alias file's headers merged into each
// source's field map.
func (s Sources) WithAliases(af *AliasFile) Sources {
	if af == nil {
		return s
	}
	s.Kiwi.Fields = s.Kiwi.Fields.With(af.Kiwi)
	s.Wabang.Fields = s.Wabang.Fields.With(af.Wabang)
	s.Backend.Fields = s.Backend.Fields.With(af.Backend)
	return s
}
