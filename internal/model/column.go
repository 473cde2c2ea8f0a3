package model

// AgentSource tags which agency export produced a row.
type AgentSource string

const (
	AgentKiwi   AgentSource = "奇异果"
	AgentWabang AgentSource = "哇棒"
)

// BackendSuffix is appended to a backend column whose name collides with an
// agency column during the merge.
const BackendSuffix = "_backend"

// Key and dimension columns.
const (
	ColPlanName    = "plan_name"
	ColPlanID      = "plan_id"
	ColDate        = "date"
	ColAgentSource = "agent_source"

	ColAgentCode     = "agent_code"
	ColResourceSlot  = "resource_slot"
	ColBiddingMethod = "bidding_method"
	ColAgeBucket     = "age_bucket"
	ColTargeting     = "targeting"
	ColMaterialStyle = "material_style"
	ColBenefitPoint  = "benefit_point"
)

// Agency performance columns.
const (
	ColSpend             = "spend"
	ColImpressions       = "impressions"
	ColClicks            = "clicks"
	ColClickRate         = "click_rate"
	ColDownloads         = "downloads"
	ColDownloadClickRate = "download_click_rate"
	ColDownloadCost      = "download_cost"
	ColInstalls          = "installs"
)

// Backend funnel columns.
const (
	ColRegistrations   = "registration_count"
	ColEntries         = "entry_count"
	ColEntrySuccess    = "entry_success_count"
	ColCreditSubmit    = "credit_submit_count"
	ColCreditSuccess   = "credit_success_count"
	ColCreditCount     = "credit_count"
	ColLoanApply       = "loan_apply_count"
	ColLoanSuccess     = "loan_success_count"
	ColLoanApproved    = "loan_approved_count"
	ColLoanUsers       = "loan_user_count"
	ColLoanOrders      = "loan_order_count"
	ColLoanAmount      = "loan_amount"
	ColCreditAmount    = "credit_amount"
	ColAvgExecRate     = "avg_exec_rate"
	ColAvgCustomerRate = "avg_customer_rate"
)

// Derived columns.
const (
	ColSettlementSpend  = "settlement_spend"
	ColRegistrationCost = "registration_cost"
	ColEntryCost        = "entry_cost"
	ColCreditCost       = "credit_cost"
	ColLoanCost         = "loan_cost"
)

// DimensionColumns lists the decomposed campaign-name attributes in
// segment order.
var DimensionColumns = []string{
	ColAgentCode,
	ColResourceSlot,
	ColBiddingMethod,
	ColAgeBucket,
	ColTargeting,
	ColMaterialStyle,
	ColBenefitPoint,
}

// ColumnKind describes how a column's values are stored on a Record.
type ColumnKind string

const (
	KindText   ColumnKind = "text"
	KindNumber ColumnKind = "number"
	KindRate   ColumnKind = "rate"
)

// Numeric reports whether values of this kind live in Record.Numbers.
func (k ColumnKind) Numeric() bool {
	return k == KindNumber || k == KindRate
}

// Column is one named, typed column of a snapshot.
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Metric is a logical measure that may live under more than one column name.
// Columns are listed in preference order: the primary name first, then
// fallbacks (usually the backend-suffixed alternate).
type Metric struct {
	Name    string
	Columns []string
}

var (
	MetricSpend         = Metric{Name: "spend", Columns: []string{ColSpend}}
	MetricDownloads     = Metric{Name: "downloads", Columns: []string{ColDownloads}}
	MetricRegistrations = Metric{Name: "registrations", Columns: []string{ColRegistrations}}
	MetricEntries       = Metric{Name: "entries", Columns: []string{ColEntries}}
	MetricEntrySuccess  = Metric{Name: "entry_success", Columns: []string{ColEntrySuccess}}
	MetricCreditSubmit  = Metric{Name: "credit_submit", Columns: []string{ColCreditSubmit, ColCreditSubmit + BackendSuffix}}
	MetricCreditSuccess = Metric{Name: "credit_success", Columns: []string{ColCreditSuccess, ColCreditCount}}
	MetricCreditAmount  = Metric{Name: "credit_amount", Columns: []string{ColCreditAmount, ColCreditAmount + BackendSuffix}}
	MetricLoanApply     = Metric{Name: "loan_apply", Columns: []string{ColLoanApply, ColLoanApply + BackendSuffix}}
	MetricLoanSuccess   = Metric{Name: "loan_success", Columns: []string{ColLoanSuccess, ColLoanUsers}}
	MetricLoanUsers     = Metric{Name: "loan_users", Columns: []string{ColLoanUsers}}
	MetricLoanOrders    = Metric{Name: "loan_orders", Columns: []string{ColLoanOrders}}
	MetricLoanAmount    = Metric{Name: "loan_amount", Columns: []string{ColLoanAmount, ColLoanAmount + BackendSuffix}}
	MetricExecRate      = Metric{Name: "avg_exec_rate", Columns: []string{ColAvgExecRate, ColAvgExecRate + BackendSuffix}}
	MetricSettlement    = Metric{Name: "settlement_spend", Columns: []string{ColSettlementSpend, ColSettlementSpend + BackendSuffix}}
)
