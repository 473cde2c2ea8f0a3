package model

// Dimensions holds the attributes decomposed from a campaign name. A nil
// field means the name had no segment at that position.
type Dimensions struct {
	AgentCode     *string `json:"agent_code"`
	ResourceSlot  *string `json:"resource_slot"`
	BiddingMethod *string `json:"bidding_method"`
	AgeBucket     *string `json:"age_bucket"`
	Targeting     *string `json:"targeting"`
	MaterialStyle *string `json:"material_style"`
	BenefitPoint  *string `json:"benefit_point"`
}

// Get returns the dimension stored under the given column name.
func (d *Dimensions) Get(col string) *string {
	switch col {
	case ColAgentCode:
		return d.AgentCode
	case ColResourceSlot:
		return d.ResourceSlot
	case ColBiddingMethod:
		return d.BiddingMethod
	case ColAgeBucket:
		return d.AgeBucket
	case ColTargeting:
		return d.Targeting
	case ColMaterialStyle:
		return d.MaterialStyle
	case ColBenefitPoint:
		return d.BenefitPoint
	}
	return nil
}

// Set stores v under the given dimension column. Unknown columns are ignored.
func (d *Dimensions) Set(col string, v *string) {
	switch col {
	case ColAgentCode:
		d.AgentCode = v
	case ColResourceSlot:
		d.ResourceSlot = v
	case ColBiddingMethod:
		d.BiddingMethod = v
	case ColAgeBucket:
		d.AgeBucket = v
	case ColTargeting:
		d.Targeting = v
	case ColMaterialStyle:
		d.MaterialStyle = v
	case ColBenefitPoint:
		d.BenefitPoint = v
	}
}

// IsDimension reports whether col is one of the decomposed name attributes.
func IsDimension(col string) bool {
	for _, d := range DimensionColumns {
		if d == col {
			return true
		}
	}
	return false
}

// Record is one merged, cleaned campaign-plan/date row.
//
// Numeric columns live in Numbers and free-text passthrough columns in Text.
// A column that exists in the snapshot but is null on this row is either
// absent from the map or mapped to nil; both read back as nil.
type Record struct {
	PlanName    string              `json:"plan_name"`
	PlanID      string              `json:"plan_id"`
	Date        *string             `json:"date"`
	AgentSource AgentSource         `json:"agent_source"`
	Dimensions  Dimensions          `json:"dimensions"`
	Numbers     map[string]*float64 `json:"numbers,omitempty"`
	Text        map[string]*string  `json:"text,omitempty"`
}

// Number returns the numeric value of col, or nil.
func (r *Record) Number(col string) *float64 {
	return r.Numbers[col]
}

// Float returns the numeric value of col with nil read as zero. Used where
// sums skip missing values.
func (r *Record) Float(col string) float64 {
	if v := r.Numbers[col]; v != nil {
		return *v
	}
	return 0
}

// SetNumber stores v under col, allocating the map on first use.
func (r *Record) SetNumber(col string, v *float64) {
	if r.Numbers == nil {
		r.Numbers = make(map[string]*float64)
	}
	r.Numbers[col] = v
}

// Value returns the value of any column as a plain Go value: string,
// float64, or nil for null.
func (r *Record) Value(col string) any {
	switch col {
	case ColPlanName:
		return r.PlanName
	case ColPlanID:
		return r.PlanID
	case ColDate:
		if r.Date == nil {
			return nil
		}
		return *r.Date
	case ColAgentSource:
		return string(r.AgentSource)
	}
	if IsDimension(col) {
		if v := r.Dimensions.Get(col); v != nil {
			return *v
		}
		return nil
	}
	if v, ok := r.Numbers[col]; ok {
		if v == nil {
			return nil
		}
		return *v
	}
	if v := r.Text[col]; v != nil {
		return *v
	}
	return nil
}

// Ptr returns a pointer to v. Handy for building optional fields.
func Ptr[T any](v T) *T {
	return &v
}
