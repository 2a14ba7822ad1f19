package model

// Family identifies which report pipeline an analysis request belongs to.
// Each family carries its own file roles, column-fragment profiles, prompt
// instructions and response schema.
type Family string

const (
	// FamilySearch is the Naver search-ads family (campaign weekly /
	// device-placement / keyword exports).
	FamilySearch Family = "search"
	// FamilyGFA is the Naver GFA display-ads family (campaign daily /
	// creative / audience exports).
	FamilyGFA Family = "gfa"
)

// Valid reports whether f names a known report family.
func (f Family) Valid() bool {
	return f == FamilySearch || f == FamilyGFA
}

// ExecutiveSummary holds the headline figures of a report. The numeric
// fields are pre-formatted Korean currency/percentage strings computed
// locally — never the collaborator's own arithmetic.
type ExecutiveSummary struct {
	TotalCost        string `json:"totalCost"`
	TotalRevenue     string `json:"totalRevenue"`
	TotalRoas        string `json:"totalRoas"`
	TotalConversions string `json:"totalConversions"`
	RoasChange       string `json:"roasChange"`
	CostChange       string `json:"costChange"`
}

// InsightItem is one qualitative finding with a severity grade.
type InsightItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // "high" | "medium" | "low"
}

// ChartPoint is a chart-ready series point (line/pie).
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Cost  float64 `json:"cost,omitempty"`
	Roas  float64 `json:"roas,omitempty"`
}

// WeeklyStat is one row of the search-family weekly breakdown.
type WeeklyStat struct {
	Date        string  `json:"date"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	Roas        float64 `json:"roas"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
}

// CampaignStat is one row of the per-campaign breakdown.
type CampaignStat struct {
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
	Roas    float64 `json:"roas"`
	Clicks  float64 `json:"clicks"`
}

// DeviceStat is one row of the device/placement breakdown.
type DeviceStat struct {
	Device    string  `json:"device"`
	Placement string  `json:"placement"`
	Cost      float64 `json:"cost"`
	Revenue   float64 `json:"revenue"`
	Roas      float64 `json:"roas"`
	Clicks    float64 `json:"clicks"`
}

// KeywordStat is one row of the top-keyword table.
type KeywordStat struct {
	Keyword     string  `json:"keyword"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	Roas        float64 `json:"roas"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
}

// FunnelAnalysis is the GFA-family funnel diagnosis block.
type FunnelAnalysis struct {
	CPM       float64 `json:"cpm"`
	CTR       float64 `json:"ctr"`
	CPC       float64 `json:"cpc"`
	CVR       float64 `json:"cvr"`
	Roas      float64 `json:"roas"`
	Diagnosis string  `json:"diagnosis"`
}

// CreativeStat is one row of the GFA creative (asset) breakdown.
type CreativeStat struct {
	CreativeName string  `json:"creativeName"`
	Cost         float64 `json:"cost"`
	Revenue      float64 `json:"revenue"`
	Roas         float64 `json:"roas"`
	Clicks       float64 `json:"clicks"`
	CTR          float64 `json:"ctr"`
	Conversions  float64 `json:"conversions"`
	Reach        float64 `json:"reach"`
	Frequency    float64 `json:"frequency"`
}

// AudienceStat is one row of a GFA audience breakdown (age or media).
type AudienceStat struct {
	Segment string  `json:"segment"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
	Roas    float64 `json:"roas"`
	Clicks  float64 `json:"clicks"`
}

// AnalysisReport is the structured output of one analysis request. It is
// built once per request and handed to the caller; it is never persisted
// server-side. All free-text fields are Korean.
type AnalysisReport struct {
	Summary        ExecutiveSummary `json:"summary"`
	CriticalIssues []string         `json:"criticalIssues"`
	ActionItems    []string         `json:"actionItems"`
	Insights       []InsightItem    `json:"insights"`
	TrendData      []ChartPoint     `json:"trendData"`

	// Search family
	WeeklyStats         []WeeklyStat  `json:"weeklyStats,omitempty"`
	CampaignStats       []CampaignStat `json:"campaignStats,omitempty"`
	DeviceStats         []DeviceStat  `json:"deviceStats,omitempty"`
	TopKeywords         []KeywordStat `json:"topKeywords,omitempty"`
	PerformanceByDevice []ChartPoint  `json:"performanceByDevice,omitempty"`
	KeywordOpportunities []string     `json:"keywordOpportunities,omitempty"`
	NegativeKeywords    []string      `json:"negativeKeywords,omitempty"`

	// GFA family
	Funnel            *FunnelAnalysis `json:"funnelAnalysis,omitempty"`
	CreativeStats     []CreativeStat  `json:"creativeStats,omitempty"`
	AudienceAgeStats  []AudienceStat  `json:"audienceAgeStats,omitempty"`
	AudienceMediaStats []AudienceStat `json:"audienceMediaStats,omitempty"`
}
