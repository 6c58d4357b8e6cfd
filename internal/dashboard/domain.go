package dashboard

import (
	"strings"
	"time"

	"github.com/branchpulse/branchpulse/internal/metrics"
)

// Filter narrows the record snapshot before aggregation. From/To bound the
// inclusive window; Day and Product are the optional refinements layered on
// top of it. The UI offers Day and Product as mutually exclusive toggles but
// the filter composes them when both arrive.
type Filter struct {
	From    *time.Time
	To      *time.Time
	Day     *time.Time
	Product string
}

// CacheToken renders the filter into a cache key fragment.
func (f Filter) CacheToken() string {
	parts := []string{dayToken(f.From), dayToken(f.To), dayToken(f.Day)}
	if f.Product == "" {
		parts = append(parts, "-")
	} else {
		parts = append(parts, f.Product)
	}
	return strings.Join(parts, ":")
}

func dayToken(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(metrics.DayFormat)
}

// Overview is the KPI card for the caller's scope and window.
type Overview struct {
	TotalAmount   float64 `json:"total_amount"`
	TotalAccount  float64 `json:"total_account"`
	AverageDaily  float64 `json:"average_daily_amount"`
	PeakDay       string  `json:"peak_day"`
	PeakDayAmount float64 `json:"peak_day_amount"`
	TopProduct    string  `json:"top_product"`
	DaysCounted   int     `json:"days_counted"`
}

// ProductShare is one slice of the contribution breakdown.
type ProductShare struct {
	Product  string  `json:"product"`
	Total    float64 `json:"total"`
	SharePct float64 `json:"share_pct"`
}

// ReportRow is a per-staff or per-branch total line.
type ReportRow struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// Report carries the per-staff and per-branch rollups side by side.
type Report struct {
	Staff    []ReportRow `json:"staff"`
	Branches []ReportRow `json:"branches"`
}

// ProgressRow compares one metric's monthly target with its achievement and
// the projected value entered for the month.
type ProgressRow struct {
	Metric        string  `json:"metric"`
	Target        float64 `json:"target"`
	Achieved      float64 `json:"achieved"`
	Projected     float64 `json:"projected"`
	AttainmentPct float64 `json:"attainment_pct"`
}

// Progress is the target-attainment view for one month.
type Progress struct {
	Month            string        `json:"month"`
	Rows             []ProgressRow `json:"rows"`
	AmountTarget     float64       `json:"amount_target"`
	AmountAchieved   float64       `json:"amount_achieved"`
	AmountProjected  float64       `json:"amount_projected"`
	AmountAttainPct  float64       `json:"amount_attain_pct"`
	AccountTarget    float64       `json:"account_target"`
	AccountAchieved  float64       `json:"account_achieved"`
	AccountProjected float64       `json:"account_projected"`
	AccountAttainPct float64       `json:"account_attain_pct"`
}
