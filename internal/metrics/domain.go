package metrics

import (
	"strings"
	"time"

	"github.com/branchpulse/branchpulse/internal/directory"
)

// RecordKind distinguishes the three record collections the engine consumes.
type RecordKind string

const (
	KindAchievement RecordKind = "achievement"
	KindTarget      RecordKind = "target"
	KindProjection  RecordKind = "projection"
)

// Metric name conventions. Amount metrics end in " AMT", account metrics in
// " AC". Two synthetic grand totals may be recorded explicitly and, when
// present, replace the computed constituent sum for that owner and day.
const (
	AmountSuffix  = " AMT"
	AccountSuffix = " AC"

	GrandTotalAmountMetric  = "TOTAL AMT"
	GrandTotalAccountMetric = "TOTAL AC"

	// MembersMetric is categorized Other in the catalog but counts toward
	// the account grand total.
	MembersMetric = "MEMBERS"
)

// Record is one achievement, target, or projection entry. Dates are calendar
// days; the time component is ignored by every comparison in this package.
type Record struct {
	Kind      RecordKind
	Date      time.Time
	StaffCode string
	Branch    string
	Metric    string
	Value     float64
	DueDate   *time.Time
}

// OwnerKey identifies the record owner for override grouping: the staff code
// when present, otherwise the branch name.
func (r Record) OwnerKey() string {
	if r.StaffCode != "" {
		return r.StaffCode
	}
	return r.Branch
}

// Catalog answers category questions about metric names. A nil or empty
// catalog falls back to the name-suffix conventions, which keeps the engine
// usable over record snapshots that predate the metric directory.
type Catalog struct {
	byName map[string]directory.MetricCategory
}

// NewCatalog indexes the product-metric directory.
func NewCatalog(metrics []directory.ProductMetric) *Catalog {
	c := &Catalog{byName: make(map[string]directory.MetricCategory, len(metrics))}
	for _, m := range metrics {
		c.byName[m.Name] = m.Category
	}
	return c
}

// IsGrandTotal reports whether name is one of the two synthetic totals.
func (c *Catalog) IsGrandTotal(name string) bool {
	return name == GrandTotalAmountMetric || name == GrandTotalAccountMetric
}

// IsAmountConstituent reports whether name contributes to the amount total.
func (c *Catalog) IsAmountConstituent(name string) bool {
	if c.IsGrandTotal(name) {
		return false
	}
	if c != nil && len(c.byName) > 0 {
		if cat, ok := c.byName[name]; ok {
			return cat == directory.CategoryAmount
		}
	}
	return strings.HasSuffix(name, AmountSuffix)
}

// IsAccountConstituent reports whether name contributes to the account
// total. MEMBERS counts here despite its Other category.
func (c *Catalog) IsAccountConstituent(name string) bool {
	if c.IsGrandTotal(name) {
		return false
	}
	if name == MembersMetric {
		return true
	}
	if c != nil && len(c.byName) > 0 {
		if cat, ok := c.byName[name]; ok {
			return cat == directory.CategoryAccount
		}
	}
	return strings.HasSuffix(name, AccountSuffix)
}

// ProductLabel strips the axis suffix from a metric name. The second return
// is false for grand totals and metrics carrying neither suffix.
func ProductLabel(name string) (string, bool) {
	if name == GrandTotalAmountMetric || name == GrandTotalAccountMetric {
		return "", false
	}
	if label, ok := strings.CutSuffix(name, AmountSuffix); ok {
		return label, true
	}
	if label, ok := strings.CutSuffix(name, AccountSuffix); ok {
		return label, true
	}
	return "", false
}

// OrderedTotals is an insertion-ordered key→total mapping. Iteration order is
// first-encounter order, which makes tie-breaking in the KPI layer
// reproducible for a given record snapshot.
type OrderedTotals struct {
	keys   []string
	totals map[string]float64
}

// NewOrderedTotals returns an empty mapping.
func NewOrderedTotals() *OrderedTotals {
	return &OrderedTotals{totals: make(map[string]float64)}
}

// Add accumulates v onto key, registering the key on first use.
func (t *OrderedTotals) Add(key string, v float64) {
	if _, ok := t.totals[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.totals[key] += v
}

// Set overwrites the total for key, registering the key on first use.
func (t *OrderedTotals) Set(key string, v float64) {
	if _, ok := t.totals[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.totals[key] = v
}

// Get returns the total for key.
func (t *OrderedTotals) Get(key string) (float64, bool) {
	v, ok := t.totals[key]
	return v, ok
}

// Keys returns keys in first-encounter order. Callers must not mutate it.
func (t *OrderedTotals) Keys() []string {
	return t.keys
}

// Len reports the number of keys.
func (t *OrderedTotals) Len() int {
	return len(t.keys)
}

// Sum adds up every total.
func (t *OrderedTotals) Sum() float64 {
	var sum float64
	for _, k := range t.keys {
		sum += t.totals[k]
	}
	return sum
}
