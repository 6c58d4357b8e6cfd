package metrics

// DayFormat keys the daily grouping maps.
const DayFormat = "2006-01-02"

// GrandTotals carries the two synthetic totals for a record set.
type GrandTotals struct {
	Amount  float64 `json:"amount"`
	Account float64 `json:"account"`
}

// Aggregation rules shared by every grouping below:
//
//   - Only strictly positive values count; zero or negative entries are
//     treated as absent.
//   - Records with a zero date are skipped.
//   - When an owner recorded an explicit grand total for a day, that value
//     replaces the computed sum of the owner's constituent metrics for the
//     same day. The explicit value is never added on top of the sum.

type ownerAgg struct {
	explicit    float64
	sum         float64
	hasExplicit bool
}

func (a *ownerAgg) total() float64 {
	if a.hasExplicit {
		return a.explicit
	}
	return a.sum
}

// accumulate groups records into buckets with per-owner-per-day override
// cells. bucket returns the grouping key for a record and false to skip it.
// grandTotal names the explicit metric for the axis; constituent decides
// whether a metric contributes to it.
func accumulate(records []Record, bucket func(Record) (string, bool), grandTotal string, constituent func(string) bool) *OrderedTotals {
	order := make([]string, 0)
	cells := make(map[string]map[string]*ownerAgg)
	for _, r := range records {
		if r.Date.IsZero() || r.Value <= 0 {
			continue
		}
		explicit := r.Metric == grandTotal
		if !explicit && !constituent(r.Metric) {
			continue
		}
		key, ok := bucket(r)
		if !ok {
			continue
		}
		owners, ok := cells[key]
		if !ok {
			owners = make(map[string]*ownerAgg)
			cells[key] = owners
			order = append(order, key)
		}
		cell := r.OwnerKey() + "\x00" + Day(r.Date).Format(DayFormat)
		agg, ok := owners[cell]
		if !ok {
			agg = &ownerAgg{}
			owners[cell] = agg
		}
		if explicit {
			agg.explicit += r.Value
			agg.hasExplicit = true
		} else {
			agg.sum += r.Value
		}
	}
	out := NewOrderedTotals()
	for _, key := range order {
		var total float64
		for _, agg := range cells[key] {
			total += agg.total()
		}
		out.Set(key, total)
	}
	return out
}

// DailyAmountTotals sums amount-metric values per calendar day, applying the
// grand-total override per owner. Keys use DayFormat in first-encounter
// order.
func DailyAmountTotals(records []Record, catalog *Catalog) *OrderedTotals {
	return accumulate(records, func(r Record) (string, bool) {
		return Day(r.Date).Format(DayFormat), true
	}, GrandTotalAmountMetric, catalog.IsAmountConstituent)
}

// TotalsByStaff sums amount-metric values per employee code. Records without
// a staff code are skipped.
func TotalsByStaff(records []Record, catalog *Catalog) *OrderedTotals {
	return accumulate(records, func(r Record) (string, bool) {
		return r.StaffCode, r.StaffCode != ""
	}, GrandTotalAmountMetric, catalog.IsAmountConstituent)
}

// TotalsByBranch sums amount-metric values per branch name. Records without
// a branch are skipped.
func TotalsByBranch(records []Record, catalog *Catalog) *OrderedTotals {
	return accumulate(records, func(r Record) (string, bool) {
		return r.Branch, r.Branch != ""
	}, GrandTotalAmountMetric, catalog.IsAmountConstituent)
}

// TotalsByMetric sums values per metric name across the record set, with no
// override handling. Used by the target progress view where each metric is
// compared individually.
func TotalsByMetric(records []Record) *OrderedTotals {
	out := NewOrderedTotals()
	for _, r := range records {
		if r.Date.IsZero() || r.Value <= 0 {
			continue
		}
		out.Add(r.Metric, r.Value)
	}
	return out
}

// ProductTotals merges the amount and account axes into per-product
// contribution totals: "DDS AMT" and "DDS AC" both land under "DDS". The two
// axes carry different units and are combined only for contribution-share
// display, so this is intentional rollup rather than double counting. Grand
// totals and unsuffixed metrics are excluded.
func ProductTotals(records []Record) *OrderedTotals {
	out := NewOrderedTotals()
	for _, r := range records {
		if r.Date.IsZero() || r.Value <= 0 {
			continue
		}
		label, ok := ProductLabel(r.Metric)
		if !ok {
			continue
		}
		out.Add(label, r.Value)
	}
	return out
}

// GrandTotal reduces the record set to its amount and account grand totals,
// applying the per-owner-per-day override on each axis independently.
func GrandTotal(records []Record, catalog *Catalog) GrandTotals {
	all := func(Record) (string, bool) { return "total", true }
	amount := accumulate(records, all, GrandTotalAmountMetric, catalog.IsAmountConstituent)
	account := accumulate(records, all, GrandTotalAccountMetric, catalog.IsAccountConstituent)
	return GrandTotals{Amount: amount.Sum(), Account: account.Sum()}
}
