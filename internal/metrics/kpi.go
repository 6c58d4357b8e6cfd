package metrics

// NoData is the display sentinel for rankings over an empty or all-zero set.
const NoData = "N/A"

// AverageDailyAmount divides the summed daily totals by the count of days
// that recorded one. Zero when no day qualifies.
func AverageDailyAmount(daily *OrderedTotals) float64 {
	if daily == nil || daily.Len() == 0 {
		return 0
	}
	return daily.Sum() / float64(daily.Len())
}

// PeakDay returns the day key with the highest total. Ties resolve to the
// first-encountered day, which is stable because OrderedTotals preserves
// insertion order. Returns (NoData, 0) for an empty set.
func PeakDay(daily *OrderedTotals) (string, float64) {
	return maxKey(daily)
}

// TopProduct returns the product label with the highest contribution total,
// or NoData when no product has a positive total.
func TopProduct(products *OrderedTotals) string {
	label, best := maxKey(products)
	if best <= 0 {
		return NoData
	}
	return label
}

// ContributionPercent reports a product's share of the summed contribution
// totals, in percent. Zero when the sum is zero.
func ContributionPercent(products *OrderedTotals, label string) float64 {
	if products == nil {
		return 0
	}
	total := products.Sum()
	if total <= 0 {
		return 0
	}
	value, ok := products.Get(label)
	if !ok {
		return 0
	}
	return value / total * 100
}

// AttainmentPercent reports achieved as a percentage of target, zero when
// the target is absent or non-positive.
func AttainmentPercent(achieved, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return achieved / target * 100
}

func maxKey(totals *OrderedTotals) (string, float64) {
	if totals == nil || totals.Len() == 0 {
		return NoData, 0
	}
	var bestKey string
	var best float64
	first := true
	for _, key := range totals.Keys() {
		v, _ := totals.Get(key)
		if first || v > best {
			bestKey, best, first = key, v, false
		}
	}
	return bestKey, best
}
