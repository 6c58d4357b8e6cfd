package metrics

import (
	"math"
	"testing"
)

func TestAverageDailyAmount(t *testing.T) {
	daily := NewOrderedTotals()
	if got := AverageDailyAmount(daily); got != 0 {
		t.Fatalf("empty set must average to 0, got %.2f", got)
	}
	daily.Set("2024-01-01", 100)
	daily.Set("2024-01-02", 300)
	if got := AverageDailyAmount(daily); math.Abs(got-200) > 0.001 {
		t.Fatalf("expected 200, got %.2f", got)
	}
}

func TestPeakDayFirstEncounterWinsTies(t *testing.T) {
	daily := NewOrderedTotals()
	daily.Set("2024-01-02", 500)
	daily.Set("2024-01-01", 500)
	daily.Set("2024-01-03", 100)
	day, value := PeakDay(daily)
	if day != "2024-01-02" || value != 500 {
		t.Fatalf("expected first-encountered max, got %s=%.0f", day, value)
	}
}

func TestPeakDayEmpty(t *testing.T) {
	if day, value := PeakDay(NewOrderedTotals()); day != NoData || value != 0 {
		t.Fatalf("expected sentinel, got %s=%.0f", day, value)
	}
}

func TestTopProduct(t *testing.T) {
	products := NewOrderedTotals()
	products.Set("A", 300)
	products.Set("B", 700)
	products.Set("C", 0)
	if got := TopProduct(products); got != "B" {
		t.Fatalf("expected B, got %s", got)
	}

	flat := NewOrderedTotals()
	flat.Set("A", 0)
	flat.Set("B", 0)
	if got := TopProduct(flat); got != NoData {
		t.Fatalf("all-zero set must yield the sentinel, got %s", got)
	}
	if got := TopProduct(nil); got != NoData {
		t.Fatalf("nil set must yield the sentinel, got %s", got)
	}
}

func TestContributionPercent(t *testing.T) {
	products := NewOrderedTotals()
	products.Set("DDS", 250)
	products.Set("FD", 750)
	if got := ContributionPercent(products, "FD"); math.Abs(got-75) > 0.001 {
		t.Fatalf("expected 75%%, got %.2f", got)
	}
	if got := ContributionPercent(products, "RD"); got != 0 {
		t.Fatalf("unknown product contributes 0%%, got %.2f", got)
	}
	if got := ContributionPercent(NewOrderedTotals(), "DDS"); got != 0 {
		t.Fatalf("zero sum must guard the division, got %.2f", got)
	}
}

func TestAttainmentPercent(t *testing.T) {
	if got := AttainmentPercent(50, 200); math.Abs(got-25) > 0.001 {
		t.Fatalf("expected 25%%, got %.2f", got)
	}
	if got := AttainmentPercent(50, 0); got != 0 {
		t.Fatalf("absent target must yield 0, got %.2f", got)
	}
}
