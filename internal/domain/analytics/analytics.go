// Package analytics aggregates fetched collections into the series the
// chart views consume. Rendering is the presentation layer's concern; this
// package only computes the data points.
package analytics

import (
	"sort"

	"github.com/hms/console/internal/domain/billing"
	"github.com/hms/console/internal/domain/emergency"
	"github.com/hms/console/internal/domain/finance"
	"github.com/hms/console/internal/domain/inventory"
)

// Room is the live channel room carrying analytics change hints.
const Room = "analytics"

// MonthlyRevenue is one month's billed total.
type MonthlyRevenue struct {
	Month   string  `json:"month"` // "2026-01"
	Revenue float64 `json:"revenue"`
	Bills   int     `json:"bills"`
}

// RevenueByMonth buckets bills by calendar month, ascending.
func RevenueByMonth(bills []billing.Bill) []MonthlyRevenue {
	buckets := make(map[string]*MonthlyRevenue)
	for _, b := range bills {
		month := b.CreatedAt.Format("2006-01")
		bucket, ok := buckets[month]
		if !ok {
			bucket = &MonthlyRevenue{Month: month}
			buckets[month] = bucket
		}
		bucket.Revenue += b.Amount
		bucket.Bills++
	}

	out := make([]MonthlyRevenue, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// SeverityCount is one slice of the emergency severity breakdown.
type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// EmergenciesBySeverity counts cases per severity, most frequent first;
// ties order alphabetically so the series is deterministic.
func EmergenciesBySeverity(cases []emergency.Emergency) []SeverityCount {
	counts := make(map[string]int)
	for _, e := range cases {
		counts[e.Severity]++
	}

	out := make([]SeverityCount, 0, len(counts))
	for sev, n := range counts {
		out = append(out, SeverityCount{Severity: sev, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Severity < out[j].Severity
	})
	return out
}

// LowStock returns the items at or below their reorder level, keeping
// fetch order.
func LowStock(items []inventory.Item) []inventory.Item {
	var out []inventory.Item
	for _, i := range items {
		if i.LowStock() {
			out = append(out, i)
		}
	}
	return out
}

// Utilization is one department's budget consumption.
type Utilization struct {
	Department string  `json:"department"`
	Allocated  float64 `json:"allocated"`
	Spent      float64 `json:"spent"`
	Percent    float64 `json:"percent"` // 0 when nothing is allocated
}

// BudgetUtilization sums budget lines per department, ascending by name.
func BudgetUtilization(budgets []finance.Budget) []Utilization {
	byDept := make(map[string]*Utilization)
	for _, b := range budgets {
		u, ok := byDept[b.Department]
		if !ok {
			u = &Utilization{Department: b.Department}
			byDept[b.Department] = u
		}
		u.Allocated += b.Allocated
		u.Spent += b.Spent
	}

	out := make([]Utilization, 0, len(byDept))
	for _, u := range byDept {
		if u.Allocated > 0 {
			u.Percent = u.Spent / u.Allocated * 100
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}
