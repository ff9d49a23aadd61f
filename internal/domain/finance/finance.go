// Package finance binds the console to the budget and financial-report
// resources.
package finance

import (
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
)

// Room is the live channel room carrying finance change hints.
const Room = "analytics"

// Budget is one department budget line.
type Budget struct {
	ID         string    `json:"id"`
	Department string    `json:"department"`
	Category   string    `json:"category,omitempty"`
	Allocated  float64   `json:"allocated"`
	Spent      float64   `json:"spent"`
	Period     string    `json:"period,omitempty"` // e.g. "2026-Q1"
	CreatedAt  time.Time `json:"createdAt"`
}

// Remaining returns the unspent part of the budget.
func (b Budget) Remaining() float64 {
	return b.Allocated - b.Spent
}

// FinancialReport is one periodic revenue/expense summary.
type FinancialReport struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Period    string    `json:"period"`
	Revenue   float64   `json:"revenue"`
	Expenses  float64   `json:"expenses"`
	CreatedAt time.Time `json:"createdAt"`
}

// Net returns revenue minus expenses.
func (r FinancialReport) Net() float64 {
	return r.Revenue - r.Expenses
}

// BudgetFields describes the budget screen's columns.
func BudgetFields() view.Fields[Budget] {
	return view.Fields[Budget]{
		Text: map[string]func(Budget) string{
			"search": func(b Budget) string { return b.Department + " " + b.Category },
		},
		Exact: map[string]func(Budget) string{
			"department": func(b Budget) string { return b.Department },
			"period":     func(b Budget) string { return b.Period },
		},
		Sort: map[string]view.Comparator[Budget]{
			"allocated": view.NumberKey(func(b Budget) float64 { return b.Allocated }),
			"spent":     view.NumberKey(func(b Budget) float64 { return b.Spent }),
			"createdAt": view.TimeKey(func(b Budget) time.Time { return b.CreatedAt }),
		},
	}
}

// ReportFields describes the financial-report screen's columns.
func ReportFields() view.Fields[FinancialReport] {
	return view.Fields[FinancialReport]{
		Text: map[string]func(FinancialReport) string{
			"search": func(r FinancialReport) string { return r.Title },
		},
		Exact: map[string]func(FinancialReport) string{
			"period": func(r FinancialReport) string { return r.Period },
		},
		Sort: map[string]view.Comparator[FinancialReport]{
			"revenue":   view.NumberKey(func(r FinancialReport) float64 { return r.Revenue }),
			"expenses":  view.NumberKey(func(r FinancialReport) float64 { return r.Expenses }),
			"createdAt": view.TimeKey(func(r FinancialReport) time.Time { return r.CreatedAt }),
		},
	}
}

// NewBudgets creates the budget page controller over the bare-array
// /api/budget endpoint.
func NewBudgets(api *rest.Client, logger zerolog.Logger) *controller.Controller[Budget] {
	src := rest.NewResource[Budget](api, "budget", "")
	return controller.New[Budget](src,
		controller.WithFields[Budget](BudgetFields()),
		controller.WithDefaultSort[Budget](view.SortState{Key: "createdAt", Direction: view.Descending}),
		controller.WithReloadOn[Budget]("analytics-update"),
		controller.WithLogger[Budget](logger),
	)
}

// NewReports creates the financial-report page controller. days scopes the
// server-side query to the trailing window; zero means no scoping.
func NewReports(api *rest.Client, days int, logger zerolog.Logger) *controller.Controller[FinancialReport] {
	src := rest.NewResource[FinancialReport](api, "financial-reports", "reports")
	if days > 0 {
		src = src.WithQuery(url.Values{"days": {strconv.Itoa(days)}})
	}
	return controller.New[FinancialReport](src,
		controller.WithFields[FinancialReport](ReportFields()),
		controller.WithDefaultSort[FinancialReport](view.SortState{Key: "createdAt", Direction: view.Descending}),
		controller.WithReloadOn[FinancialReport]("analytics-update"),
		controller.WithLogger[FinancialReport](logger),
	)
}
