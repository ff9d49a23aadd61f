// Package billing binds the console to the /api/billing resource.
package billing

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
)

// Room is the live channel room carrying billing change hints.
const Room = "dashboard"

// Bill is one patient invoice as the server returns it.
type Bill struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Status      string    `json:"status"` // paid, pending, overdue
	CreatedAt   time.Time `json:"createdAt"`
}

// Fields describes the billing screen's filterable and sortable columns.
func Fields() view.Fields[Bill] {
	return view.Fields[Bill]{
		Text: map[string]func(Bill) string{
			"search": func(b Bill) string { return b.PatientName + " " + b.Description },
		},
		Exact: map[string]func(Bill) string{
			"status": func(b Bill) string { return b.Status },
		},
		Sort: map[string]view.Comparator[Bill]{
			"amount":    view.NumberKey(func(b Bill) float64 { return b.Amount }),
			"createdAt": view.TimeKey(func(b Bill) time.Time { return b.CreatedAt }),
			"patient":   view.StringKey(func(b Bill) string { return b.PatientName }),
		},
	}
}

// New creates the billing page controller. The list endpoint wraps its
// payload under "bills".
func New(api *rest.Client, logger zerolog.Logger) *controller.Controller[Bill] {
	src := rest.NewResource[Bill](api, "billing", "bills")
	return controller.New[Bill](src,
		controller.WithFields[Bill](Fields()),
		controller.WithDefaultSort[Bill](view.SortState{Key: "createdAt", Direction: view.Descending}),
		controller.WithReloadOn[Bill]("dashboard-update"),
		controller.WithLogger[Bill](logger),
	)
}
