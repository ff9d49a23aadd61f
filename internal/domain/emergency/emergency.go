// Package emergency binds the console to the /api/emergency resource.
package emergency

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
)

// Room is the live channel room carrying emergency change hints.
const Room = "emergency"

// Emergency is one emergency case as the server returns it.
type Emergency struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	Severity    string    `json:"severity"` // critical, moderate, low
	Location    string    `json:"location,omitempty"`
	Department  string    `json:"department,omitempty"`
	Status      string    `json:"status"` // open, in-progress, resolved
	CreatedAt   time.Time `json:"createdAt"`
}

// Fields describes the emergency screen's filterable and sortable columns.
func Fields() view.Fields[Emergency] {
	return view.Fields[Emergency]{
		Text: map[string]func(Emergency) string{
			"search": func(e Emergency) string { return e.PatientName + " " + e.Location },
		},
		Exact: map[string]func(Emergency) string{
			"severity":   func(e Emergency) string { return e.Severity },
			"status":     func(e Emergency) string { return e.Status },
			"department": func(e Emergency) string { return e.Department },
		},
		Sort: map[string]view.Comparator[Emergency]{
			"createdAt": view.TimeKey(func(e Emergency) time.Time { return e.CreatedAt }),
			"patient":   view.StringKey(func(e Emergency) string { return e.PatientName }),
			"severity":  view.StringKey(func(e Emergency) string { return e.Severity }),
		},
	}
}

// New creates the emergency page controller. The list endpoint returns a
// bare array. New cases and status changes both push hints, and each one
// triggers a full reload rather than a local merge.
func New(api *rest.Client, logger zerolog.Logger) *controller.Controller[Emergency] {
	src := rest.NewResource[Emergency](api, "emergency", "")
	return controller.New[Emergency](src,
		controller.WithFields[Emergency](Fields()),
		controller.WithDefaultSort[Emergency](view.SortState{Key: "createdAt", Direction: view.Descending}),
		controller.WithReloadOn[Emergency]("new-emergency", "emergency-update"),
		controller.WithLogger[Emergency](logger),
	)
}
