// Package scheduling binds the console to the /api/appointments resource.
package scheduling

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
)

// Room is the live channel room carrying appointment change hints.
const Room = "dashboard"

// Appointment is one scheduled visit.
type Appointment struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patientName"`
	DoctorName  string    `json:"doctorName"`
	Department  string    `json:"department,omitempty"`
	Status      string    `json:"status"` // scheduled, completed, cancelled
	ScheduledAt time.Time `json:"scheduledAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Fields describes the appointments screen's columns.
func Fields() view.Fields[Appointment] {
	return view.Fields[Appointment]{
		Text: map[string]func(Appointment) string{
			"search": func(a Appointment) string { return a.PatientName + " " + a.DoctorName },
		},
		Exact: map[string]func(Appointment) string{
			"status":     func(a Appointment) string { return a.Status },
			"department": func(a Appointment) string { return a.Department },
		},
		Sort: map[string]view.Comparator[Appointment]{
			"scheduledAt": view.TimeKey(func(a Appointment) time.Time { return a.ScheduledAt }),
			"createdAt":   view.TimeKey(func(a Appointment) time.Time { return a.CreatedAt }),
			"patient":     view.StringKey(func(a Appointment) string { return a.PatientName }),
		},
	}
}

// New creates the appointments page controller over the bare-array
// /api/appointments endpoint.
func New(api *rest.Client, logger zerolog.Logger) *controller.Controller[Appointment] {
	src := rest.NewResource[Appointment](api, "appointments", "")
	return controller.New[Appointment](src,
		controller.WithFields[Appointment](Fields()),
		controller.WithDefaultSort[Appointment](view.SortState{Key: "scheduledAt", Direction: view.Ascending}),
		controller.WithReloadOn[Appointment]("new-appointment", "dashboard-update"),
		controller.WithLogger[Appointment](logger),
	)
}
