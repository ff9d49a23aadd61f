// Package staff binds the console to the /api/doctors resource.
package staff

import (
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
)

// Room is the live channel room carrying staff change hints.
const Room = "dashboard"

// Doctor is one practitioner record.
type Doctor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Specialty  string    `json:"specialty,omitempty"`
	Department string    `json:"department,omitempty"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Fields describes the doctors screen's columns.
func Fields() view.Fields[Doctor] {
	return view.Fields[Doctor]{
		Text: map[string]func(Doctor) string{
			"search": func(d Doctor) string { return d.Name + " " + d.Specialty },
		},
		Exact: map[string]func(Doctor) string{
			"department": func(d Doctor) string { return d.Department },
			"specialty":  func(d Doctor) string { return d.Specialty },
		},
		Sort: map[string]view.Comparator[Doctor]{
			"name":      view.StringKey(func(d Doctor) string { return d.Name }),
			"createdAt": view.TimeKey(func(d Doctor) time.Time { return d.CreatedAt }),
		},
	}
}

// New creates the doctors page controller over the bare-array /api/doctors
// endpoint. department scopes the server-side query; empty means all.
func New(api *rest.Client, department string, logger zerolog.Logger) *controller.Controller[Doctor] {
	src := rest.NewResource[Doctor](api, "doctors", "")
	if department != "" {
		src = src.WithQuery(url.Values{"department": {department}})
	}
	return controller.New[Doctor](src,
		controller.WithFields[Doctor](Fields()),
		controller.WithDefaultSort[Doctor](view.SortState{Key: "name", Direction: view.Ascending}),
		controller.WithReloadOn[Doctor]("dashboard-update"),
		controller.WithLogger[Doctor](logger),
	)
}
