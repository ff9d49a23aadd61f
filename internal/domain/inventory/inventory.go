// Package inventory binds the console to the /api/inventory resource.
package inventory

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
)

// Room is the live channel room carrying inventory change hints.
const Room = "inventory"

// Item is one stocked supply line.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category,omitempty"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit,omitempty"`
	ReorderLevel float64   `json:"reorderLevel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LowStock reports whether the item is at or below its reorder level.
func (i Item) LowStock() bool {
	return i.Quantity <= i.ReorderLevel
}

// Fields describes the inventory screen's columns.
func Fields() view.Fields[Item] {
	return view.Fields[Item]{
		Text: map[string]func(Item) string{
			"search": func(i Item) string { return i.Name },
		},
		Exact: map[string]func(Item) string{
			"category": func(i Item) string { return i.Category },
		},
		Sort: map[string]view.Comparator[Item]{
			"name":      view.StringKey(func(i Item) string { return i.Name }),
			"quantity":  view.NumberKey(func(i Item) float64 { return i.Quantity }),
			"createdAt": view.TimeKey(func(i Item) time.Time { return i.CreatedAt }),
		},
	}
}

// New creates the inventory page controller. The list endpoint wraps its
// payload under "items".
func New(api *rest.Client, logger zerolog.Logger) *controller.Controller[Item] {
	src := rest.NewResource[Item](api, "inventory", "items")
	return controller.New[Item](src,
		controller.WithFields[Item](Fields()),
		controller.WithDefaultSort[Item](view.SortState{Key: "name", Direction: view.Ascending}),
		controller.WithReloadOn[Item]("inventory-updated"),
		controller.WithLogger[Item](logger),
	)
}
