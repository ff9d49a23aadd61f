// Package dashboard composes the four collections the overview screen shows.
// The initial load issues all fetches in parallel and waits for the full set
// to settle; each one degrades independently to an empty default on failure
// instead of aborting its siblings.
package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/domain/billing"
	"github.com/hms/console/internal/domain/emergency"
	"github.com/hms/console/internal/domain/inventory"
	"github.com/hms/console/internal/domain/scheduling"
	"github.com/hms/console/internal/rest"
)

// Room is the live channel room the dashboard joins.
const Room = "dashboard"

// Overview holds the dashboard's collections after a composite load. Errs
// records which fetches failed; their slices stay empty.
type Overview struct {
	Appointments []scheduling.Appointment
	Emergencies  []emergency.Emergency
	Bills        []billing.Bill
	Inventory    []inventory.Item
	Errs         map[string]error
}

// Summary is the headline-figure strip at the top of the dashboard.
type Summary struct {
	Appointments      int
	OpenEmergencies   int
	PendingBills      int
	PendingBillAmount float64
	LowStockItems     int
}

// Loader fetches the dashboard's collections.
type Loader struct {
	appointments *rest.Resource[scheduling.Appointment]
	emergencies  *rest.Resource[emergency.Emergency]
	bills        *rest.Resource[billing.Bill]
	inventory    *rest.Resource[inventory.Item]
	logger       zerolog.Logger
}

// NewLoader creates a dashboard loader over the shared API client.
func NewLoader(api *rest.Client, logger zerolog.Logger) *Loader {
	return &Loader{
		appointments: rest.NewResource[scheduling.Appointment](api, "appointments", ""),
		emergencies:  rest.NewResource[emergency.Emergency](api, "emergency", ""),
		bills:        rest.NewResource[billing.Bill](api, "billing", "bills"),
		inventory:    rest.NewResource[inventory.Item](api, "inventory", "items"),
		logger:       logger,
	}
}

// Load fetches all four collections in parallel and returns once every
// fetch has settled.
func (l *Loader) Load(ctx context.Context) Overview {
	ov := Overview{Errs: make(map[string]error)}

	var wg sync.WaitGroup
	var mu sync.Mutex

	fail := func(name string, err error) {
		mu.Lock()
		ov.Errs[name] = err
		mu.Unlock()
		l.logger.Warn().Err(err).Str("collection", name).Msg("dashboard fetch failed, showing empty default")
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		items, err := l.appointments.List(ctx)
		if err != nil {
			fail("appointments", err)
			return
		}
		ov.Appointments = items
	}()
	go func() {
		defer wg.Done()
		items, err := l.emergencies.List(ctx)
		if err != nil {
			fail("emergencies", err)
			return
		}
		ov.Emergencies = items
	}()
	go func() {
		defer wg.Done()
		items, err := l.bills.List(ctx)
		if err != nil {
			fail("bills", err)
			return
		}
		ov.Bills = items
	}()
	go func() {
		defer wg.Done()
		items, err := l.inventory.List(ctx)
		if err != nil {
			fail("inventory", err)
			return
		}
		ov.Inventory = items
	}()
	wg.Wait()

	return ov
}

// Summarize computes the dashboard headline figures.
func (o Overview) Summarize() Summary {
	s := Summary{Appointments: len(o.Appointments)}
	for _, e := range o.Emergencies {
		if e.Status != "resolved" {
			s.OpenEmergencies++
		}
	}
	for _, b := range o.Bills {
		if b.Status == "pending" || b.Status == "overdue" {
			s.PendingBills++
			s.PendingBillAmount += b.Amount
		}
	}
	for _, i := range o.Inventory {
		if i.LowStock() {
			s.LowStockItems++
		}
	}
	return s
}
