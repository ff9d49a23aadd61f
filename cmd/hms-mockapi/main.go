package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/console/internal/fixture"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-mockapi",
		Short: "In-memory hospital API double for console development",
	}
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API double",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			seed, _ := cmd.Flags().GetBool("seed")

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

			store := fixture.NewStore()
			if seed {
				seedDemoData(store)
			}
			srv := fixture.NewServer(store, fixture.DefaultSpecs(), logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				logger.Info().Str("addr", addr).Msg("mock API listening")
				if err := srv.Echo.Start(addr); err != nil && err != http.ErrServerClosed {
					logger.Error().Err(err).Msg("server stopped")
					stop()
				}
			}()

			<-ctx.Done()
			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Echo.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", ":8000", "Listen address")
	cmd.Flags().Bool("seed", true, "Seed demo records on startup")
	return cmd
}

func seedDemoData(store *fixture.Store) {
	now := time.Now().UTC()
	day := func(d int) string { return now.AddDate(0, 0, -d).Format(time.RFC3339) }

	store.Seed("bills", []fixture.Record{
		{"id": "bill-1", "patientName": "Ana Flores", "description": "MRI scan", "amount": 450.5, "status": "pending", "createdAt": day(2)},
		{"id": "bill-2", "patientName": "Ben Okafor", "description": "Consultation", "amount": 80.0, "status": "paid", "createdAt": day(5)},
		{"id": "bill-3", "patientName": "Chloe Martin", "description": "X-ray", "amount": 120.0, "status": "overdue", "createdAt": day(40)},
	})
	store.Seed("budgets", []fixture.Record{
		{"id": "budget-1", "department": "radiology", "category": "equipment", "allocated": 50000.0, "spent": 32000.0, "period": "2026-Q3", "createdAt": day(60)},
		{"id": "budget-2", "department": "emergency", "category": "supplies", "allocated": 20000.0, "spent": 18500.0, "period": "2026-Q3", "createdAt": day(60)},
	})
	store.Seed("financial-reports", []fixture.Record{
		{"id": "report-1", "title": "July summary", "period": "2026-07", "revenue": 182000.0, "expenses": 140500.0, "createdAt": day(29)},
		{"id": "report-2", "title": "August summary", "period": "2026-08", "revenue": 195300.0, "expenses": 151200.0, "createdAt": day(1)},
	})
	store.Seed("emergencies", []fixture.Record{
		{"id": "em-1", "patientName": "Dan Ivanov", "severity": "critical", "location": "ER bay 2", "department": "emergency", "status": "open", "createdAt": day(0)},
		{"id": "em-2", "patientName": "Eva Brandt", "severity": "moderate", "location": "ER bay 5", "department": "emergency", "status": "in-progress", "createdAt": day(0)},
		{"id": "em-3", "patientName": "Finn Moore", "severity": "low", "location": "walk-in", "department": "emergency", "status": "resolved", "createdAt": day(1)},
	})
	store.Seed("inventory", []fixture.Record{
		{"id": "inv-1", "name": "Surgical gloves", "category": "consumables", "quantity": 40.0, "unit": "box", "reorderLevel": 50.0, "createdAt": day(90)},
		{"id": "inv-2", "name": "Saline 0.9%", "category": "fluids", "quantity": 320.0, "unit": "bag", "reorderLevel": 100.0, "createdAt": day(90)},
	})
	store.Seed("doctors", []fixture.Record{
		{"id": "doc-1", "name": "Dr. Grace Lin", "specialty": "cardiology", "department": "cardiology", "available": true, "createdAt": day(300)},
		{"id": "doc-2", "name": "Dr. Hugo Reyes", "specialty": "emergency medicine", "department": "emergency", "available": true, "createdAt": day(200)},
	})
	store.Seed("users", []fixture.Record{
		{"id": "user-1", "name": "Ida Keller", "email": "ida@hospital.test", "role": "admin", "createdAt": day(400)},
		{"id": "user-2", "name": "Jon Park", "email": "jon@hospital.test", "role": "nurse", "createdAt": day(120)},
	})
	store.Seed("appointments", []fixture.Record{
		{"id": "appt-1", "patientName": "Ana Flores", "doctorName": "Dr. Grace Lin", "department": "cardiology", "status": "scheduled", "scheduledAt": now.AddDate(0, 0, 1).Format(time.RFC3339), "createdAt": day(3)},
		{"id": "appt-2", "patientName": "Ben Okafor", "doctorName": "Dr. Hugo Reyes", "department": "emergency", "status": "completed", "scheduledAt": day(2), "createdAt": day(7)},
	})
}
