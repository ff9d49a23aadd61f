package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/console/internal/config"
	"github.com/hms/console/internal/controller"
	"github.com/hms/console/internal/domain/analytics"
	"github.com/hms/console/internal/domain/billing"
	"github.com/hms/console/internal/domain/dashboard"
	"github.com/hms/console/internal/domain/emergency"
	"github.com/hms/console/internal/domain/finance"
	"github.com/hms/console/internal/domain/identity"
	"github.com/hms/console/internal/domain/inventory"
	"github.com/hms/console/internal/domain/scheduling"
	"github.com/hms/console/internal/domain/staff"
	"github.com/hms/console/internal/export"
	"github.com/hms/console/internal/live"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/session"
	"github.com/hms/console/internal/view"
	"github.com/hms/console/pkg/paging"
)

// app carries the shared wiring every subcommand needs. It is populated by
// the root command's PersistentPreRunE so flag parsing stays ahead of any
// network setup.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	sess   *session.Session
	api    *rest.Client
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	sess := session.New(cfg.Token)
	if cfg.TokenFile != "" {
		sess, err = session.LoadFile(cfg.TokenFile)
		if err != nil {
			return err
		}
	}

	api, err := rest.NewClient(cfg.APIBaseURL, sess,
		rest.WithTimeout(cfg.HTTPTimeout),
		rest.WithGetRetries(cfg.GetRetries),
		rest.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.sess = sess
	a.api = api
	return nil
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "hms-console",
		Short:         "Hospital management console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	rootCmd.AddCommand(resourceCommands(a, "bills", "dashboard", nil,
		func(a *app, cmd *cobra.Command) *controller.Controller[billing.Bill] {
			return billing.New(a.api, a.logger)
		}, export.Bills))
	rootCmd.AddCommand(resourceCommands(a, "emergencies", "emergency", nil,
		func(a *app, cmd *cobra.Command) *controller.Controller[emergency.Emergency] {
			return emergency.New(a.api, a.logger)
		}, export.Emergencies))
	rootCmd.AddCommand(resourceCommands(a, "budgets", "analytics", nil,
		func(a *app, cmd *cobra.Command) *controller.Controller[finance.Budget] {
			return finance.NewBudgets(a.api, a.logger)
		}, export.Budgets))
	rootCmd.AddCommand(resourceCommands(a, "reports", "analytics",
		func(cmd *cobra.Command) {
			cmd.Flags().Int("days", 0, "Limit to reports from the trailing N days")
		},
		func(a *app, cmd *cobra.Command) *controller.Controller[finance.FinancialReport] {
			days, _ := cmd.Flags().GetInt("days")
			return finance.NewReports(a.api, days, a.logger)
		}, export.Reports))
	rootCmd.AddCommand(resourceCommands(a, "inventory", "inventory", nil,
		func(a *app, cmd *cobra.Command) *controller.Controller[inventory.Item] {
			return inventory.New(a.api, a.logger)
		}, export.Inventory))
	rootCmd.AddCommand(resourceCommands(a, "doctors", "dashboard",
		func(cmd *cobra.Command) {
			cmd.Flags().String("department", "", "Scope the server-side query to one department")
		},
		func(a *app, cmd *cobra.Command) *controller.Controller[staff.Doctor] {
			dept, _ := cmd.Flags().GetString("department")
			return staff.New(a.api, dept, a.logger)
		}, doctorTable))
	rootCmd.AddCommand(resourceCommands(a, "users", "dashboard",
		func(cmd *cobra.Command) {
			cmd.Flags().StringSlice("roles", nil, "Scope the server-side query to these roles")
		},
		func(a *app, cmd *cobra.Command) *controller.Controller[identity.User] {
			roles, _ := cmd.Flags().GetStringSlice("roles")
			return identity.New(a.api, roles, a.logger)
		}, userTable))
	rootCmd.AddCommand(resourceCommands(a, "appointments", "dashboard", nil,
		func(a *app, cmd *cobra.Command) *controller.Controller[scheduling.Appointment] {
			return scheduling.New(a.api, a.logger)
		}, appointmentTable))

	rootCmd.AddCommand(dashboardCmd(a))
	rootCmd.AddCommand(analyticsCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(whoamiCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Generic resource commands
// ---------------------------------------------------------------------------

// resourceCommands builds the list/create/update/delete command group for one
// resource. extraFlags registers resource-specific flags on every subcommand;
// build turns the parsed flags into a page controller.
func resourceCommands[T any](
	a *app,
	use, room string,
	extraFlags func(*cobra.Command),
	build func(*app, *cobra.Command) *controller.Controller[T],
	table func([]T) export.Table,
) *cobra.Command {
	group := &cobra.Command{
		Use:   use,
		Short: "Manage " + use,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + use,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := build(a, cmd)
			defer ctrl.Close()

			follow, _ := cmd.Flags().GetBool("follow")
			ctx := cmd.Context()
			if follow {
				var stop context.CancelFunc
				ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
			}

			if err := ctrl.Load(ctx); err != nil {
				return err
			}

			q, err := queryFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := render(cmd, ctrl.View(q), table); err != nil {
				return err
			}
			if !follow {
				return nil
			}
			return followUpdates(ctx, a, cmd, room, ctrl, q, table)
		},
	}
	listCmd.Flags().StringArray("filter", nil, "Filter as key=value (repeatable; all must match)")
	listCmd.Flags().String("sort", "", "Sort key")
	listCmd.Flags().Bool("desc", false, "Sort descending")
	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("page-size", 0, "Records per page (0 uses the configured default)")
	listCmd.Flags().String("export", "", "Write the full filtered set instead of printing: csv, json or xlsx")
	listCmd.Flags().String("out", "", "Export destination file (default stdout)")
	listCmd.Flags().Bool("follow", false, "Keep running and re-render on live change hints")

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create one record and reload the list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := build(a, cmd)
			defer ctrl.Close()

			var draft T
			if err := decodeDataFlag(cmd, &draft); err != nil {
				return err
			}
			if err := ctrl.Create(cmd.Context(), draft); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created; %d records now loaded\n", len(ctrl.Snapshot().Items))
			return nil
		},
	}
	createCmd.Flags().String("data", "", "Record as a JSON object")
	createCmd.Flags().String("file", "", "Read the record from a JSON file instead")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update one record and reload the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := build(a, cmd)
			defer ctrl.Close()

			var patch map[string]any
			if err := decodeDataFlag(cmd, &patch); err != nil {
				return err
			}
			if err := ctrl.Update(cmd.Context(), args[0], patch); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "updated", args[0])
			return nil
		},
	}
	updateCmd.Flags().String("data", "", "Changed fields as a JSON object")
	updateCmd.Flags().String("file", "", "Read the changed fields from a JSON file instead")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record and reload the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := build(a, cmd)
			defer ctrl.Close()

			if err := ctrl.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		},
	}

	for _, cmd := range []*cobra.Command{listCmd, createCmd, updateCmd, deleteCmd} {
		if extraFlags != nil {
			extraFlags(cmd)
		}
		group.AddCommand(cmd)
	}
	return group
}

func queryFromFlags(cmd *cobra.Command) (view.Query, error) {
	var q view.Query

	pairs, _ := cmd.Flags().GetStringArray("filter")
	if len(pairs) > 0 {
		q.Filters = view.FilterState{}
		for _, pair := range pairs {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return q, fmt.Errorf("invalid --filter %q, want key=value", pair)
			}
			q.Filters[key] = value
		}
	}

	sortKey, _ := cmd.Flags().GetString("sort")
	if sortKey != "" {
		q.Sort = view.SortState{Key: sortKey, Direction: view.Ascending}
		if desc, _ := cmd.Flags().GetBool("desc"); desc {
			q.Sort.Direction = view.Descending
		}
	}

	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("page-size")
	q.Page = paging.Params{Page: page, PageSize: size}
	return q, nil
}

func decodeDataFlag(cmd *cobra.Command, out any) error {
	data, _ := cmd.Flags().GetString("data")
	file, _ := cmd.Flags().GetString("file")
	switch {
	case data != "" && file != "":
		return fmt.Errorf("--data and --file are mutually exclusive")
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		data = string(raw)
	case data == "":
		return fmt.Errorf("either --data or --file is required")
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("parse record JSON: %w", err)
	}
	return nil
}

func render[T any](cmd *cobra.Command, result view.Result[T], table func([]T) export.Table) error {
	format, _ := cmd.Flags().GetString("export")
	if format != "" {
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			file, err := os.Create(path)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}
		return table(result.Items).Write(out, f)
	}

	printTable(cmd, table(result.Items))
	fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d matching)\n", result.Page, result.TotalPages, result.Total)
	return nil
}

func printTable(cmd *cobra.Command, t export.Table) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// followUpdates joins the resource's live room and re-renders the view each
// time a change hint triggers a reload. It returns when the context is
// cancelled (Ctrl-C) or the socket drops.
func followUpdates[T any](
	ctx context.Context,
	a *app,
	cmd *cobra.Command,
	room string,
	ctrl *controller.Controller[T],
	q view.Query,
	table func([]T) export.Table,
) error {
	lc, err := live.Dial(ctx, a.cfg.SocketURL, []string{room}, live.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("connect live channel: %w", err)
	}
	defer lc.Close()

	a.logger.Info().Str("room", room).Msg("following live updates")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-lc.Events():
			if !ok {
				return fmt.Errorf("live channel closed")
			}
			if err := ctrl.HandleLiveUpdate(ctx, ev); err != nil {
				a.logger.Warn().Err(err).Str("event", ev.Type).Msg("reload after change hint failed")
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n-- %s --\n", ev.Type)
			if err := render(cmd, ctrl.View(q), table); err != nil {
				return err
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Composite commands
// ---------------------------------------------------------------------------

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the overview headline figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := dashboard.NewLoader(a.api, a.logger)
			ov := loader.Load(cmd.Context())
			s := ov.Summarize()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "appointments\t%d\n", s.Appointments)
			fmt.Fprintf(w, "open emergencies\t%d\n", s.OpenEmergencies)
			fmt.Fprintf(w, "pending bills\t%d ($%.2f)\n", s.PendingBills, s.PendingBillAmount)
			fmt.Fprintf(w, "low-stock items\t%d\n", s.LowStockItems)
			w.Flush()

			for name, err := range ov.Errs {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s unavailable: %v\n", name, err)
			}
			return nil
		},
	}
}

func analyticsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show revenue, emergency and budget breakdowns",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := dashboard.NewLoader(a.api, a.logger)
			ov := loader.Load(cmd.Context())

			budgets, err := rest.NewResource[finance.Budget](a.api, "budget", "").List(cmd.Context())
			if err != nil {
				a.logger.Warn().Err(err).Msg("budget fetch failed, showing empty default")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "revenue by month")
			for _, m := range analytics.RevenueByMonth(ov.Bills) {
				fmt.Fprintf(out, "  %s\t$%.2f\t(%d bills)\n", m.Month, m.Revenue, m.Bills)
			}
			fmt.Fprintln(out, "emergencies by severity")
			for _, s := range analytics.EmergenciesBySeverity(ov.Emergencies) {
				fmt.Fprintf(out, "  %s\t%d\n", s.Severity, s.Count)
			}
			fmt.Fprintln(out, "low stock")
			for _, i := range analytics.LowStock(ov.Inventory) {
				fmt.Fprintf(out, "  %s\t%v/%v\n", i.Name, i.Quantity, i.ReorderLevel)
			}
			fmt.Fprintln(out, "budget utilization")
			for _, u := range analytics.BudgetUtilization(budgets) {
				fmt.Fprintf(out, "  %s\t%.0f%%\t($%.2f of $%.2f)\n", u.Department, u.Percent, u.Spent, u.Allocated)
			}

			for name, err := range ov.Errs {
				fmt.Fprintf(out, "warning: %s unavailable: %v\n", name, err)
			}
			return nil
		},
	}
}

func watchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live change hints from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, _ := cmd.Flags().GetStringSlice("rooms")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lc, err := live.Dial(ctx, a.cfg.SocketURL, rooms, live.WithLogger(a.logger))
			if err != nil {
				return fmt.Errorf("connect live channel: %w", err)
			}
			defer lc.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-lc.Events():
					if !ok {
						return fmt.Errorf("live channel closed")
					}
					if err := enc.Encode(ev); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().StringSlice("rooms", []string{
		dashboard.Room, emergency.Room, analytics.Room, inventory.Room,
	}, "Rooms to join")
	return cmd
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session's token claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := a.sess.Claims()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subject: %s\nrole: %s\n", claims.Subject, claims.Role)
			if !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "expires: %s\n", claims.ExpiresAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// Tables for resources without an export builder
// ---------------------------------------------------------------------------

func doctorTable(items []staff.Doctor) export.Table {
	t := export.Table{
		Name:    "Doctors",
		Columns: []string{"id", "name", "specialty", "department"},
	}
	for _, d := range items {
		t.Rows = append(t.Rows, []string{d.ID, d.Name, d.Specialty, d.Department})
	}
	return t
}

func userTable(items []identity.User) export.Table {
	t := export.Table{
		Name:    "Users",
		Columns: []string{"id", "name", "email", "role"},
	}
	for _, u := range items {
		t.Rows = append(t.Rows, []string{u.ID, u.Name, u.Email, u.Role})
	}
	return t
}

func appointmentTable(items []scheduling.Appointment) export.Table {
	t := export.Table{
		Name:    "Appointments",
		Columns: []string{"id", "patient", "doctor", "status", "scheduledAt"},
	}
	for _, a := range items {
		scheduled := ""
		if !a.ScheduledAt.IsZero() {
			scheduled = a.ScheduledAt.Format("2006-01-02 15:04")
		}
		t.Rows = append(t.Rows, []string{a.ID, a.PatientName, a.DoctorName, a.Status, scheduled})
	}
	return t
}
