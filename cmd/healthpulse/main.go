// Command healthpulse is the terminal client for the HealthPulse
// analytics platform.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/yassnemo/health-pulse-sub000/internal/config"
	"github.com/yassnemo/health-pulse-sub000/internal/logging"
	"github.com/yassnemo/health-pulse-sub000/pkg/api"
	"github.com/yassnemo/health-pulse-sub000/pkg/session"
	"github.com/yassnemo/health-pulse-sub000/pkg/view"
)

// app is the composition root: one config, one client, one session.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *api.Client
	session *session.Manager
	router  *view.Router
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "healthpulse")
	if err != nil {
		return nil, err
	}

	tokens := session.NewFileStore(cfg.TokenFile, cfg.TokenKeyBytes())
	client := api.New(api.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.Timeout(),
		Tokens:  tokens,
		Logger:  logger,
	})

	var strategy session.Strategy
	if cfg.AuthBypass {
		logger.Warn("authentication bypass enabled; do not use against production")
		strategy = &session.BypassStrategy{Tokens: tokens}
	}
	sess := session.NewManager(session.Options{
		Auth:     client.Auth,
		Tokens:   tokens,
		Strategy: strategy,
		Logger:   logger,
	})
	router := view.NewRouter(sess)

	// A 401 anywhere ends the session and lands the user on login.
	client.OnUnauthorized(func() {
		sess.HandleUnauthorized()
		if router.SessionExpired() {
			logger.Info("session expired, returning to login")
		}
	})

	return &app{cfg: cfg, logger: logger, client: client, session: sess, router: router}, nil
}

func main() {
	var a *app

	root := &cobra.Command{
		Use:           "healthpulse",
		Short:         "Terminal client for the HealthPulse clinical analytics platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
	}

	root.AddCommand(
		loginCmd(&a),
		logoutCmd(&a),
		whoamiCmd(&a),
		patientsCmd(&a),
		highRiskCmd(&a),
		riskCmd(&a),
		alertsCmd(&a),
		dashboardCmd(&a),
		settingsCmd(&a),
		usersCmd(&a),
		auditCmd(&a),
		healthCmd(&a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", api.ErrorMessage(err))
		os.Exit(1)
	}
}

func loginCmd(a **app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			creds := api.Credentials{Username: username, Password: password}
			if !app.cfg.AuthBypass {
				if creds.Username == "" {
					fmt.Print("Username: ")
					fmt.Scanln(&creds.Username)
				}
				if creds.Password == "" {
					fmt.Print("Password: ")
					raw, err := term.ReadPassword(int(syscall.Stdin))
					fmt.Println()
					if err != nil {
						return err
					}
					creds.Password = string(raw)
				}
			}
			if err := app.session.Login(cmd.Context(), creds); err != nil {
				return err
			}
			user := app.session.CurrentUser()
			app.router.Navigate(view.RouteDashboard)
			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and discard the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			(*a).session.Logout(cmd.Context())
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			app.session.Bootstrap(cmd.Context())
			user := app.session.CurrentUser()
			if user == nil {
				return fmt.Errorf("not logged in")
			}
			return printJSON(user)
		},
	}
}

func patientsCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Browse the patient census",
	}

	var params api.PatientListParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List patients, paged and filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			pager := view.NewPaginator(params.PageSize)
			if params.Page > 0 {
				pager.GoTo(params.Page)
			}
			params.Page = pager.Page()
			params.PageSize = pager.PageSize()

			result, err := app.client.Patients.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			pager.SetTotalItems(result.TotalCount)
			fmt.Printf("Page %d of %d (%d patients)\n", pager.Page(), pager.TotalPages(), result.TotalCount)
			for _, p := range result.Patients {
				level := ""
				if p.RiskScores != nil {
					level = p.RiskScores.AlertLevel
				}
				fmt.Printf("  %-8s %-24s %-18s %s\n", p.PatientID, view.FormatPatientName(p.Name), p.Department, level)
			}
			return nil
		},
	}
	list.Flags().IntVar(&params.Page, "page", 1, "page number")
	list.Flags().IntVar(&params.PageSize, "page-size", 10, "patients per page")
	list.Flags().StringVar(&params.Search, "search", "", "search by name, MRN or id")
	list.Flags().StringVar(&params.Department, "department", "", "filter by department")
	list.Flags().StringVar(&params.RiskLevel, "risk-level", "", "filter by risk level (low|medium|high)")

	get := &cobra.Command{
		Use:   "get <patient-id>",
		Short: "Show the full record for one patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := (*a).client.Patients.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(detail)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func highRiskCmd(a **app) *cobra.Command {
	var department string
	cmd := &cobra.Command{
		Use:   "high-risk",
		Short: "List high-risk patients, most severe first",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, err := (*a).client.Patients.ListHighRisk(cmd.Context(), department)
			if err != nil {
				return err
			}
			for _, p := range patients {
				worst := 0.0
				if p.RiskScores != nil {
					for _, s := range []float64{p.RiskScores.Deterioration, p.RiskScores.Readmission, p.RiskScores.Sepsis} {
						if s > worst {
							worst = s
						}
					}
				}
				fmt.Printf("  %-8s %-24s %-18s %s\n", p.PatientID, view.FormatPatientName(p.Name), p.Department, view.FormatRiskScore(worst))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&department, "department", "", "filter by department")
	return cmd
}

func riskCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Run the clinical risk models",
	}

	predict := &cobra.Command{
		Use:   "predict <risk-type> <patient-id>",
		Short: "Fetch a fresh model score (deterioration|readmission|sepsis)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pred, err := (*a).client.Patients.PredictRisk(cmd.Context(), api.RiskType(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s risk for %s: %s (%s)\n",
				pred.RiskType, pred.PatientID, view.FormatRiskScore(pred.Score), view.RiskBucket(pred.Score))
			return nil
		},
	}

	explain := &cobra.Command{
		Use:   "explain <risk-type> <patient-id>",
		Short: "Show the per-feature explanation for one score",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := (*a).client.Patients.ExplainRisk(cmd.Context(), api.RiskType(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s risk for %s: %s\n", exp.RiskType, exp.PatientID, view.FormatRiskScore(exp.Score))
			for _, f := range exp.Features() {
				fmt.Printf("  %-24s %+.3f\n", f.Feature, f.Contribution)
			}
			if exp.Recommendation != "" {
				fmt.Println("Recommendation:", exp.Recommendation)
			}
			return nil
		},
	}

	cmd.AddCommand(predict, explain)
	return cmd
}

func alertsCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Review and work clinical alerts",
	}

	var params api.AlertListParams
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List alerts, highest priority first",
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Status = api.AlertStatus(status)
			result, err := (*a).client.Alerts.List(cmd.Context(), params)
			if err != nil {
				return err
			}
			for _, al := range result.Alerts {
				fmt.Printf("  #%-4d %-8s %-8s %-12s %s\n",
					al.ID, view.ParsePriority(al.Priority), al.Status, al.PatientID, al.Message)
			}
			if result.Stats != nil {
				fmt.Printf("Active: %d  Acknowledged: %d  Dismissed: %d\n",
					result.Stats.ByStatus["active"], result.Stats.ByStatus["acknowledged"], result.Stats.ByStatus["dismissed"])
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "filter by status (active|acknowledged|dismissed)")
	list.Flags().StringVar(&params.Priority, "priority", "", "filter by priority (high|medium|low)")
	list.Flags().StringVar(&params.PatientID, "patient", "", "filter by patient id")
	list.Flags().IntVar(&params.Page, "page", 1, "page number")
	list.Flags().IntVar(&params.PageSize, "page-size", 20, "alerts per page")

	var newStatus, notes string
	update := &cobra.Command{
		Use:   "update <alert-id>",
		Short: "Acknowledge or dismiss an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("alert id must be a number")
			}
			current, err := findAlert(cmd.Context(), app.client, id)
			if err != nil {
				return err
			}
			target, err := api.ParseAlertStatus(newStatus)
			if err != nil {
				return err
			}
			updated, err := app.client.Alerts.Update(cmd.Context(), id, current.Status, api.AlertUpdate{
				Status: target,
				Notes:  notes,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Alert #%d is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}
	update.Flags().StringVar(&newStatus, "status", "", "new status (acknowledged|dismissed)")
	update.Flags().StringVar(&notes, "notes", "", "clinical notes for the change")
	update.MarkFlagRequired("status")

	cmd.AddCommand(list, update)
	return cmd
}

// findAlert locates an alert by id; the API has no single-alert read.
func findAlert(ctx context.Context, client *api.Client, id int) (*api.Alert, error) {
	result, err := client.Alerts.List(ctx, api.AlertListParams{PageSize: 1000})
	if err != nil {
		return nil, err
	}
	for i := range result.Alerts {
		if result.Alerts[i].ID == id {
			return &result.Alerts[i], nil
		}
	}
	return nil, fmt.Errorf("alert #%d not found", id)
}

func dashboardCmd(a **app) *cobra.Command {
	var department string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the clinical overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			summary, err := app.client.Dashboard.Summary(cmd.Context(), department)
			if err != nil {
				return err
			}
			fmt.Printf("Patients: %d  High risk: %d  Active alerts: %d\n",
				summary.TotalPatients, summary.HighRiskCount, summary.ActiveAlertCount)

			recent, err := app.client.Dashboard.RecentAlerts(cmd.Context(), 5)
			if err != nil {
				return err
			}
			fmt.Println("Recent alerts:")
			for _, al := range recent {
				fmt.Printf("  #%-4d %-8s %-12s %s\n", al.ID, al.Priority, al.PatientID, al.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&department, "department", "", "scope to one department")

	var riskType string
	dist := &cobra.Command{
		Use:   "distribution",
		Short: "Bucket the census for one risk model",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := (*a).client.Dashboard.RiskDistribution(cmd.Context(), api.RiskType(riskType), department)
			if err != nil {
				return err
			}
			return printJSON(d)
		},
	}
	dist.Flags().StringVar(&riskType, "risk-type", "deterioration", "risk model")

	var period string
	trends := &cobra.Command{
		Use:   "trends <metric>",
		Short: "Plot a metric over time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := (*a).client.Dashboard.Trends(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}
			return printJSON(series)
		},
	}
	trends.Flags().StringVar(&period, "period", "24h", "window (24h|7d|30d)")

	perf := &cobra.Command{
		Use:   "performance",
		Short: "Per-department operational rollups",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := (*a).client.Dashboard.Performance(cmd.Context(), department)
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}

	cmd.AddCommand(dist, trends, perf)
	return cmd
}

func settingsCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and tune alert thresholds",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the alert threshold cutoffs",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := (*a).client.Settings.GetAlertThresholds(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(t)
		},
	}

	set := &cobra.Command{
		Use:   "set <risk-type> <level> <value>",
		Short: "Change one cutoff, e.g. settings set sepsis high 0.65",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("value must be a number between 0 and 1")
			}
			patch := api.AlertThresholds{
				Thresholds: map[string]map[string]float64{args[0]: {args[1]: value}},
			}
			t, err := (*a).client.Settings.UpdateAlertThresholds(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return printJSON(t)
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func usersCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage platform accounts (admin)",
	}

	var skip, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := (*a).client.Admin.ListUsers(cmd.Context(), api.UserListParams{Skip: skip, Limit: limit})
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Printf("  %-12s %-24s %-10s %s\n", u.Username, u.Name, u.Role, u.Department)
			}
			return nil
		},
	}
	list.Flags().IntVar(&skip, "skip", 0, "offset")
	list.Flags().IntVar(&limit, "limit", 100, "max results")

	var uc api.UserCreate
	create := &cobra.Command{
		Use:   "create",
		Short: "Provision a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := (*a).client.Admin.CreateUser(cmd.Context(), uc)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
	create.Flags().StringVar(&uc.Username, "username", "", "login name")
	create.Flags().StringVar(&uc.Password, "password", "", "initial password")
	create.Flags().StringVar(&uc.Name, "name", "", "display name")
	create.Flags().StringVar(&uc.Email, "email", "", "email address")
	create.Flags().StringVar(&uc.Role, "role", "clinician", "role (admin|clinician|nurse)")
	create.Flags().StringVar(&uc.Department, "department", "", "home department")
	create.MarkFlagRequired("username")
	create.MarkFlagRequired("password")

	cmd.AddCommand(list, create)
	return cmd
}

func auditCmd(a **app) *cobra.Command {
	var params api.AuditLogParams
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit trail (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := (*a).client.Admin.ListAuditLogs(cmd.Context(), params)
			if err != nil {
				return err
			}
			for _, e := range logs {
				fmt.Printf("  %s %-12s %-16s %s/%s\n", e.Timestamp, e.Username, e.Action, e.EntityType, e.EntityID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&params.UserID, "user", "", "filter by user id")
	cmd.Flags().StringVar(&params.EntityType, "entity-type", "", "filter by entity type")
	cmd.Flags().IntVar(&params.Skip, "skip", 0, "offset")
	cmd.Flags().IntVar(&params.Limit, "limit", 100, "max results")
	return cmd
}

func healthCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the gateway and its upstream components",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := (*a).client.Health.Check(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(status)
		},
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
